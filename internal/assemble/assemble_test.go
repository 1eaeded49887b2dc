package assemble

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/uclalibrary/ftva-etl/internal/holdings"
	"github.com/uclalibrary/ftva-etl/internal/marc"
	"github.com/uclalibrary/ftva-etl/internal/titles"
)

func testBib() *marc.Record {
	spaces := strings.Repeat(" ", 40)
	field008 := "xxxxxxx1970" + spaces[11:35] + "eng" + spaces[38:]
	return &marc.Record{
		ControlFields: []marc.ControlField{
			{Tag: "001", Value: "9912345"},
			{Tag: "008", Value: field008},
		},
		DataFields: []marc.DataField{
			{
				Tag: "245", Ind1: "0", Ind2: "0",
				SubFields: []marc.SubField{
					{Code: "a", Value: "Test Title /"},
					{Code: "c", Value: "directed by Agnes Varda."},
				},
			},
			{
				Tag: "260", Ind1: " ", Ind2: " ",
				SubFields: []marc.SubField{{Code: "c", Value: "[198-]"}},
			},
		},
	}
}

func testRequest() Request {
	return Request{
		Inventory: Inventory{
			InventoryID:     "inv-1",
			InventoryNumber: "M100",
			ProductionTypes: "theatrical",
			WorkingTitle:    "Working Title",
		},
		Digital: DigitalItem{
			UUID:       "uuid-1",
			FileName:   "test.mov",
			AssetType:  "Video",
			MediaType:  "Moving Image",
			AudioClass: "Stereo",
		},
	}
}

func TestAssemble(t *testing.T) {
	a := &Assembler{}
	rec, err := a.Assemble(context.Background(), testBib(), testRequest(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.AlmaBibID != "9912345" {
		t.Errorf("Expected bib id 9912345, got %q", rec.AlmaBibID)
	}
	if rec.Title != "Test Title" {
		t.Errorf("Expected cataloged title, got %q", rec.Title)
	}
	if rec.Language != "English" {
		t.Errorf("Expected English, got %q", rec.Language)
	}
	if len(rec.InventoryNumbers) != 1 || rec.InventoryNumbers[0] != "M100" {
		t.Errorf("Unexpected inventory numbers: %v", rec.InventoryNumbers)
	}
	if len(rec.Dates) != 1 || rec.Dates[0].Display != "[198-]" {
		t.Fatalf("Unexpected dates: %+v", rec.Dates)
	}
	if rec.Dates[0].SortValue == nil || *rec.Dates[0].SortValue != 1980 {
		t.Errorf("Expected sort value 1980, got %v", rec.Dates[0].SortValue)
	}
	if len(rec.Creators) != 1 || rec.Creators[0] != "Agnes Varda" {
		t.Errorf("Unexpected creators: %v", rec.Creators)
	}
	if rec.AudioClass != "Stereo" {
		t.Errorf("Expected audio class passthrough, got %q", rec.AudioClass)
	}
	if rec.HoldingsMatch != nil {
		t.Errorf("Expected no holdings block without a reconciler, got %+v", rec.HoldingsMatch)
	}
}

func TestAssembleUsesWorkingTitleForEphemeralMaterial(t *testing.T) {
	req := testRequest()
	req.Inventory.ProductionTypes = "home movies"

	a := &Assembler{}
	rec, err := a.Assemble(context.Background(), testBib(), req, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Title != "Working Title" {
		t.Errorf("Expected working title, got %q", rec.Title)
	}
}

func TestAssembleDegradesToUntitled(t *testing.T) {
	req := testRequest()
	req.Inventory.WorkingTitle = ""

	a := &Assembler{}
	rec, err := a.Assemble(context.Background(), &marc.Record{}, req, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Title != titles.Untitled {
		t.Errorf("Expected untitled sentinel, got %q", rec.Title)
	}
	if len(rec.Dates) != 0 {
		t.Errorf("Expected no dates, got %+v", rec.Dates)
	}
}

func TestAssembleHoldingsMatch(t *testing.T) {
	items := []holdings.Item{
		{InventoryNumber: "M100 A", CallNumber: "M100 A"},
		{InventoryNumber: "M100 B", CallNumber: "M100 B"},
	}

	a := &Assembler{Reconciler: holdings.NewReconciler(nil, holdings.Scope{})}
	rec, err := a.Assemble(context.Background(), testBib(), testRequest(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.HoldingsMatch == nil {
		t.Fatal("Expected holdings match block")
	}
	if !rec.HoldingsMatch.Ambiguous {
		t.Errorf("Expected ambiguous match, got %+v", rec.HoldingsMatch)
	}
	if len(rec.HoldingsMatch.InventoryNumbers) != 2 {
		t.Errorf("Expected both suffixed items, got %v", rec.HoldingsMatch.InventoryNumbers)
	}
}

func TestAssembleReconcilerErrorPropagates(t *testing.T) {
	searchErr := errors.New("index down")
	search := func(ctx context.Context, query string, scope holdings.Scope) ([]holdings.Item, error) {
		return nil, searchErr
	}

	a := &Assembler{Reconciler: holdings.NewReconciler(search, holdings.Scope{})}
	_, err := a.Assemble(context.Background(), testBib(), testRequest(), nil)
	if !errors.Is(err, searchErr) {
		t.Errorf("Expected search error to propagate, got %v", err)
	}
}

func TestAssembleFileTypeOverrides(t *testing.T) {
	tests := []struct {
		name      string
		fileType  string
		fileName  string
		folder    string
		subFolder string
	}{
		{
			name:      "DCP uses folder and sub folder",
			fileType:  "DCP",
			fileName:  "",
			folder:    "folder name",
			subFolder: "sub folder name",
		},
		{
			name:     "DPX uses folder only",
			fileType: "DPX",
			fileName: "",
			folder:   "folder name",
		},
		{
			name:     "other types keep file name",
			fileType: "",
			fileName: "test.mov",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			req.Digital.FileType = tt.fileType
			req.Digital.FolderName = "folder name"
			req.Digital.SubFolderName = "sub folder name"

			a := &Assembler{}
			rec, err := a.Assemble(context.Background(), testBib(), req, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if rec.FileName != tt.fileName {
				t.Errorf("Expected file name %q, got %q", tt.fileName, rec.FileName)
			}
			if rec.FolderName != tt.folder {
				t.Errorf("Expected folder %q, got %q", tt.folder, rec.FolderName)
			}
			if rec.SubFolderName != tt.subFolder {
				t.Errorf("Expected sub folder %q, got %q", tt.subFolder, rec.SubFolderName)
			}
		})
	}
}
