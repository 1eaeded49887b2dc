// Package assemble composes the normalized output record for one
// FTVA inventory item from its bib record, production database entry,
// digital data record, and holdings reconciliation.
package assemble

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uclalibrary/ftva-etl/internal/creators"
	"github.com/uclalibrary/ftva-etl/internal/dates"
	"github.com/uclalibrary/ftva-etl/internal/holdings"
	"github.com/uclalibrary/ftva-etl/internal/lang"
	"github.com/uclalibrary/ftva-etl/internal/marc"
	"github.com/uclalibrary/ftva-etl/internal/titles"
)

// Inventory is the production database's view of one inventory item.
type Inventory struct {
	InventoryID     string `json:"inventory_id"`
	InventoryNumber string `json:"inventory_number"`
	ProductionTypes string `json:"production_type"`
	WorkingTitle    string `json:"working_title"`
}

// DigitalItem is the digital data record for the asset being ingested.
// All of its values pass through to the output unchanged; the core
// computes nothing from them.
type DigitalItem struct {
	UUID          string `json:"uuid"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	FolderName    string `json:"file_folder_name"`
	SubFolderName string `json:"sub_folder_name"`
	AssetType     string `json:"asset_type"`
	MediaType     string `json:"media_type"`
	AudioClass    string `json:"audio_class"`
}

// Request bundles the collaborator inputs for one transformation.
type Request struct {
	Inventory      Inventory   `json:"inventory"`
	Digital        DigitalItem `json:"digital"`
	MatchAssetUUID string      `json:"match_asset,omitempty"`
}

// HoldingsMatch is the reconciliation outcome exposed on the output
// record: the matched inventory number(s), or none, with refinement
// diagnostics when the search index was consulted.
type HoldingsMatch struct {
	InventoryNumbers []string `json:"matched_inventory_numbers"`
	Ambiguous        bool     `json:"ambiguous,omitempty"`
	NoMatch          bool     `json:"no_match,omitempty"`
	Refined          bool     `json:"refined,omitempty"`
	RefinementQuery  string   `json:"refinement_query,omitempty"`
}

// Record is the normalized JSON record delivered to the media asset
// management system.
type Record struct {
	AlmaBibID        string         `json:"alma_bib_id"`
	InventoryID      string         `json:"inventory_id,omitempty"`
	UUID             string         `json:"uuid,omitempty"`
	InventoryNumbers []string       `json:"inventory_numbers"`
	Title            string         `json:"title"`
	SeriesTitle      string         `json:"series_title,omitempty"`
	EpisodeTitle     string         `json:"episode_title,omitempty"`
	Dates            []dates.Fact   `json:"dates"`
	Creators         []string       `json:"creators"`
	Language         string         `json:"language"`
	FileName         string         `json:"file_name,omitempty"`
	FolderName       string         `json:"folder_name,omitempty"`
	SubFolderName    string         `json:"sub_folder_name,omitempty"`
	AssetType        string         `json:"asset_type,omitempty"`
	MediaType        string         `json:"media_type,omitempty"`
	AudioClass       string         `json:"audio_class,omitempty"`
	MatchAsset       string         `json:"match_asset,omitempty"`
	HoldingsMatch    *HoldingsMatch `json:"holdings_match,omitempty"`
}

// Assembler builds output records. Extractor and Reconciler are
// optional; a nil Reconciler skips holdings matching and a nil
// Extractor uses the rule-based name parser.
type Assembler struct {
	Extractor  creators.PersonExtractor
	Reconciler *holdings.Reconciler
}

// Assemble produces the output record for one bib record and its
// collaborator inputs. Degradable conditions (missing fields,
// unparseable dates, no title, zero matches) produce sentinel values;
// only collaborator failures return an error.
func (a *Assembler) Assemble(ctx context.Context, bib *marc.Record, req Request, items []holdings.Item) (Record, error) {
	prodTypes := titles.ParseProductionTypes(req.Inventory.ProductionTypes)
	resolved := titles.ResolveTitle(bib, req.Inventory.WorkingTitle, prodTypes)

	rec := Record{
		AlmaBibID:   bib.ID(),
		InventoryID: req.Inventory.InventoryID,
		UUID:        req.Digital.UUID,
		// The production database holds one inventory number per
		// record for now, but the output schema expects an array.
		InventoryNumbers: []string{req.Inventory.InventoryNumber},
		Title:            resolved.Title,
		SeriesTitle:      resolved.SeriesTitle,
		EpisodeTitle:     resolved.EpisodeTitle,
		Dates:            dates.Normalize(bib),
		Language:         lang.NameFrom008(bib.ControlField("008")),
		FileName:         req.Digital.FileName,
		AssetType:        req.Digital.AssetType,
		MediaType:        req.Digital.MediaType,
		AudioClass:       req.Digital.AudioClass,
		MatchAsset:       req.MatchAssetUUID,
	}

	rec.Creators = a.extractCreators(ctx, bib)

	if a.Reconciler != nil {
		result, err := a.Reconciler.Reconcile(ctx, req.Inventory.InventoryNumber, items)
		if err != nil {
			return Record{}, fmt.Errorf("failed to reconcile holdings for %s: %w", req.Inventory.InventoryNumber, err)
		}
		rec.HoldingsMatch = matchBlock(result)
	}

	applyFileTypeOverrides(&rec, req.Digital)

	return rec, nil
}

// extractCreators pulls director names from the first 245 $c. An
// extractor failure is logged and degrades to no creators rather than
// dropping the record.
func (a *Assembler) extractCreators(ctx context.Context, bib *marc.Record) []string {
	fields := bib.Fields("245")
	if len(fields) == 0 {
		return nil
	}
	// 245 $c is not repeatable, so always take the first one.
	statement := fields[0].First("c")
	if statement == "" {
		return nil
	}

	names, err := creators.Extract(ctx, statement, a.Extractor)
	if err != nil {
		slog.Warn("Creator extraction failed", "bib_id", bib.ID(), "err", err)
		return nil
	}
	return names
}

func matchBlock(result holdings.MatchResult) *HoldingsMatch {
	block := &HoldingsMatch{
		Ambiguous:       result.IsAmbiguous(),
		NoMatch:         result.IsNoMatch(),
		Refined:         result.Refined,
		RefinementQuery: result.RefinementQuery,
	}
	for _, item := range result.Matched {
		block.InventoryNumbers = append(block.InventoryNumbers, item.InventoryNumber)
	}
	return block
}

// applyFileTypeOverrides adjusts the output for package formats: DCP
// assets are identified by folder rather than file name, and DPX
// assets by folder only.
func applyFileTypeOverrides(rec *Record, digital DigitalItem) {
	switch digital.FileType {
	case "DCP":
		rec.FileName = ""
		rec.FolderName = digital.FolderName
		rec.SubFolderName = digital.SubFolderName
	case "DPX":
		rec.FileName = ""
		rec.FolderName = digital.FolderName
	}
}
