// Package etlcmd holds the cobra commands that drive the ETL: a
// single-record transform and a sequential batch run.
package etlcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uclalibrary/ftva-etl/internal/assemble"
	"github.com/uclalibrary/ftva-etl/internal/creators"
	"github.com/uclalibrary/ftva-etl/internal/gemini"
	"github.com/uclalibrary/ftva-etl/internal/holdings"
	"github.com/uclalibrary/ftva-etl/internal/marc"
	"github.com/uclalibrary/ftva-etl/internal/sru"
)

// NewTransformCmd creates the transform command for processing a
// single inventory item.
func NewTransformCmd() *cobra.Command {
	var requestPath string
	var marcxmlPath string
	var outputPath string
	var ner string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform one inventory item into a normalized record",
		Long: `Transforms a single FTVA inventory item into a normalized JSON record.

The request file carries the production database and digital data inputs.
The bib record is fetched from the catalog's SRU index by inventory number,
or read from a local MARCXML file with --marcxml.`,
		Example: `  # Fetch the bib record over SRU and print the result
  ftva-etl transform --request item.json

  # Use a local MARCXML export instead of SRU
  ftva-etl transform --request item.json --marcxml record.xml -o out.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(requestPath)
			if err != nil {
				return err
			}
			return executeTransform(cmd.Context(), req, marcxmlPath, outputPath, ner)
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "", "Path to the request JSON file (required)")
	cmd.Flags().StringVar(&marcxmlPath, "marcxml", "", "Path to a local MARCXML file (skips the SRU lookup)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (defaults to stdout)")
	cmd.Flags().StringVar(&ner, "ner", "rule", "Creator name parser (rule or gemini)")

	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func loadRequest(path string) (assemble.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assemble.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	var req assemble.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return assemble.Request{}, fmt.Errorf("failed to parse request file: %w", err)
	}
	if req.Inventory.InventoryNumber == "" {
		return assemble.Request{}, fmt.Errorf("request has no inventory number")
	}
	return req, nil
}

func executeTransform(ctx context.Context, req assemble.Request, marcxmlPath, outputPath, ner string) error {
	client := sru.NewClient(os.Getenv("FTVA_SRU_URL"))

	bib, items, err := fetchBib(ctx, client, req.Inventory.InventoryNumber, marcxmlPath)
	if err != nil {
		return err
	}

	assembler, err := newAssembler(client, ner)
	if err != nil {
		return err
	}

	rec, err := assembler.Assemble(ctx, bib, req, items)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	slog.Info("Wrote record", "output", outputPath, "bib_id", rec.AlmaBibID)
	return nil
}

// fetchBib locates the bib record for an inventory number, either in
// a local MARCXML file or via the SRU call-number index, and returns
// it with its FTVA holdings pool.
func fetchBib(ctx context.Context, client *sru.Client, inventoryNumber, marcxmlPath string) (*marc.Record, []holdings.Item, error) {
	var records []marc.Record
	var err error

	if marcxmlPath != "" {
		data, readErr := os.ReadFile(marcxmlPath)
		if readErr != nil {
			return nil, nil, fmt.Errorf("failed to read MARCXML file: %w", readErr)
		}
		records, err = marc.ParseCollection(data)
	} else {
		slog.Debug("Searching SRU index", "inventory_number", inventoryNumber)
		records, err = client.SearchByCallNumber(ctx, inventoryNumber)
	}
	if err != nil {
		return nil, nil, err
	}

	bib, items := selectBib(records, inventoryNumber)
	if bib == nil {
		return nil, nil, fmt.Errorf("no bib record found for inventory number %s", inventoryNumber)
	}
	return bib, items, nil
}

// selectBib picks the first record holding an FTVA item whose base
// call number matches the inventory number, along with that record's
// FTVA holdings. Records from other library collections are ignored
// even when their call numbers collide.
func selectBib(records []marc.Record, inventoryNumber string) (*marc.Record, []holdings.Item) {
	want := holdings.BaseCallNumber(inventoryNumber)
	for i := range records {
		items := sru.FilterByLocation(sru.HoldingsItems(&records[i]), sru.FTVALibraryCode)
		for _, item := range items {
			if holdings.BaseCallNumber(item.CallNumber) == want {
				return &records[i], items
			}
		}
	}
	return nil, nil
}

func newAssembler(client *sru.Client, ner string) (*assemble.Assembler, error) {
	var extractor creators.PersonExtractor
	switch ner {
	case "", "rule":
		extractor = creators.RuleBased{}
	case "gemini":
		extractor = gemini.New(os.Getenv("GEMINI_MODEL"))
	default:
		return nil, fmt.Errorf("unsupported name parser: %s (supported: rule, gemini)", ner)
	}

	return &assemble.Assembler{
		Extractor: extractor,
		Reconciler: holdings.NewReconciler(client.Searcher(), holdings.Scope{
			Library: sru.FTVALibraryCode,
		}),
	}, nil
}
