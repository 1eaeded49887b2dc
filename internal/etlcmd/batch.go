package etlcmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/uclalibrary/ftva-etl/internal/assemble"
	"github.com/uclalibrary/ftva-etl/internal/export"
	"github.com/uclalibrary/ftva-etl/internal/sru"
)

// NewBatchCmd creates the batch command for running the transform
// over a JSONL file of requests.
func NewBatchCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var summaryDir string
	var ner string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Transform a JSONL file of inventory items",
		Long: `Runs the transform over every request in a JSONL input file.

Records are processed one at a time. Items that fail are logged and
skipped so one bad record does not stop the run. The output format
follows the file extension: .jsonl, .json or .parquet.`,
		Example: `  ftva-etl batch --input requests.jsonl --output records.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeBatch(cmd.Context(), inputPath, outputPath, summaryDir, ner)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to the JSONL request file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file, extension selects the format (required)")
	cmd.Flags().StringVar(&summaryDir, "summary-dir", ".", "Directory for the YAML run summary")
	cmd.Flags().StringVar(&ner, "ner", "rule", "Creator name parser (rule or gemini)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func executeBatch(ctx context.Context, inputPath, outputPath, summaryDir, ner string) error {
	requests, err := readRequests(inputPath)
	if err != nil {
		return err
	}
	slog.Info("Starting batch run", "input", inputPath, "requests", len(requests))

	client := sru.NewClient(os.Getenv("FTVA_SRU_URL"))
	assembler, err := newAssembler(client, ner)
	if err != nil {
		return err
	}

	started := time.Now()
	records := make([]assemble.Record, 0, len(requests))
	failed := 0
	for i, req := range requests {
		bib, items, err := fetchBib(ctx, client, req.Inventory.InventoryNumber, "")
		if err != nil {
			slog.Error("Failed to fetch bib record",
				"index", i,
				"inventory_number", req.Inventory.InventoryNumber,
				"err", err)
			failed++
			continue
		}
		rec, err := assembler.Assemble(ctx, bib, req, items)
		if err != nil {
			slog.Error("Failed to assemble record",
				"index", i,
				"inventory_number", req.Inventory.InventoryNumber,
				"err", err)
			failed++
			continue
		}
		records = append(records, rec)
	}

	if err := export.Write(outputPath, records); err != nil {
		return err
	}
	slog.Info("Wrote batch output",
		"output", outputPath,
		"records", len(records),
		"failed", failed,
		"elapsed", time.Since(started).Round(time.Millisecond))

	summary := export.Summarize(inputPath, outputPath, records, failed)
	summaryPath, err := summary.Save(summaryDir)
	if err != nil {
		return err
	}
	slog.Info("Wrote run summary", "summary", summaryPath)
	return nil
}

func readRequests(path string) ([]assemble.Request, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var requests []assemble.Request
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var req assemble.Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			return nil, fmt.Errorf("failed to parse request on line %d: %w", line, err)
		}
		requests = append(requests, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return requests, nil
}
