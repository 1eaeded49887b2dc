// Package export writes batches of assembled records to the delivery
// formats the media asset management system ingests: JSONL for the
// normal handoff and Parquet for bulk loads.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/uclalibrary/ftva-etl/internal/assemble"
)

// Write writes records to path, choosing the format from the file
// extension (.jsonl/.json or .parquet).
func Write(path string, records []assemble.Record) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return WriteParquet(path, records)
	case ".jsonl", ".json":
		return WriteJSONL(path, records)
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// WriteJSONL writes one JSON document per line.
func WriteJSONL(path string, records []assemble.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	slog.Debug("Wrote JSONL output", "path", path, "records", len(records))
	return nil
}

// flatRecord is the Parquet row shape. Nested and nullable output
// fields flatten into plain columns; dates collapse to the display
// strings plus the first usable sort year.
type flatRecord struct {
	AlmaBibID        string   `parquet:"alma_bib_id"`
	InventoryID      string   `parquet:"inventory_id"`
	UUID             string   `parquet:"uuid"`
	InventoryNumbers []string `parquet:"inventory_numbers,list"`
	Title            string   `parquet:"title"`
	SeriesTitle      string   `parquet:"series_title"`
	EpisodeTitle     string   `parquet:"episode_title"`
	Dates            []string `parquet:"dates,list"`
	DateSortValue    int32    `parquet:"date_sort_value"`
	Creators         []string `parquet:"creators,list"`
	Language         string   `parquet:"language"`
	FileName         string   `parquet:"file_name"`
	AudioClass       string   `parquet:"audio_class"`
	MatchedHoldings  []string `parquet:"matched_holdings,list"`
	AmbiguousMatch   bool     `parquet:"ambiguous_match"`
}

// WriteParquet writes records as one Parquet row group.
func WriteParquet(path string, records []assemble.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	rows := make([]flatRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, flatten(rec))
	}

	writer := parquet.NewGenericWriter[flatRecord](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	slog.Debug("Wrote Parquet output", "path", path, "records", len(records))
	return nil
}

func flatten(rec assemble.Record) flatRecord {
	flat := flatRecord{
		AlmaBibID:        rec.AlmaBibID,
		InventoryID:      rec.InventoryID,
		UUID:             rec.UUID,
		InventoryNumbers: rec.InventoryNumbers,
		Title:            rec.Title,
		SeriesTitle:      rec.SeriesTitle,
		EpisodeTitle:     rec.EpisodeTitle,
		Creators:         rec.Creators,
		Language:         rec.Language,
		FileName:         rec.FileName,
		AudioClass:       rec.AudioClass,
	}
	for _, fact := range rec.Dates {
		flat.Dates = append(flat.Dates, fact.Display)
		if flat.DateSortValue == 0 && fact.SortValue != nil {
			flat.DateSortValue = int32(*fact.SortValue)
		}
	}
	if rec.HoldingsMatch != nil {
		flat.MatchedHoldings = rec.HoldingsMatch.InventoryNumbers
		flat.AmbiguousMatch = rec.HoldingsMatch.Ambiguous
	}
	return flat
}

// ReadJSONL loads previously exported records, mostly for inspection
// tooling and tests.
func ReadJSONL(path string) ([]assemble.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()

	var records []assemble.Record
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec assemble.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading records: %w", err)
	}
	return records, nil
}
