package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uclalibrary/ftva-etl/internal/assemble"
	"github.com/uclalibrary/ftva-etl/internal/dates"
	"github.com/uclalibrary/ftva-etl/internal/titles"
)

// Summary aggregates one batch run for review: how many records were
// produced and how many need attention (ambiguous or missing holdings
// matches, undated or untitled records).
type Summary struct {
	Timestamp string `yaml:"timestamp"`
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`

	Records          int `yaml:"records"`
	Matched          int `yaml:"matched"`
	AmbiguousMatches int `yaml:"ambiguous_matches"`
	NoMatches        int `yaml:"no_matches"`
	Undated          int `yaml:"undated"`
	Untitled         int `yaml:"untitled"`
	Failed           int `yaml:"failed"`
}

// Summarize builds the summary for a finished batch.
func Summarize(input, output string, records []assemble.Record, failed int) Summary {
	s := Summary{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		Input:     input,
		Output:    output,
		Records:   len(records),
		Failed:    failed,
	}

	for _, rec := range records {
		if rec.HoldingsMatch != nil {
			switch {
			case rec.HoldingsMatch.NoMatch:
				s.NoMatches++
			case rec.HoldingsMatch.Ambiguous:
				s.AmbiguousMatches++
			default:
				s.Matched++
			}
		}
		if undated(rec.Dates) {
			s.Undated++
		}
		if rec.Title == titles.Untitled {
			s.Untitled++
		}
	}
	return s
}

func undated(facts []dates.Fact) bool {
	for _, fact := range facts {
		if fact.Kind != dates.KindUndated {
			return false
		}
	}
	return true
}

// Save writes the summary as YAML next to the batch output, named
// with the run timestamp.
func (s Summary) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s.yaml", s.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}
