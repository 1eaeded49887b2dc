// Package titles selects the display title for an FTVA record.
//
// The cataloged MARC 245 transcription and the production database's
// working title are both candidates; which one wins depends on the
// production type classifier. Resolution never fails: a record with no
// usable candidate gets the untitled sentinel.
package titles

import (
	"strings"

	"github.com/uclalibrary/ftva-etl/internal/marc"
)

// Untitled is the sentinel display title used when every candidate
// field is empty or absent.
const Untitled = "[Untitled]"

// Source identifies where a title candidate came from.
type Source string

const (
	SourceWorkingTitle Source = "production_database"
	Source245          Source = "marc_245"
	SourceUntitled     Source = "untitled"
)

// Candidate is one potential display title with its priority rank.
// Lower rank wins; rank is assigned during resolution.
type Candidate struct {
	Source Source
	Rank   int
	Value  string
}

// Resolved is the title set for one record. SeriesTitle and
// EpisodeTitle are only populated for serial material with part
// subfields.
type Resolved struct {
	Title        string `json:"title"`
	SeriesTitle  string `json:"series_title,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	Source       Source `json:"-"`
}

// Resolve picks exactly one candidate from the set. When
// preferWorking is true the production database's working title
// outranks the 245 transcription; otherwise the 245 comes first.
// Empty candidates fall through to the next rank, and an empty set
// resolves to the untitled sentinel.
func Resolve(cands []Candidate, preferWorking bool) Candidate {
	order := []Source{Source245, SourceWorkingTitle}
	if preferWorking {
		order = []Source{SourceWorkingTitle, Source245}
	}

	for rank, source := range order {
		for _, cand := range cands {
			if cand.Source == source && strings.TrimSpace(cand.Value) != "" {
				cand.Rank = rank
				return cand
			}
		}
	}

	return Candidate{Source: SourceUntitled, Rank: len(order), Value: Untitled}
}

// ResolveTitle builds the candidate set from the bib record and the
// production database's working title, then resolves it under the
// record's production types.
func ResolveTitle(bib *marc.Record, workingTitle string, types []ProductionType) Resolved {
	composed, ok := From245(bib, AnySeries(types))

	cands := []Candidate{
		{Source: SourceWorkingTitle, Value: strings.TrimSpace(workingTitle)},
	}
	if ok {
		cands = append(cands, Candidate{Source: Source245, Value: composed.Title})
	}

	chosen := Resolve(cands, AnyPrefersWorkingTitle(types))

	resolved := Resolved{Title: chosen.Value, Source: chosen.Source}
	// Series and episode titles always come from the 245 part
	// subfields, whichever candidate supplies the display title.
	resolved.SeriesTitle = composed.SeriesTitle
	resolved.EpisodeTitle = composed.EpisodeTitle
	return resolved
}

// From245 composes the title set from the 245 title statement:
// $a main title (joined with $b remainder when present), $n number of
// part, $p name of part, joined with ". ". A missing 245 or missing
// $a yields ok=false so callers can fall back to other candidates.
func From245(bib *marc.Record, isSeries bool) (Resolved, bool) {
	fields := bib.Fields("245")
	if len(fields) == 0 {
		return Resolved{}, false
	}
	statement := fields[0]

	mainTitle := stripSubfield(statement.First("a"))
	remainder := stripSubfield(statement.First("b"))
	nameOfPart := stripSubfield(statement.First("p"))
	numberOfPart := stripSubfield(statement.First("n"))

	if mainTitle == "" {
		return Resolved{}, false
	}
	if remainder != "" {
		mainTitle = mainTitle + ". " + remainder
	}

	var titles Resolved
	switch {
	case nameOfPart == "" && numberOfPart == "":
		titles.Title = mainTitle
	case nameOfPart == "" && numberOfPart != "":
		titles.Title = mainTitle + ". " + numberOfPart
		if isSeries {
			titles.SeriesTitle = mainTitle
			titles.EpisodeTitle = numberOfPart
		}
	case nameOfPart != "" && numberOfPart == "":
		titles.Title = mainTitle + ". " + nameOfPart
		titles.SeriesTitle = mainTitle
		titles.EpisodeTitle = nameOfPart
	default:
		titles.Title = mainTitle + ". " + nameOfPart + ". " + numberOfPart
		titles.SeriesTitle = mainTitle
		titles.EpisodeTitle = nameOfPart + ". " + numberOfPart
	}

	return titles, true
}

// punctuation mirrors the cataloging cleanup applied to 245 subfields,
// stripping trailing ISBD punctuation and surrounding brackets.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func stripSubfield(value string) string {
	value = strings.TrimRight(value, punctuation+" ")
	return strings.Trim(value, "[] ")
}
