// Package creators extracts creator names from the MARC 245 $c
// statement of responsibility. Only directors count as creators for
// FTVA records; the statement is scanned for attribution phrases and
// the names following the first one are parsed out.
package creators

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// attributionPhrases mark the start of a director credit. "director"
// also matches "directors".
var attributionPhrases = []string{
	"directed by",
	"director",
	"a film by",
	"supervised by",
}

// PersonExtractor parses personal names out of a credit fragment. The
// rule-based extractor is the default; internal/gemini provides an
// LLM-backed implementation for messier statements.
type PersonExtractor interface {
	ExtractPersons(ctx context.Context, text string) ([]string, error)
}

// Extract returns the creator names found in a 245 $c statement of
// responsibility. Statements with no attribution phrase yield no
// creators; extractor failures propagate to the caller.
func Extract(ctx context.Context, statement string, extractor PersonExtractor) ([]string, error) {
	segment := attributionSegment(statement)
	if segment == "" {
		return nil, nil
	}
	if extractor == nil {
		extractor = RuleBased{}
	}
	return extractor.ExtractPersons(ctx, segment)
}

// attributionSegment returns the fragment following the first
// attribution phrase, cut at the next role delimiter (";") so credits
// for writers, producers and the like are excluded.
func attributionSegment(statement string) string {
	lower := strings.ToLower(statement)
	start := -1
	for _, phrase := range attributionPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			start = idx + len(phrase)
			break
		}
	}
	if start < 0 {
		return ""
	}

	segment := statement[start:]
	if idx := strings.Index(segment, ";"); idx >= 0 {
		segment = segment[:idx]
	}
	segment = strings.Trim(segment, " ,:.")
	return segment
}

// RuleBased splits a credit fragment into names on conjunctions and
// punctuation, keeping tokens that look like personal names. It stands
// in when no NER-capable extractor is configured.
type RuleBased struct{}

// ExtractPersons implements PersonExtractor. It never returns an
// error.
func (RuleBased) ExtractPersons(_ context.Context, text string) ([]string, error) {
	for _, sep := range []string{" and ", " & ", ", ", " with "} {
		text = strings.ReplaceAll(text, sep, "\x00")
	}

	var names []string
	for _, part := range strings.Split(text, "\x00") {
		part = strings.Trim(part, " ,.;:")
		if looksLikeName(part) {
			names = append(names, part)
		}
	}
	return names, nil
}

// looksLikeName accepts multi-word tokens whose words are capitalized,
// which is how names appear in transcribed credits.
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
