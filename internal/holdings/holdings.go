// Package holdings reconciles a bibliographic call number against the
// FTVA physical holdings inventory.
//
// Matching runs as an ordered pipeline of independent matchers: exact
// comparison, suffix-stripped base comparison, then a search-index
// refinement query. The pipeline short-circuits on the first step that
// yields exactly one candidate; ambiguous sets are surfaced to the
// caller rather than resolved silently.
package holdings

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Item is one FTVA inventory entry. Inventory numbers may carry a
// trailing alphabetic suffix distinguishing physical parts (reels,
// sides) of one logical title.
type Item struct {
	InventoryNumber string `json:"inventory_number"`
	CallNumber      string `json:"call_number"`
	Location        string `json:"location"`
}

// Scope narrows a refinement search to one library collection, so call
// numbers that collide across unrelated collections do not produce
// false positives.
type Scope struct {
	Library string
}

// SearchFunc queries the cataloging system's search index for holdings
// matching a call-number query within a scope. Supplied by the API
// client collaborator; errors propagate unchanged.
type SearchFunc func(ctx context.Context, query string, scope Scope) ([]Item, error)

// MatchResult is the outcome of reconciling one bib call number.
// Matched holds zero, one, or several candidates; more than one means
// the set could not be disambiguated and downstream decides whether to
// flag it for manual review. RefinementQuery records the search-index
// query whenever the refinement step ran.
type MatchResult struct {
	Matched         []Item `json:"matched"`
	Refined         bool   `json:"refined,omitempty"`
	RefinementQuery string `json:"refinement_query,omitempty"`
}

// IsNoMatch reports whether no holdings item matched at any step.
func (m MatchResult) IsNoMatch() bool { return len(m.Matched) == 0 }

// IsAmbiguous reports whether multiple candidates share the matched
// base call number.
func (m MatchResult) IsAmbiguous() bool { return len(m.Matched) > 1 }

// Single returns the matched item when exactly one was found.
func (m MatchResult) Single() (Item, bool) {
	if len(m.Matched) == 1 {
		return m.Matched[0], true
	}
	return Item{}, false
}

// Reconciler matches bib call numbers against holdings, falling back
// to a scoped search-index query when the local holdings pool has no
// candidate.
type Reconciler struct {
	search SearchFunc
	scope  Scope
}

// NewReconciler creates a reconciler. search may be nil, in which case
// the refinement step is skipped and a local miss is a final no-match.
func NewReconciler(search SearchFunc, scope Scope) *Reconciler {
	return &Reconciler{search: search, scope: scope}
}

// Reconcile determines the best-matching holdings item for the bib
// call number. It returns an error only when the search-index
// collaborator fails; every matching outcome, including no match, is a
// MatchResult.
func (r *Reconciler) Reconcile(ctx context.Context, bibCallNumber string, items []Item) (MatchResult, error) {
	// Step 1: exact match after case/whitespace normalization.
	if exact := matchExact(bibCallNumber, items); len(exact) == 1 {
		return MatchResult{Matched: exact}, nil
	}

	// Step 2: suffix-stripped base comparison across the local pool.
	if base := matchBase(bibCallNumber, items); len(base) > 0 {
		return MatchResult{Matched: base}, nil
	}

	// Step 3: search-index refinement, scoped to the FTVA collection.
	// The refinement narrows the candidate pool the index returns; the
	// base comparison is then reapplied, not replaced.
	query := BaseCallNumber(bibCallNumber)
	if r.search == nil {
		return MatchResult{RefinementQuery: query}, nil
	}

	pool, err := r.search(ctx, query, r.scope)
	if err != nil {
		return MatchResult{}, fmt.Errorf("refinement search for %q: %w", query, err)
	}

	if exact := matchExact(bibCallNumber, pool); len(exact) == 1 {
		return MatchResult{Matched: exact, Refined: true, RefinementQuery: query}, nil
	}
	if base := matchBase(bibCallNumber, pool); len(base) > 0 {
		return MatchResult{Matched: base, Refined: true, RefinementQuery: query}, nil
	}

	return MatchResult{Refined: true, RefinementQuery: query}, nil
}

// matchExact collects items whose call number equals the bib call
// number after normalization.
func matchExact(bibCallNumber string, items []Item) []Item {
	want := normalize(bibCallNumber)
	if want == "" {
		return nil
	}
	var matched []Item
	for _, item := range items {
		if normalize(item.CallNumber) == want {
			matched = append(matched, item)
		}
	}
	return matched
}

// matchBase collects items sharing the bib call number's base token
// once trailing alphabetic part suffixes are stripped from both sides.
func matchBase(bibCallNumber string, items []Item) []Item {
	want := BaseCallNumber(bibCallNumber)
	if want == "" {
		return nil
	}
	var matched []Item
	for _, item := range items {
		if BaseCallNumber(item.CallNumber) == want {
			matched = append(matched, item)
		}
	}
	return matched
}

// normalize upper-cases a call number and collapses interior
// whitespace so "xfe 1234" and "XFE  1234" compare equal.
func normalize(callNumber string) string {
	return strings.Join(strings.Fields(strings.ToUpper(callNumber)), " ")
}

// BaseCallNumber strips the trailing alphabetic part suffix from a
// call number: "M100 A" and "M100A" both reduce to "M100". A final
// token of letters only counts as a suffix when the rest of the call
// number still ends in a digit, so "XFE" itself is left alone.
func BaseCallNumber(callNumber string) string {
	norm := normalize(callNumber)
	if norm == "" {
		return ""
	}

	fields := strings.Fields(norm)
	last := fields[len(fields)-1]

	// Spaced suffix: "M100 A", "DVD123 T".
	if len(fields) > 1 && isLetters(last) && len(last) <= 2 {
		return strings.Join(fields[:len(fields)-1], " ")
	}

	// Unspaced suffix: "M100A".
	trimmed := strings.TrimRightFunc(last, unicode.IsLetter)
	if trimmed != last && trimmed != "" && unicode.IsDigit(rune(trimmed[len(trimmed)-1])) {
		fields[len(fields)-1] = trimmed
		return strings.Join(fields, " ")
	}

	return norm
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
