// Package dates normalizes raw MARC date expressions into typed facts.
//
// FTVA catalog records carry dates in several shapes: plain years,
// bracketed guesses like [198-], ranges, "ca." qualifiers, and free
// text. Normalization never fails; anything unclassifiable degrades to
// an undated fact carrying the original text.
package dates

import (
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/uclalibrary/ftva-etl/internal/marc"
)

// Kind classifies a normalized date fact.
type Kind string

const (
	KindSingle      Kind = "single"
	KindRange       Kind = "range"
	KindCirca       Kind = "circa"
	KindPlaceholder Kind = "placeholder"
	KindUndated     Kind = "undated"
)

// Roles identify which bibliographic date a fact represents, following
// the MARC source field it came from.
const (
	RoleRelease      = "release_broadcast_date"
	RoleDistribution = "distribution_date"
)

// Fact is one normalized date value. Display preserves the original
// bracket and hyphen notation when the year is only partially known;
// SortValue is nil when no usable year could be derived.
type Fact struct {
	Kind      Kind   `json:"kind"`
	Display   string `json:"display"`
	SortValue *int   `json:"sort_value"`
	Source    string `json:"source,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Normalize extracts date facts from the record's candidate fields:
// 260 $c (both indicators blank), 264 $c (first indicator blank, second
// indicator 2 preferred over 1), and the 008/07-10 date as a fallback
// only when neither 260 nor 264 yields a date. Conflicting facts from
// different sources are all retained; callers get an array, not a
// single winner.
func Normalize(rec *marc.Record) []Fact {
	var facts []Fact

	for _, field := range rec.Fields("260") {
		if field.Ind1 != " " || field.Ind2 != " " {
			continue
		}
		raw := strings.TrimSpace(field.First("c"))
		if raw == "" {
			continue
		}
		fact := Parse(raw)
		fact.Source = "260"
		fact.Role = RoleRelease
		facts = append(facts, fact)
		break
	}

	if fact, ok := best264(rec); ok {
		facts = append(facts, fact)
	}

	if len(facts) == 0 {
		if fact, ok := from008(rec.ControlField("008")); ok {
			facts = append(facts, fact)
		}
	}

	return facts
}

// best264 picks the highest-priority 264 date: first indicator blank,
// second indicator 2 (distribution) before 1 (publication).
func best264(rec *marc.Record) (Fact, bool) {
	for _, ind2 := range []string{"2", "1"} {
		for _, field := range rec.Fields("264") {
			if field.Ind1 != " " || field.Ind2 != ind2 {
				continue
			}
			raw := strings.TrimSpace(field.First("c"))
			if raw == "" {
				continue
			}
			fact := Parse(raw)
			fact.Source = "264"
			fact.Role = RoleDistribution
			return fact, true
		}
	}
	return Fact{}, false
}

// from008 reads Date 1 from positions 07-10 of the 008 field. A bib 008
// must be exactly 40 characters to be trusted. The 008 encodes unknown
// year digits as "u"; those map to the "-" placeholder convention used
// everywhere else.
func from008(field008 string) (Fact, bool) {
	if len(field008) != 40 {
		return Fact{}, false
	}
	raw := strings.Map(func(r rune) rune {
		if r == 'u' {
			return '-'
		}
		return r
	}, field008[7:11])
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "----" {
		return Fact{}, false
	}
	fact := Parse(raw)
	if fact.Kind == KindUndated {
		return Fact{}, false
	}
	fact.Source = "008"
	fact.Role = RoleRelease
	return fact, true
}

// Parse normalizes one raw date expression. It never returns an error:
// unclassifiable input comes back as an undated fact whose Display is
// the original text. Parsing an already-normalized Display yields the
// same fact.
func Parse(raw string) Fact {
	original := strings.TrimSpace(raw)
	if original == "" {
		return Fact{Kind: KindUndated, Display: ""}
	}

	expr := original
	bracketed := strings.Contains(expr, "[") && strings.Contains(expr, "]")
	if bracketed {
		expr = strings.NewReplacer("[", "", "]", "").Replace(expr)
	}
	// Trailing punctuation comes off before classification, except "?"
	// which is the circa marker and is handled by stripCirca.
	expr = strings.TrimRight(expr, ".,;:! ")
	expr = strings.TrimSpace(expr)

	expr, circa := stripCirca(expr)

	if fact, ok := classifyYearExpr(expr, bracketed, circa); ok {
		return fact
	}

	// Free-text date, e.g. "April 5, 2023". Only worth attempting when
	// the expression carries at least one digit.
	if strings.ContainsAny(expr, "0123456789") {
		if t, err := dateparse.ParseAny(expr); err == nil {
			year := t.Year()
			fact := Fact{
				Kind:      KindSingle,
				Display:   bracket(t.Format("2006-01-02"), bracketed),
				SortValue: &year,
			}
			if circa {
				fact.Kind = KindCirca
				fact.Display = bracket("ca. "+t.Format("2006-01-02"), bracketed)
			}
			return fact
		}
	}

	return Fact{Kind: KindUndated, Display: original}
}

// stripCirca removes "circa" markers and reports whether any were
// present: a "ca."/"circa" prefix or a trailing question mark.
func stripCirca(expr string) (string, bool) {
	circa := false
	lower := strings.ToLower(expr)
	for _, prefix := range []string{"circa ", "ca. ", "ca.", "ca "} {
		if strings.HasPrefix(lower, prefix) {
			expr = strings.TrimSpace(expr[len(prefix):])
			circa = true
			break
		}
	}
	if strings.HasSuffix(expr, "?") {
		expr = strings.TrimSpace(strings.TrimRight(expr, "? "))
		circa = true
	}
	return expr, circa
}

// classifyYearExpr handles the year-shaped expressions: a full 4-digit
// year, a 4-character placeholder token, and year ranges. A trailing
// hyphen adjacent to digits with no second year is a placeholder, not a
// range separator; a hyphen flanked by two year tokens is a range.
func classifyYearExpr(expr string, bracketed, circa bool) (Fact, bool) {
	if digits, count, ok := scanYearToken(expr); ok {
		if count == 4 {
			year := digits
			kind := KindSingle
			display := expr
			if circa {
				kind = KindCirca
				display = "ca. " + expr
			}
			return Fact{Kind: kind, Display: bracket(display, bracketed), SortValue: &year}, true
		}
		// Partially known year: decade- or century-floor the sort value
		// and keep the placeholder notation verbatim. A circa marker on
		// a placeholder stays in the display as the "?" suffix.
		sort := digits
		for i := count; i < 4; i++ {
			sort *= 10
		}
		display := expr
		if circa {
			display += "?"
		}
		return Fact{Kind: KindPlaceholder, Display: bracket(display, bracketed), SortValue: &sort}, true
	}

	if start, ok := scanRange(expr); ok {
		display := expr
		if circa {
			display = "ca. " + expr
		}
		kind := KindRange
		if circa {
			kind = KindCirca
		}
		return Fact{Kind: kind, Display: bracket(display, bracketed), SortValue: &start}, true
	}

	return Fact{}, false
}

// token scanner states
const (
	scanDigits = iota
	scanHyphens
)

// scanYearToken scans a 4-character token of leading digits optionally
// followed by placeholder hyphens. It returns the value of the leading
// digits and how many there were. A digit after a hyphen, any other
// character, or a wrong length rejects the token.
func scanYearToken(tok string) (digits, count int, ok bool) {
	if len(tok) != 4 {
		return 0, 0, false
	}
	state := scanDigits
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			if state == scanHyphens {
				return 0, 0, false
			}
			digits = digits*10 + int(r-'0')
			count++
		case r == '-':
			state = scanHyphens
		default:
			return 0, 0, false
		}
	}
	if count == 0 {
		return 0, 0, false
	}
	return digits, count, true
}

// scanRange recognizes a year range: a 4-digit start year, a hyphen,
// and either a 4-digit or abbreviated 2-digit end year, or nothing at
// all for an open-ended range ("1950-"). The start year is the sort
// value; both endpoints stay in the display.
func scanRange(expr string) (start int, ok bool) {
	parts := strings.SplitN(expr, "-", 2)
	if len(parts) != 2 {
		return 0, false
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])

	startYear, err := strconv.Atoi(first)
	if err != nil || len(first) != 4 {
		return 0, false
	}
	switch len(second) {
	case 0:
		return startYear, true
	case 2, 4:
		if _, err := strconv.Atoi(second); err != nil {
			return 0, false
		}
		return startYear, true
	default:
		return 0, false
	}
}

func bracket(display string, bracketed bool) string {
	if bracketed {
		return "[" + display + "]"
	}
	return display
}
