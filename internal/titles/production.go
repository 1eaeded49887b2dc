package titles

import "strings"

// ProductionType is the classifier value from the FTVA production
// database. It gates which title source takes priority and whether a
// record gets series/episode title handling.
type ProductionType string

const (
	Theatrical       ProductionType = "theatrical"
	TelevisionSeries ProductionType = "television series"
	MiniSeries       ProductionType = "mini-series"
	Serial           ProductionType = "serials"
	News             ProductionType = "news"
	HomeMovie        ProductionType = "home movies"
	Newsreel         ProductionType = "newsreels"
	Trailer          ProductionType = "trailers"
	Outtakes         ProductionType = "outtakes"
	StudentWork      ProductionType = "student works"
	Unknown          ProductionType = ""
)

// ParseProductionTypes cleans up the production database's raw
// production_type value. The field holds a list of strings delimited by
// carriage returns; each entry is lowercased and trimmed.
func ParseProductionTypes(raw string) []ProductionType {
	var types []ProductionType
	for _, item := range strings.Split(strings.ToLower(raw), "\r") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		types = append(types, ProductionType(item))
	}
	return types
}

// IsSeries reports whether the production type gets serial title
// handling (separate series and episode titles).
func (pt ProductionType) IsSeries() bool {
	switch pt {
	case TelevisionSeries, MiniSeries, Serial, News:
		return true
	}
	return false
}

// PrefersWorkingTitle reports whether the production database's working
// title outranks the cataloged 245 transcription. For ephemeral and
// non-theatrical material the archive's in-house title is more reliable
// than the cataloger's transcribed one.
func (pt ProductionType) PrefersWorkingTitle() bool {
	switch pt {
	case HomeMovie, Newsreel, Trailer, Outtakes, StudentWork:
		return true
	}
	return false
}

// AnySeries reports whether any of the parsed production types calls
// for series handling.
func AnySeries(types []ProductionType) bool {
	for _, pt := range types {
		if pt.IsSeries() {
			return true
		}
	}
	return false
}

// AnyPrefersWorkingTitle reports whether any of the parsed production
// types prefers the working title.
func AnyPrefersWorkingTitle(types []ProductionType) bool {
	for _, pt := range types {
		if pt.PrefersWorkingTitle() {
			return true
		}
	}
	return false
}
