// Package lang maps MARC language codes to display names.
package lang

import (
	_ "embed"
	"encoding/json"
)

//go:embed language_map.json
var languageMapJSON []byte

var languageMap map[string]string

func init() {
	// The embedded map is part of the build; a parse failure here is a
	// packaging bug, not a runtime condition.
	if err := json.Unmarshal(languageMapJSON, &languageMap); err != nil {
		panic("lang: invalid embedded language_map.json: " + err.Error())
	}
}

// Name returns the display name for a 3-letter MARC language code, or
// an empty string for unknown codes.
func Name(code string) string {
	return languageMap[code]
}

// CodeFrom008 extracts the language code from positions 35-37 of a bib
// 008 field. A bib 008 must be exactly 40 characters or it cannot be
// trusted to have values in the right positions.
func CodeFrom008(field008 string) string {
	if len(field008) != 40 {
		return ""
	}
	return field008[35:38]
}

// NameFrom008 is the usual composition: code from the 008, then the
// display name.
func NameFrom008(field008 string) string {
	return Name(CodeFrom008(field008))
}
