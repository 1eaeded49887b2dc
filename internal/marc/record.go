package marc

import "strings"

// Record represents one MARC record as returned by the catalog, holding
// control fields (001, 008, ...) and data fields in document order.
type Record struct {
	ControlFields []ControlField
	DataFields    []DataField
}

// ControlField is a fixed-position MARC field with no subfields.
type ControlField struct {
	Tag   string
	Value string
}

// DataField is a variable MARC field occurrence with indicators and
// an ordered list of subfields. Tags repeat, so one tag may map to
// several DataFields on a record.
type DataField struct {
	Tag       string
	Ind1      string
	Ind2      string
	SubFields []SubField
}

// SubField is a single (code, value) pair within a data field.
type SubField struct {
	Code  string
	Value string
}

// ID returns the record identifier from the 001 control field,
// or an empty string if the record has none.
func (r *Record) ID() string {
	return strings.TrimSpace(r.ControlField("001"))
}

// ControlField returns the value of the first control field with the
// given tag, or an empty string.
func (r *Record) ControlField(tag string) string {
	for _, cf := range r.ControlFields {
		if cf.Tag == tag {
			return cf.Value
		}
	}
	return ""
}

// Fields returns all data field occurrences matching any of the
// given tags, in record order.
func (r *Record) Fields(tags ...string) []DataField {
	var fields []DataField
	for _, df := range r.DataFields {
		for _, tag := range tags {
			if df.Tag == tag {
				fields = append(fields, df)
				break
			}
		}
	}
	return fields
}

// Subfields returns every value for the given subfield code, in order.
func (df DataField) Subfields(code string) []string {
	var values []string
	for _, sf := range df.SubFields {
		if sf.Code == code {
			values = append(values, sf.Value)
		}
	}
	return values
}

// First returns the first value for the given subfield code, or an
// empty string. Most FTVA extraction rules only want the first
// occurrence of a subfield.
func (df DataField) First(code string) string {
	for _, sf := range df.SubFields {
		if sf.Code == code {
			return sf.Value
		}
	}
	return ""
}
