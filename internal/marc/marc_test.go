package marc

import "testing"

const marcxmlCollection = `<?xml version="1.0" encoding="UTF-8"?>
<collection xmlns="http://www.loc.gov/MARC21/slim">
  <record>
    <controlfield tag="001">12345</controlfield>
    <controlfield tag="008">xxxxxxx1970xxxxxxxxxxxxxxxxxxxxxxxxengxx</controlfield>
    <datafield tag="245" ind1="0" ind2="0">
      <subfield code="a">Main Title</subfield>
      <subfield code="p">Name of Part</subfield>
    </datafield>
    <datafield tag="260" ind1=" " ind2=" ">
      <subfield code="c">[198-]</subfield>
    </datafield>
    <datafield tag="260" ind1="1" ind2="0">
      <subfield code="c">1999</subfield>
    </datafield>
  </record>
</collection>`

func TestParseCollection(t *testing.T) {
	records, err := ParseCollection([]byte(marcxmlCollection))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID() != "12345" {
		t.Errorf("Expected id 12345, got %q", rec.ID())
	}
	if got := rec.ControlField("008"); len(got) != 40 {
		t.Errorf("Expected 40-char 008, got %d chars", len(got))
	}

	fields260 := rec.Fields("260")
	if len(fields260) != 2 {
		t.Fatalf("Expected 2 occurrences of 260, got %d", len(fields260))
	}
	if fields260[0].Ind1 != " " || fields260[0].Ind2 != " " {
		t.Errorf("Expected blank indicators on first 260, got %q %q", fields260[0].Ind1, fields260[0].Ind2)
	}
	if fields260[1].First("c") != "1999" {
		t.Errorf("Expected second 260 $c 1999, got %q", fields260[1].First("c"))
	}
}

func TestParseCollectionRejectsMalformedXML(t *testing.T) {
	if _, err := ParseCollection([]byte("<collection><record></collection>")); err == nil {
		t.Fatal("Expected error for malformed XML")
	}
}

func TestFieldAccessors(t *testing.T) {
	rec := Record{
		DataFields: []DataField{
			{
				Tag: "245",
				SubFields: []SubField{
					{Code: "a", Value: "Title"},
					{Code: "c", Value: "director, A Person"},
					{Code: "c", Value: "second statement"},
				},
			},
		},
	}

	field := rec.Fields("245")[0]
	if got := field.First("c"); got != "director, A Person" {
		t.Errorf("Expected first $c, got %q", got)
	}
	if got := field.Subfields("c"); len(got) != 2 {
		t.Errorf("Expected 2 $c values, got %d", len(got))
	}
	if got := field.First("z"); got != "" {
		t.Errorf("Expected empty value for missing code, got %q", got)
	}
	if got := rec.Fields("650"); got != nil {
		t.Errorf("Expected no 650 fields, got %v", got)
	}
	if got := rec.ControlField("001"); got != "" {
		t.Errorf("Expected empty 001, got %q", got)
	}
}
