package marc

import (
	"encoding/xml"
	"fmt"
)

// MARCXML wire representation, as embedded in SRU searchRetrieve
// responses (http://www.loc.gov/MARC21/slim).

type xmlSubField struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

type xmlDataField struct {
	Tag       string        `xml:"tag,attr"`
	Ind1      string        `xml:"ind1,attr"`
	Ind2      string        `xml:"ind2,attr"`
	SubFields []xmlSubField `xml:"subfield"`
}

type xmlControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

type xmlRecord struct {
	ControlFields []xmlControlField `xml:"controlfield"`
	DataFields    []xmlDataField    `xml:"datafield"`
}

type sruResponse struct {
	XMLName xml.Name    `xml:"searchRetrieveResponse"`
	Records []xmlRecord `xml:"records>record>recordData>record"`
}

type xmlCollection struct {
	XMLName xml.Name    `xml:"collection"`
	Records []xmlRecord `xml:"record"`
}

// ParseSRUResponse decodes the MARCXML records embedded in an SRU
// searchRetrieve response body.
func ParseSRUResponse(body []byte) ([]Record, error) {
	var resp sruResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse SRU response: %w", err)
	}
	return convertRecords(resp.Records), nil
}

// ParseCollection decodes a standalone MARCXML document, either a
// <collection> of records or a single <record>.
func ParseCollection(body []byte) ([]Record, error) {
	var coll xmlCollection
	if err := xml.Unmarshal(body, &coll); err == nil && len(coll.Records) > 0 {
		return convertRecords(coll.Records), nil
	}

	var rec xmlRecord
	if err := xml.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse MARCXML: %w", err)
	}
	if len(rec.ControlFields) == 0 && len(rec.DataFields) == 0 {
		return nil, fmt.Errorf("no MARC records found in document")
	}
	return convertRecords([]xmlRecord{rec}), nil
}

func convertRecords(xmlRecords []xmlRecord) []Record {
	records := make([]Record, 0, len(xmlRecords))
	for _, xr := range xmlRecords {
		var r Record
		for _, cf := range xr.ControlFields {
			r.ControlFields = append(r.ControlFields, ControlField{Tag: cf.Tag, Value: cf.Value})
		}
		for _, df := range xr.DataFields {
			field := DataField{Tag: df.Tag, Ind1: df.Ind1, Ind2: df.Ind2}
			for _, sf := range df.SubFields {
				field.SubFields = append(field.SubFields, SubField{Code: sf.Code, Value: sf.Value})
			}
			r.DataFields = append(r.DataFields, field)
		}
		records = append(records, r)
	}
	return records
}
