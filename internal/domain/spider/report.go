package spider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TitleEntry one element of the report "title" array.
// Indicator rows are ["label", meta...]; plain strings are section headers.
type TitleEntry struct {
	Label     string
	Composite bool
}

// ReportTable 10jqka flash report (main.txt)
//
// Titles and Rows are aligned by position only; Rows[i] holds the period values
// of Titles[i], most recent first.
type ReportTable struct {
	Titles []TitleEntry
	Rows   []json.RawMessage
}

type rawReportTable struct {
	Title  []json.RawMessage `json:"title"`
	Report []json.RawMessage `json:"report"`
}

// DecodeReportTable parses a flash report document
func DecodeReportTable(data []byte) (*ReportTable, error) {
	var table ReportTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: report table: %v", ErrSchemaNotFound, err)
	}
	return &table, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *ReportTable) UnmarshalJSON(data []byte) error {
	var raw rawReportTable
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Title == nil || raw.Report == nil {
		return fmt.Errorf("missing title or report")
	}

	t.Titles = make([]TitleEntry, len(raw.Title))
	for i, entry := range raw.Title {
		t.Titles[i] = decodeTitleEntry(entry)
	}
	t.Rows = raw.Report
	return nil
}

func decodeTitleEntry(data json.RawMessage) TitleEntry {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) == 0 {
		return TitleEntry{}
	}

	var label string
	if err := json.Unmarshal(parts[0], &label); err != nil {
		return TitleEntry{}
	}
	return TitleEntry{Label: label, Composite: true}
}

// Position returns the first indicator row titled label, or -1
func (t *ReportTable) Position(label string) int {
	for i, entry := range t.Titles {
		if entry.Composite && entry.Label == label {
			return i
		}
	}
	return -1
}

// LatestValue returns the most recent period value for label.
// Missing rows and non-numeric values yield nil.
func (t *ReportTable) LatestValue(label string) *float64 {
	pos := t.Position(label)
	if pos < 0 || pos >= len(t.Rows) {
		return nil
	}

	var periods []json.RawMessage
	if err := json.Unmarshal(t.Rows[pos], &periods); err != nil || len(periods) == 0 {
		return nil
	}
	return coerceFloat(periods[0])
}

// LatestValues resolves labels in order
func (t *ReportTable) LatestValues(labels []string) []*float64 {
	values := make([]*float64, len(labels))
	for i, label := range labels {
		values[i] = t.LatestValue(label)
	}
	return values
}

func coerceFloat(data json.RawMessage) *float64 {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}

	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = val
	default:
		return nil
	}

	f, ok := ParseFloat(s)
	if !ok {
		return nil
	}
	return &f
}
