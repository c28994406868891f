// Package tabular holds the row/column tables every batch step reads and writes,
// plus the spreadsheet-with-CSV-fallback sink
package tabular

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Table is a header plus rows of loosely typed cells.
// Tables read from disk carry string cells only.
type Table struct {
	Header []string
	Rows   [][]any
}

// New returns an empty table with the given header
func New(header ...string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// Append adds one row; short rows are padded with nil
func (t *Table) Append(cells ...any) {
	row := make([]any, max(len(t.Header), len(cells)))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len is the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a header name, matched case-insensitively, or -1
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// String returns the cell formatted as text; out-of-range cells are empty
func (t *Table) String(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return FormatCell(t.Rows[row][col])
}

// Column returns every cell of the named column as text
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.String(i, idx)
	}
	return out, true
}

// WithColumns returns a copy with extra columns appended; fill computes the new cells per row
func (t *Table) WithColumns(names []string, fill func(row int) []any) *Table {
	out := New(append(append([]string(nil), t.Header...), names...)...)
	for i, r := range t.Rows {
		cells := make([]any, len(t.Header), len(out.Header))
		copy(cells, r)
		extra := fill(i)
		cells = append(cells, extra...)
		out.Append(cells...)
	}
	return out
}

// Filter returns a copy holding only rows for which keep is true
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := New(t.Header...)
	for i, r := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// FormatCell renders a cell the same way for CSV output and for rereads.
// nil pointers become empty cells, times become RFC 3339 UTC and string
// slices become JSON arrays.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return FormatCell(*x)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case *float64:
		if x == nil {
			return ""
		}
		return FormatCell(*x)
	case []string:
		if x == nil {
			x = []string{}
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// spreadsheetValue keeps numbers numeric for the xlsx writer and formats the rest
func spreadsheetValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int, int64, float64, bool:
		return x
	case *int:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return FormatCell(*x)
	default:
		return FormatCell(x)
	}
}

// ParseTime reads the cell formats this package writes plus the common
// "YYYY-MM-DD HH:MM:SS" spreadsheet rendering
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(sec), 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTexts decodes a JSON array text cell, empty cells give nil
func ParseTexts(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
