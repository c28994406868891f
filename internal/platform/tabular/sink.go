package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Writer persists a table at path
type Writer interface {
	Write(path string, t *Table) error
}

// WriterFunc adapts a function to Writer
type WriterFunc func(path string, t *Table) error

// Write calls f
func (f WriterFunc) Write(path string, t *Table) error { return f(path, t) }

// XLSX writes the first worksheet of an Office Open XML workbook
type XLSX struct{}

// Write implements Writer
func (XLSX) Write(path string, t *Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = spreadsheetValue(v)
			// excelize truncates long strings silently, so reject them here
			if s, ok := vals[j].(string); ok && utf8.RuneCountInString(s) > excelize.TotalCellChars {
				name, _ := excelize.CoordinatesToCellName(j+1, i+2)
				return fmt.Errorf("cell %s holds %d chars, over the %d limit", name, utf8.RuneCountInString(s), excelize.TotalCellChars)
			}
		}
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// CSV writes RFC 4180 comma separated text
type CSV struct{}

// Write implements Writer
func (CSV) Write(path string, t *Table) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(fh)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	rec := make([]string, 0, len(t.Header))
	for _, r := range t.Rows {
		rec = rec[:0]
		for _, v := range r {
			rec = append(rec, FormatCell(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Sink writes the spreadsheet first and falls back once to CSV
type Sink struct {
	Primary  Writer
	Fallback Writer
}

// NewSink returns the xlsx -> csv sink
func NewSink() *Sink {
	return &Sink{Primary: XLSX{}, Fallback: CSV{}}
}

// FallbackPath swaps the extension of p for .csv
func FallbackPath(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".csv"
}

// Write persists t and returns the path actually written.
// A .csv primary path goes straight to the CSV writer with no further fallback.
func (s *Sink) Write(ctx context.Context, t *Table, path string) (string, error) {
	log := logger.C(ctx).With().Str("component", "tabular").Logger()
	if err := ensureDir(path); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "create output dir for %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if err := s.Fallback.Write(path, t); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeIO, "write csv %s", path)
		}
		log.Info().Str("path", path).Int("rows", t.Len()).Msg("table written")
		return path, nil
	}

	primaryErr := s.Primary.Write(path, t)
	if primaryErr == nil {
		log.Info().Str("path", path).Int("rows", t.Len()).Msg("table written")
		return path, nil
	}
	alt := FallbackPath(path)
	log.Warn().Err(primaryErr).Str("path", path).Str("fallback", alt).Msg("spreadsheet write failed, falling back to csv")
	if err := s.Fallback.Write(alt, t); err != nil {
		log.Error().Err(err).Str("fallback", alt).Msg("fallback write failed")
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "write %s failed (%v) and fallback %s failed", path, primaryErr, alt)
	}
	log.Info().Str("path", alt).Int("rows", t.Len()).Msg("table written to fallback")
	return alt, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
