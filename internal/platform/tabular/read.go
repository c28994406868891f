package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	perr "subshift/internal/platform/errors"

	"github.com/xuri/excelize/v2"
)

// Read loads the first sheet of an xlsx workbook or a whole CSV file.
// The first row is the header.
func Read(path string) (*Table, error) {
	var (
		recs [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		recs, err = readXLSX(path)
	case ".csv":
		recs, err = readCSV(path)
	default:
		return nil, perr.InvalidArgf("unsupported table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "read table %s", path)
	}
	if len(recs) == 0 {
		return New(), nil
	}
	t := New(recs[0]...)
	for _, r := range recs[1:] {
		cells := make([]any, len(r))
		for i, c := range r {
			cells[i] = c
		}
		t.Append(cells...)
	}
	return t, nil
}

func readXLSX(path string) (recs [][]string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return f.GetRows(f.GetSheetName(0))
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
