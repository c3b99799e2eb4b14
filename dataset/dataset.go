// Package dataset reads track tables from CSV and XLSX files and writes
// feature tables back to CSV.
//
// The first row holds column names. Every other cell is inferred with
// frame.Parse, so CSV and XLSX inputs produce identical tables.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// Read loads path, choosing the reader by extension (.csv, .xlsx).
func Read(path string) (*frame.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx":
		return ReadXLSX(path, "")
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "read %s", path)
	}
}

// ReadCSVFile loads a CSV file.
func ReadCSVFile(path string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

// ReadCSV parses CSV from r.
func ReadCSV(r io.Reader) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse csv")
	}
	return fromRecords(records)
}

// ReadXLSX loads one sheet of a workbook; an empty sheet name selects the first.
func ReadXLSX(path, sheet string) (*frame.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewModelError("dataset.ReadXLSX", "workbook has no sheets", errors.ErrEmptyData)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	return fromRecords(rows)
}

// fromRecords builds a table from a header row and data rows. Short rows are
// padded with missing cells, as spreadsheet readers drop trailing blanks.
func fromRecords(records [][]string) (*frame.Table, error) {
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.fromRecords", "no header row", errors.ErrEmptyData)
	}
	header := records[0]
	rows := records[1:]
	cols := make([]frame.Column, len(header))
	for j, name := range header {
		cols[j] = frame.Column{Name: strings.TrimSpace(name), Values: make([]frame.Value, len(rows))}
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, errors.NewDimensionError("dataset.fromRecords", len(header), len(row), 1)
		}
		for j, raw := range row {
			cols[j].Values[i] = frame.Parse(raw)
		}
	}
	return frame.NewTable(cols...)
}

// WriteCSV writes t to w with a header row. Missing cells are written empty.
func WriteCSV(w io.Writer, t *frame.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			if v := c.Values[i]; v.IsNull() {
				record[j] = ""
			} else {
				record[j] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

// WriteCSVFile writes t to path.
func WriteCSVFile(path string, t *frame.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}
