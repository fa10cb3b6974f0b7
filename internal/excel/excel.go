// Package excel is the tabular store: point tables in and out as xlsx
// workbooks, first sheet, header row with named columns.
package excel

import (
	"fmt"
	"os"
	"strconv"

	"camp-proximity/internal/models"

	"github.com/xuri/excelize/v2"
)

// DataSheet is the sheet name used for generated workbooks. Reading accepts
// whatever the workbook's first sheet is called.
const DataSheet = "Points"

// SchemaError reports required columns missing from the header row.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns %v", e.File, e.Missing)
}

// EmptySourceError reports a workbook that opened fine but holds no data rows.
type EmptySourceError struct {
	File string
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("%s: no data rows", e.File)
}

// MissingSourceError reports a workbook that could not be opened even after
// the sample-data fallback.
type MissingSourceError struct {
	File string
	Err  error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("%s: cannot open workbook: %v", e.File, e.Err)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }

// ReadTable reads the first sheet of the workbook at path into a table. Row 1
// is the header; the header must contain the latitude and longitude columns
// (case-sensitive). Cells beyond the header width are dropped, rows shorter
// than the header are padded with empty values.
func ReadTable(path string) (models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Table{}, &MissingSourceError{File: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return models.Table{}, &EmptySourceError{File: path}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return models.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return models.Table{}, &EmptySourceError{File: path}
	}

	header := rows[0]
	var missing []string
	for _, required := range []string{models.ColLatitude, models.ColLongitude} {
		found := false
		for _, c := range header {
			if c == required {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return models.Table{}, &SchemaError{File: path, Missing: missing}
	}
	if len(rows) == 1 {
		return models.Table{}, &EmptySourceError{File: path}
	}

	t := models.Table{Columns: append([]string{}, header...)}
	for _, row := range rows[1:] {
		rec := make(models.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// LoadOrCreate reads the workbook at path, first writing the sample workbook
// if no file exists there yet.
func LoadOrCreate(path string) (models.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := CreateSampleFile(path); err != nil {
			return models.Table{}, &MissingSourceError{File: path, Err: err}
		}
	}
	return ReadTable(path)
}

// WriteTable writes the table to a new workbook at path using a stream
// writer. Numeric-looking cells are written as numbers so spreadsheet tools
// treat distance_km as a numeric column.
func WriteTable(path string, t models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(DataSheet)
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(DataSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, rec := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			row[j] = cellValue(rec[col])
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if DataSheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	return f.SaveAs(path)
}

func cellValue(raw string) interface{} {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

// CreateSampleFile writes a small workbook of points near the camp, used
// when the input table does not exist yet.
func CreateSampleFile(path string) error {
	sample := models.Table{
		Columns: []string{models.ColLatitude, models.ColLongitude, models.ColDescription},
		Rows: []models.Record{
			{models.ColLatitude: "56.7110", models.ColLongitude: "36.7615", models.ColDescription: "Point A (Near Camp)"},
			{models.ColLatitude: "56.7130", models.ColLongitude: "36.7600", models.ColDescription: "Point B (Near Camp)"},
			{models.ColLatitude: "56.7150", models.ColLongitude: "36.7590", models.ColDescription: "Point C (Near Camp)"},
		},
	}
	return WriteTable(path, sample)
}
