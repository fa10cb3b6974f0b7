package excel

import (
	"os"
	"path/filepath"
	"testing"

	"camp-proximity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadTableValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"latitude", "longitude", "description"},
		{56.7110, 36.7615, "Point A (Near Camp)"},
		{56.7130, 36.7600, "Point B (Near Camp)"},
	})

	table, err := ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"latitude", "longitude", "description"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Point A (Near Camp)", table.Rows[0].Description())
	assert.Equal(t, "56.711", table.Rows[0][models.ColLatitude])
}

func TestReadTableMissingLongitudeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"latitude", "description"},
		{56.7110, "Point A"},
	})

	_, err := ReadTable(path)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{models.ColLongitude}, schemaErr.Missing)
	assert.Equal(t, path, schemaErr.File)
}

func TestReadTableMissingBothColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"name", "value"},
		{"x", 1},
	})

	_, err := ReadTable(path)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{models.ColLatitude, models.ColLongitude}, schemaErr.Missing)
}

func TestReadTableHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"latitude", "longitude", "description"},
	})

	_, err := ReadTable(path)
	var emptyErr *EmptySourceError
	require.ErrorAs(t, err, &emptyErr)
}

func TestReadTableNoSuchFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "absent.xlsx"))
	var missingErr *MissingSourceError
	require.ErrorAs(t, err, &missingErr)
}

func TestReadTablePadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"latitude", "longitude", "description"},
		{56.7110, 36.7615},
	})

	table, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0].Description())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.xlsx")
	in := models.Table{
		Columns: []string{models.ColLatitude, models.ColLongitude, models.ColDescription, models.ColDistanceKm},
		Rows: []models.Record{
			{
				models.ColLatitude:    "56.711",
				models.ColLongitude:   "36.7615",
				models.ColDescription: "Point A (Near Camp)",
				models.ColDistanceKm:  "0.1",
			},
		},
	}

	require.NoError(t, WriteTable(path, in))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Point A (Near Camp)", out.Rows[0].Description())
	assert.Equal(t, "0.1", out.Rows[0][models.ColDistanceKm])
}

func TestLoadOrCreateWritesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geodetic_data.xlsx")

	table, err := LoadOrCreate(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "sample workbook should now exist")

	require.Len(t, table.Rows, 3)
	assert.True(t, table.HasCoordinateColumns())
	assert.Equal(t, "Point A (Near Camp)", table.Rows[0].Description())
}

func TestLoadOrCreateReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"latitude", "longitude", "description"},
		{50.0, 30.0, "Far"},
	})

	table, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Far", table.Rows[0].Description())
}
