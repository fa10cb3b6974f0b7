package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camp-proximity/internal/config"
	"camp-proximity/internal/excel"
	"camp-proximity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func testConfig(dir string) config.Config {
	return config.Config{
		InputFile:    filepath.Join(dir, "geodetic_data.xlsx"),
		FilteredFile: filepath.Join(dir, "filtered_geodetic_data.xlsx"),
		MapFile:      filepath.Join(dir, "camp_map.html"),
		Camp:         models.Coordinate{Lat: 56.7119, Lon: 36.7614},
		ThresholdKm:  5.0,
	}
}

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

func readMap(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestRunCreatesSampleAndOutputs(t *testing.T) {
	cfg := testConfig(t.TempDir())

	require.NoError(t, New(cfg, zap.NewNop()).Run())

	// Input did not exist, so the sample workbook was created and all three
	// sample points are within the threshold.
	filtered, err := excel.ReadTable(cfg.FilteredFile)
	require.NoError(t, err)
	assert.Len(t, filtered.Rows, 3)
	assert.True(t, filtered.HasColumn(models.ColDistanceKm))

	html := readMap(t, cfg.MapFile)
	assert.Contains(t, html, "Student Camp Location")
	assert.Contains(t, html, "Point A (Near Camp)")
}

func TestRunFiltersFarPoints(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeWorkbook(t, cfg.InputFile, [][]interface{}{
		{"latitude", "longitude", "description"},
		{56.7110, 36.7615, "A"},
		{50.0, 30.0, "Far"},
	})

	require.NoError(t, New(cfg, zap.NewNop()).Run())

	filtered, err := excel.ReadTable(cfg.FilteredFile)
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "A", filtered.Rows[0].Description())

	html := readMap(t, cfg.MapFile)
	assert.Contains(t, html, `"label":"A"`)
	assert.NotContains(t, html, "Far")
}

func TestRunSchemaErrorStillProducesCampOnlyMap(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeWorkbook(t, cfg.InputFile, [][]interface{}{
		{"latitude", "description"},
		{56.7110, "A"},
	})

	err := New(cfg, zap.NewNop()).Run()
	require.Error(t, err, "schema failure should be reported")
	var schemaErr *excel.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	_, statErr := os.Stat(cfg.FilteredFile)
	assert.True(t, os.IsNotExist(statErr), "no filtered table on schema error")

	html := readMap(t, cfg.MapFile)
	assert.Contains(t, html, "Student Camp Location")
	assert.Equal(t, 1, strings.Count(html, `"label"`), "camp marker only")
}

func TestRunEmptySourceStillProducesMap(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeWorkbook(t, cfg.InputFile, [][]interface{}{
		{"latitude", "longitude", "description"},
	})

	err := New(cfg, zap.NewNop()).Run()
	require.Error(t, err)
	var emptyErr *excel.EmptySourceError
	assert.ErrorAs(t, err, &emptyErr)

	html := readMap(t, cfg.MapFile)
	assert.Contains(t, html, "Student Camp Location")
}

func TestRunNoPointsWithinThresholdSkipsTableWrite(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeWorkbook(t, cfg.InputFile, [][]interface{}{
		{"latitude", "longitude", "description"},
		{50.0, 30.0, "Far"},
	})

	require.NoError(t, New(cfg, zap.NewNop()).Run())

	_, statErr := os.Stat(cfg.FilteredFile)
	assert.True(t, os.IsNotExist(statErr), "empty result must not be persisted")

	html := readMap(t, cfg.MapFile)
	assert.Contains(t, html, "Student Camp Location")
	assert.NotContains(t, html, "Far")
}
