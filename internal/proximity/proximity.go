package proximity

import (
	"strconv"

	"camp-proximity/internal/geodesic"
	"camp-proximity/internal/models"

	"go.uber.org/zap"
)

// DefaultThresholdKm is the maximum distance from the reference point, in
// kilometers, at which a row is retained.
const DefaultThresholdKm = 5.0

// Filter returns a new table containing the rows of t whose distance from
// reference is at most thresholdKm, in their original order, each annotated
// with a distance_km column. The input table is not modified.
//
// An empty input yields an empty table. An input whose schema lacks the
// coordinate columns also yields an empty table, with a diagnostic to tell
// the two cases apart. Rows whose coordinates cannot be parsed are excluded
// regardless of threshold; the evaluator logs one warning per such row.
func Filter(t models.Table, reference models.Coordinate, thresholdKm float64, log *zap.Logger) models.Table {
	if t.Empty() {
		return models.Table{}
	}
	if !t.HasCoordinateColumns() {
		log.Error("table lacks latitude/longitude columns, nothing to filter",
			zap.Strings("columns", t.Columns))
		return models.Table{}
	}

	eval := geodesic.NewEvaluator(reference, log)

	columns := append([]string{}, t.Columns...)
	if !t.HasColumn(models.ColDistanceKm) {
		columns = append(columns, models.ColDistanceKm)
	}
	out := models.Table{Columns: columns}
	for _, rec := range t.Rows {
		d := eval.RowDistance(rec)
		if d > thresholdKm {
			continue
		}
		annotated := rec.Clone()
		annotated[models.ColDistanceKm] = strconv.FormatFloat(d, 'f', -1, 64)
		out.Rows = append(out.Rows, annotated)
	}
	return out
}
