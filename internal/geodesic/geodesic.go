package geodesic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"camp-proximity/internal/models"

	"go.uber.org/zap"
)

const earthRadiusKm = 6371.0

// Unreachable is the distance assigned to rows whose coordinates cannot be
// coerced. It compares greater than any finite threshold, so such rows are
// excluded by every filter.
func Unreachable() float64 {
	return math.Inf(1)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance computes the great-circle distance between two points in
// kilometers using the haversine formula.
func Distance(a, b models.Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lon1 := toRadians(a.Lon)
	lat2 := toRadians(b.Lat)
	lon2 := toRadians(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// ParseCoord coerces raw cell text to a finite coordinate value. Comma
// decimal separators are accepted.
func ParseCoord(val string) (float64, error) {
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", val)
	}
	return f, nil
}

// Evaluator measures distances from a fixed reference point. Coercion
// failures are reported as warnings, never as errors.
type Evaluator struct {
	reference models.Coordinate
	log       *zap.Logger
}

func NewEvaluator(reference models.Coordinate, log *zap.Logger) *Evaluator {
	return &Evaluator{reference: reference, log: log}
}

func (e *Evaluator) Reference() models.Coordinate {
	return e.reference
}

// RowDistance returns the distance in kilometers from the reference point to
// the record's coordinates. If either coordinate is missing or non-numeric it
// logs one warning identifying the row and returns the unreachable sentinel.
func (e *Evaluator) RowDistance(rec models.Record) float64 {
	lat, latErr := ParseCoord(rec[models.ColLatitude])
	lon, lonErr := ParseCoord(rec[models.ColLongitude])
	if latErr != nil || lonErr != nil {
		e.log.Warn("could not compute distance for row, skipping",
			zap.String("description", rec.Description()),
			zap.String("latitude", rec[models.ColLatitude]),
			zap.String("longitude", rec[models.ColLongitude]),
			zap.NamedError("latitude_error", latErr),
			zap.NamedError("longitude_error", lonErr),
		)
		return Unreachable()
	}
	return Distance(e.reference, models.Coordinate{Lat: lat, Lon: lon})
}
