package models

// Column names the store and filter agree on. Matching is case-sensitive.
const (
	ColLatitude    = "latitude"
	ColLongitude   = "longitude"
	ColDescription = "description"
	ColDistanceKm  = "distance_km"
)

type Coordinate struct {
	Lat float64
	Lon float64
}

// Record is one table row keyed by column name. Values hold the raw cell
// text; coercion to numbers happens at the point of use.
type Record map[string]string

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Description returns the row's description, or empty if the column is absent.
func (r Record) Description() string {
	return r[ColDescription]
}

// Table is an ordered sequence of records. Transformations return a new
// Table; an existing Table is never mutated in place.
type Table struct {
	Columns []string
	Rows    []Record
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// HasCoordinateColumns reports whether the schema carries both required
// coordinate columns.
func (t Table) HasCoordinateColumns() bool {
	return t.HasColumn(ColLatitude) && t.HasColumn(ColLongitude)
}
