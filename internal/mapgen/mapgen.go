// Package mapgen renders point tables to a single self-contained HTML
// document with a Leaflet map.
package mapgen

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"camp-proximity/internal/geodesic"
	"camp-proximity/internal/models"

	"go.uber.org/zap"
)

// CampLabel is the popup text on the reference marker.
const CampLabel = "Student Camp Location"

const defaultZoom = 12

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

var page = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Camp Proximity Map</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var markers = {{.Markers}};
markers.forEach(function (m) {
    L.circleMarker([m.lat, m.lon], {
        radius: 8,
        color: m.color,
        fillColor: m.color,
        fillOpacity: 0.8
    }).addTo(map).bindPopup(m.label).bindTooltip(m.label);
});
</script>
</body>
</html>
`))

type pageData struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Markers   template.JS
}

// Render writes an HTML map of the table's points and the reference point to
// path. The view is centered on the mean of the point coordinates when the
// table is non-empty and every row parses; otherwise it is centered on the
// reference point. Rows with unparseable coordinates are skipped with a
// warning.
func Render(t models.Table, reference models.Coordinate, path string, log *zap.Logger) error {
	markers := []marker{{
		Lat:   reference.Lat,
		Lon:   reference.Lon,
		Label: CampLabel,
		Color: "blue",
	}}

	var sumLat, sumLon float64
	allNumeric := true
	plotted := 0
	for _, rec := range t.Rows {
		lat, latErr := geodesic.ParseCoord(rec[models.ColLatitude])
		lon, lonErr := geodesic.ParseCoord(rec[models.ColLongitude])
		if latErr != nil || lonErr != nil {
			allNumeric = false
			log.Warn("could not plot point with invalid coordinates",
				zap.String("description", rec.Description()),
				zap.String("latitude", rec[models.ColLatitude]),
				zap.String("longitude", rec[models.ColLongitude]),
			)
			continue
		}
		label := rec.Description()
		if label == "" {
			label = fmt.Sprintf("Lat: %g, Lon: %g", lat, lon)
		}
		markers = append(markers, marker{Lat: lat, Lon: lon, Label: label, Color: "green"})
		sumLat += lat
		sumLon += lon
		plotted++
	}

	center := reference
	if plotted > 0 && allNumeric {
		center = models.Coordinate{
			Lat: sumLat / float64(plotted),
			Lon: sumLon / float64(plotted),
		}
	}
	if t.Empty() {
		log.Info("no points to plot, map will show only the reference marker")
	}

	encoded, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	defer out.Close()

	data := pageData{
		CenterLat: center.Lat,
		CenterLon: center.Lon,
		Zoom:      defaultZoom,
		Markers:   template.JS(encoded),
	}
	if err := page.Execute(out, data); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}
