package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"

	"segment-leader/internal/polyline"
)

// EarthRadiusMeters is Earth's mean radius
const EarthRadiusMeters = 6371000.0

// MaxPlotDifference clamps the scatter plot's x axis (200% off the leader)
const MaxPlotDifference = 2.0

// DefaultZoom is the initial map zoom level
const DefaultZoom = 13

// Metric is a y-axis choice for the insights scatter plot
type Metric string

const (
	MetricElapsedTime  Metric = "elapsed_time"
	MetricDistance     Metric = "distance"
	MetricSpeed        Metric = "speed"
	MetricAverageGrade Metric = "average_grade"
)

// Metrics lists the scatter metrics in display order
var Metrics = []Metric{MetricElapsedTime, MetricDistance, MetricSpeed, MetricAverageGrade}

// Label returns the axis label for a metric
func (m Metric) Label() string {
	switch m {
	case MetricElapsedTime:
		return "Elapsed time (s)"
	case MetricDistance:
		return "Distance (km)"
	case MetricSpeed:
		return "Speed (km/h)"
	case MetricAverageGrade:
		return "Average grade (%)"
	}
	return string(m)
}

// ScatterPoint is one ranked segment on the insights plot
type ScatterPoint struct {
	X       float64 // difference from leader
	Y       float64
	Terrain Terrain
	Name    string
}

// ScatterSeries plots difference from leader against metric for ranked rows.
// Unranked rows have no x value and are left out.
func ScatterSeries(rows []RankedSegment, metric Metric) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		diff, ok := r.Difference()
		if !ok {
			continue
		}
		points = append(points, ScatterPoint{
			X:       diff,
			Y:       metricValue(r, metric),
			Terrain: r.Terrain,
			Name:    r.Name,
		})
	}
	return points
}

func metricValue(r RankedSegment, metric Metric) float64 {
	switch metric {
	case MetricDistance:
		return math.Round(r.Distance/1000*100) / 100
	case MetricSpeed:
		return r.Speed
	case MetricAverageGrade:
		return r.AverageGrade
	default:
		return float64(r.ElapsedTime)
	}
}

// XAxisRange returns the plot's x range: [0, min(2, max difference)]
func XAxisRange(rows []RankedSegment) (float64, float64) {
	maxDiff := 0.0
	for _, r := range rows {
		if d, ok := r.Difference(); ok && d > maxDiff {
			maxDiff = d
		}
	}
	return 0, math.Min(MaxPlotDifference, maxDiff)
}

// TerrainSummary aggregates ranked rows for one terrain type
type TerrainSummary struct {
	Terrain        Terrain
	Count          int
	MeanDifference float64
	BestDifference float64
}

// SummarizeByTerrain groups ranked rows by terrain, in a fixed terrain order,
// skipping terrains with no ranked rows
func SummarizeByTerrain(rows []RankedSegment) []TerrainSummary {
	order := []Terrain{TerrainUphill, TerrainFlat, TerrainDownhill, TerrainOther}
	byTerrain := make(map[Terrain]*TerrainSummary)

	for _, r := range rows {
		d, ok := r.Difference()
		if !ok {
			continue
		}
		s, exists := byTerrain[r.Terrain]
		if !exists {
			s = &TerrainSummary{Terrain: r.Terrain, BestDifference: d}
			byTerrain[r.Terrain] = s
		}
		s.Count++
		s.MeanDifference += d
		if d < s.BestDifference {
			s.BestDifference = d
		}
	}

	var out []TerrainSummary
	for _, t := range order {
		if s, ok := byTerrain[t]; ok {
			s.MeanDifference /= float64(s.Count)
			out = append(out, *s)
		}
	}
	return out
}

// RGB is a path color
type RGB struct {
	R, G, B uint8
}

// HexToRGB parses a "#rrggbb" color
func HexToRGB(h string) (RGB, error) {
	h = strings.TrimPrefix(h, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", h, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MapView is everything a map renderer needs to draw one path
type MapView struct {
	Name      string
	Center    polyline.Coordinate
	Zoom      int
	Path      [][2]float64 // [lng, lat] pairs, the order map layers expect
	Color     RGB
	Bounds    s2.Rect
	LengthM   float64
	NumPoints int
}

// NewMapView builds a MapView for coords. An empty path yields a zero-length
// view centered on (0, 0).
func NewMapView(name string, coords []polyline.Coordinate, hexColor string) (MapView, error) {
	color, err := HexToRGB(hexColor)
	if err != nil {
		return MapView{}, err
	}

	path := make([][2]float64, len(coords))
	for i, c := range coords {
		path[i] = [2]float64{c.Lng, c.Lat}
	}

	return MapView{
		Name:      name,
		Center:    Centroid(coords),
		Zoom:      DefaultZoom,
		Path:      path,
		Color:     color,
		Bounds:    Bounds(coords),
		LengthM:   PathLength(coords),
		NumPoints: len(coords),
	}, nil
}

// Centroid returns the mean latitude and longitude of coords
func Centroid(coords []polyline.Coordinate) polyline.Coordinate {
	if len(coords) == 0 {
		return polyline.Coordinate{}
	}
	var sumLat, sumLng float64
	for _, c := range coords {
		sumLat += c.Lat
		sumLng += c.Lng
	}
	n := float64(len(coords))
	return polyline.Coordinate{Lat: sumLat / n, Lng: sumLng / n}
}

// Bounds returns the lat/lng bounding rectangle of coords
func Bounds(coords []polyline.Coordinate) s2.Rect {
	rect := s2.EmptyRect()
	for _, c := range coords {
		rect = rect.AddPoint(s2.LatLngFromDegrees(c.Lat, c.Lng))
	}
	return rect
}

// PathLength returns the great-circle length of the path in meters
func PathLength(coords []polyline.Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		p1 := s2.LatLngFromDegrees(coords[i-1].Lat, coords[i-1].Lng)
		p2 := s2.LatLngFromDegrees(coords[i].Lat, coords[i].Lng)
		total += p1.Distance(p2).Radians() * EarthRadiusMeters
	}
	return total
}
