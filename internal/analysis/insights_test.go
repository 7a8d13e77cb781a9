package analysis

import (
	"math"
	"testing"

	"segment-leader/internal/polyline"
)

func TestScatterSeries(t *testing.T) {
	rows := []RankedSegment{
		NewRankedSegment(Effort{Index: 0, Name: "A", Distance: 1234.567, ElapsedTime: 300, AverageGrade: 5, ElevationHigh: 80, ElevationLow: 20}, 250),
		NewRankedSegment(Effort{Index: 1, Name: "B", Distance: 500, ElapsedTime: 90}, 0),
		NewRankedSegment(Effort{Index: 2, Name: "C", Distance: 2000, ElapsedTime: 400}, 400),
	}

	points := ScatterSeries(rows, MetricDistance)
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2 (unranked row skipped)", len(points))
	}
	if points[0].Name != "A" || points[0].Y != 1.23 {
		t.Errorf("points[0] = %+v, want A at 1.23 km", points[0])
	}
	if math.Abs(points[0].X-0.2) > 1e-12 || points[0].Terrain != TerrainUphill {
		t.Errorf("points[0] = %+v, want x=0.2 uphill", points[0])
	}
	if points[1].X != 0 {
		t.Errorf("points[1].X = %v, want 0", points[1].X)
	}

	elapsed := ScatterSeries(rows, MetricElapsedTime)
	if elapsed[1].Y != 400 {
		t.Errorf("elapsed Y = %v, want 400", elapsed[1].Y)
	}
}

func TestXAxisRange(t *testing.T) {
	tests := []struct {
		name  string
		diffs []float64
		want  float64
	}{
		{"small differences", []float64{0.1, 0.4, math.NaN()}, 0.4},
		{"clamped at two", []float64{0.3, 3.5}, 2},
		{"no ranked rows", []float64{math.NaN()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := XAxisRange(rankedRows(tt.diffs...))
			if lo != 0 || hi != tt.want {
				t.Errorf("XAxisRange() = [%v, %v], want [0, %v]", lo, hi, tt.want)
			}
		})
	}
}

func TestSummarizeByTerrain(t *testing.T) {
	rows := []RankedSegment{
		NewRankedSegment(Effort{Index: 0, ElapsedTime: 110, AverageGrade: 5, ElevationHigh: 100, ElevationLow: 50}, 100),
		NewRankedSegment(Effort{Index: 1, ElapsedTime: 130, AverageGrade: 6, ElevationHigh: 100, ElevationLow: 40}, 100),
		NewRankedSegment(Effort{Index: 2, ElapsedTime: 100}, 80),
		NewRankedSegment(Effort{Index: 3, ElapsedTime: 100}, 0),
	}

	got := SummarizeByTerrain(rows)
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want 2", len(got))
	}
	up := got[0]
	if up.Terrain != TerrainUphill || up.Count != 2 {
		t.Errorf("uphill summary = %+v", up)
	}
	if math.Abs(up.MeanDifference-0.2) > 1e-9 || math.Abs(up.BestDifference-0.1) > 1e-9 {
		t.Errorf("uphill mean/best = %v/%v, want 0.2/0.1", up.MeanDifference, up.BestDifference)
	}
	if got[1].Terrain != TerrainFlat || got[1].Count != 1 {
		t.Errorf("flat summary = %+v", got[1])
	}
}

func TestHexToRGB(t *testing.T) {
	got, err := HexToRGB("#ed1c24")
	if err != nil {
		t.Fatalf("HexToRGB() error = %v", err)
	}
	if got != (RGB{R: 237, G: 28, B: 36}) {
		t.Errorf("HexToRGB() = %+v, want {237 28 36}", got)
	}

	for _, bad := range []string{"", "#fff", "#zzzzzz", "#1234567"} {
		if _, err := HexToRGB(bad); err == nil {
			t.Errorf("HexToRGB(%q) expected error", bad)
		}
	}
}

func TestNewMapView(t *testing.T) {
	coords := []polyline.Coordinate{
		{Lat: 40.0, Lng: -105.0},
		{Lat: 40.01, Lng: -105.0},
		{Lat: 40.02, Lng: -105.02},
	}

	view, err := NewMapView("Strava Activity", coords, "#ed1c24")
	if err != nil {
		t.Fatalf("NewMapView() error = %v", err)
	}

	if math.Abs(view.Center.Lat-40.01) > 1e-9 || math.Abs(view.Center.Lng+105.00666666666666) > 1e-9 {
		t.Errorf("Center = %+v", view.Center)
	}
	if view.Zoom != DefaultZoom {
		t.Errorf("Zoom = %d, want %d", view.Zoom, DefaultZoom)
	}
	if view.Path[0] != [2]float64{-105.0, 40.0} {
		t.Errorf("Path[0] = %v, want [lng lat]", view.Path[0])
	}
	if view.NumPoints != 3 {
		t.Errorf("NumPoints = %d, want 3", view.NumPoints)
	}
	if view.Bounds.Lo().Lat.Degrees() > 40.0+1e-9 || view.Bounds.Hi().Lat.Degrees() < 40.02-1e-9 {
		t.Errorf("Bounds = %v", view.Bounds)
	}

	// 0.01 degrees of latitude is ~1112 m
	first := PathLength(coords[:2])
	if math.Abs(first-1111.95) > 1 {
		t.Errorf("PathLength(first leg) = %v, want ~1112", first)
	}
	if view.LengthM <= first {
		t.Errorf("LengthM = %v, want > %v", view.LengthM, first)
	}
}

func TestNewMapViewEmpty(t *testing.T) {
	view, err := NewMapView("empty", nil, "#000000")
	if err != nil {
		t.Fatalf("NewMapView() error = %v", err)
	}
	if view.NumPoints != 0 || view.LengthM != 0 || !view.Bounds.IsEmpty() {
		t.Errorf("empty view = %+v", view)
	}
}
