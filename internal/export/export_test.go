package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"segment-leader/internal/analysis"
)

func testRows() []analysis.RankedSegment {
	pr := 1
	ranked := analysis.NewRankedSegment(analysis.Effort{
		Index: 0, SegmentID: 101, Name: "Hill Climb", City: "Boulder", PRRank: &pr,
		Distance: 3000, ElapsedTime: 600, ClimbCategory: 3,
		AverageGrade: 6.1, ElevationHigh: 400, ElevationLow: 217,
	}, 450)
	unranked := analysis.NewRankedSegment(analysis.Effort{
		Index: 1, SegmentID: 102, Name: "Flat, Sprint", Distance: 1200, ElapsedTime: 120,
	}, 0)
	return []analysis.RankedSegment{ranked, unranked}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.csv")
	if err := WriteCSV(path, testRows()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(header, ",") {
		t.Errorf("header = %v", records[0])
	}

	ranked := records[1]
	if ranked[0] != "101" || ranked[3] != "1" || ranked[6] != "450" || ranked[7] != "0.333333" {
		t.Errorf("ranked row = %v", ranked)
	}
	if ranked[13] != "uphill" || ranked[14] != "false" {
		t.Errorf("ranked terrain/unranked = %s/%s", ranked[13], ranked[14])
	}

	unranked := records[2]
	if unranked[1] != "Flat, Sprint" {
		t.Errorf("name = %q, want quoted comma preserved", unranked[1])
	}
	if unranked[3] != "" || unranked[6] != "" || unranked[7] != "" || unranked[9] != "" {
		t.Errorf("unranked row leader columns = %v, want empty", unranked)
	}
	if unranked[14] != "true" {
		t.Errorf("unranked = %s, want true", unranked[14])
	}
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.parquet")
	if err := WriteParquet(path, testRows()); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(rankedParquetRow), 1)
	if err != nil {
		t.Fatalf("NewParquetReader() error = %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
	rows := make([]rankedParquetRow, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if rows[0].SegmentID != 101 || rows[0].LeaderTimeS != 450 || rows[0].Terrain != "uphill" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if math.Abs(rows[0].DifferenceFromLeader-(600.0/450.0-1)) > 1e-12 {
		t.Errorf("rows[0] difference = %v", rows[0].DifferenceFromLeader)
	}
	if !rows[1].Unranked || !math.IsNaN(rows[1].DifferenceFromLeader) || !math.IsNaN(rows[1].LeaderSpeedKmh) {
		t.Errorf("rows[1] = %+v, want unranked with NaN differences", rows[1])
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	tests := []struct {
		format  string
		wantExt string
	}{
		{FormatCSV, ".csv"},
		{FormatParquet, ".parquet"},
		{"", ".parquet"},
	}

	for _, tt := range tests {
		path, err := Write(dir, tt.format, 12345, testRows())
		if err != nil {
			t.Fatalf("Write(%q) error = %v", tt.format, err)
		}
		if filepath.Ext(path) != tt.wantExt {
			t.Errorf("Write(%q) path = %s, want %s extension", tt.format, path, tt.wantExt)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("Write(%q) produced no file: %v", tt.format, err)
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	if got := FileName(42, "csv", now); got != "activity_42_20240501T093000.csv" {
		t.Errorf("FileName() = %q", got)
	}
}
