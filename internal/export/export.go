package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"segment-leader/internal/analysis"
)

// Supported export formats
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

var header = []string{
	"segment_id", "name", "city", "pr_rank", "distance_m", "elapsed_time_s", "leader_time_s",
	"difference_from_leader", "speed_kmh", "leader_speed_kmh", "average_grade_pct",
	"elevation_difference_m", "climb_category", "terrain", "unranked",
}

type rankedParquetRow struct {
	SegmentID            int64   `parquet:"name=segment_id, type=INT64"`
	Name                 string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	City                 string  `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PRRank               int64   `parquet:"name=pr_rank, type=INT64"`
	DistanceM            float64 `parquet:"name=distance_m, type=DOUBLE"`
	ElapsedTimeS         int64   `parquet:"name=elapsed_time_s, type=INT64"`
	LeaderTimeS          int64   `parquet:"name=leader_time_s, type=INT64"`
	DifferenceFromLeader float64 `parquet:"name=difference_from_leader, type=DOUBLE"`
	SpeedKmh             float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	LeaderSpeedKmh       float64 `parquet:"name=leader_speed_kmh, type=DOUBLE"`
	AverageGradePct      float64 `parquet:"name=average_grade_pct, type=DOUBLE"`
	ElevationDifferenceM float64 `parquet:"name=elevation_difference_m, type=DOUBLE"`
	ClimbCategory        int64   `parquet:"name=climb_category, type=INT64"`
	Terrain              string  `parquet:"name=terrain, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unranked             bool    `parquet:"name=unranked, type=BOOLEAN"`
}

// FileName returns the export file name for an activity
func FileName(activityID int64, format string, now time.Time) string {
	return fmt.Sprintf("activity_%d_%s.%s", activityID, now.Format("20060102T150405"), normalizeFormat(format))
}

// Write exports rows to dir in the given format and returns the file path
func Write(dir, format string, activityID int64, rows []analysis.RankedSegment) (string, error) {
	format = normalizeFormat(format)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(activityID, format, time.Now()))

	switch format {
	case FormatCSV:
		if err := WriteCSV(path, rows); err != nil {
			return "", fmt.Errorf("write ranking csv: %w", err)
		}
	default:
		if err := WriteParquet(path, rows); err != nil {
			return "", fmt.Errorf("write ranking parquet: %w", err)
		}
	}
	return path, nil
}

func normalizeFormat(format string) string {
	if format == FormatCSV {
		return FormatCSV
	}
	return FormatParquet
}

// WriteCSV writes the ranked table as CSV. Unranked rows leave the leader
// columns empty.
func WriteCSV(path string, rows []analysis.RankedSegment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.SegmentID, 10),
			r.Name,
			r.City,
			formatIntPtr(r.PRRank),
			formatFloat(r.Distance),
			strconv.Itoa(r.ElapsedTime),
			formatLeaderTime(r),
			formatFloatPtr(r.DifferenceFromLeader),
			formatFloat(r.Speed),
			formatLeaderSpeed(r),
			formatFloat(r.AverageGrade),
			formatFloat(r.ElevationDifference),
			strconv.Itoa(r.ClimbCategory),
			string(r.Terrain),
			strconv.FormatBool(r.Unranked),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteParquet writes the ranked table as snappy-compressed parquet. Unranked
// rows carry NaN differences and leader speeds.
func WriteParquet(path string, rows []analysis.RankedSegment) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(rankedParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func toParquetRow(r analysis.RankedSegment) rankedParquetRow {
	row := rankedParquetRow{
		SegmentID:            r.SegmentID,
		Name:                 r.Name,
		City:                 r.City,
		DistanceM:            r.Distance,
		ElapsedTimeS:         int64(r.ElapsedTime),
		LeaderTimeS:          int64(r.LeaderTime),
		DifferenceFromLeader: valueOrNaN(r.DifferenceFromLeader),
		SpeedKmh:             r.Speed,
		LeaderSpeedKmh:       r.LeaderSpeed,
		AverageGradePct:      r.AverageGrade,
		ElevationDifferenceM: r.ElevationDifference,
		ClimbCategory:        int64(r.ClimbCategory),
		Terrain:              string(r.Terrain),
		Unranked:             r.Unranked,
	}
	if r.PRRank != nil {
		row.PRRank = int64(*r.PRRank)
	}
	if r.Unranked {
		row.LeaderSpeedKmh = math.NaN()
	}
	return row
}

func formatLeaderTime(r analysis.RankedSegment) string {
	if r.Unranked {
		return ""
	}
	return strconv.Itoa(r.LeaderTime)
}

func formatLeaderSpeed(r analysis.RankedSegment) string {
	if r.Unranked {
		return ""
	}
	return formatFloat(r.LeaderSpeed)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
