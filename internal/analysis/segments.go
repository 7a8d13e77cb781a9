package analysis

import (
	"math"
	"sort"

	"segment-leader/internal/strava"
)

// Terrain is a coarse classification of a segment's profile
type Terrain string

const (
	TerrainUphill   Terrain = "uphill"
	TerrainDownhill Terrain = "downhill"
	TerrainFlat     Terrain = "flat"
	TerrainOther    Terrain = "other"
)

// Terrain thresholds
const (
	GradeThreshold     = 1.0  // percent
	ElevationThreshold = 10.0 // meters
)

// MetersPerSecondToKmh converts m/s to km/h
const MetersPerSecondToKmh = 3.6

// Effort is a segment effort flattened to the fields used for ranking.
// Index is the effort's position in the activity response.
type Effort struct {
	Index         int
	SegmentID     int64
	Name          string
	City          string
	PRRank        *int
	Distance      float64 // meters
	ElapsedTime   int     // seconds
	ClimbCategory int
	ActivityType  string
	AverageGrade  float64 // percent
	ElevationHigh float64
	ElevationLow  float64
}

// EffortsFromActivity flattens an activity's segment efforts in fetch order
func EffortsFromActivity(a *strava.Activity) []Effort {
	efforts := make([]Effort, len(a.SegmentEfforts))
	for i, e := range a.SegmentEfforts {
		efforts[i] = Effort{
			Index:         i,
			SegmentID:     e.Segment.ID,
			Name:          e.Name,
			City:          e.Segment.City,
			PRRank:        e.PRRank,
			Distance:      e.Distance,
			ElapsedTime:   e.ElapsedTime,
			ClimbCategory: e.Segment.ClimbCategory,
			ActivityType:  e.Segment.ActivityType,
			AverageGrade:  e.Segment.AverageGrade,
			ElevationHigh: e.Segment.ElevationHigh,
			ElevationLow:  e.Segment.ElevationLow,
		}
		if efforts[i].Name == "" {
			efforts[i].Name = e.Segment.Name
		}
		if efforts[i].Distance == 0 {
			efforts[i].Distance = e.Segment.Distance
		}
	}
	return efforts
}

// IsCategorizedClimb reports whether the segment has a climb category
func (e Effort) IsCategorizedClimb() bool {
	return e.ClimbCategory > 0
}

// RankedSegment is an effort with its performance against the segment leader
type RankedSegment struct {
	Effort

	LeaderTime int // seconds, 0 when the lookup failed

	// DifferenceFromLeader is athlete_time / leader_time - 1, nil when unranked
	DifferenceFromLeader *float64

	Speed               float64 // km/h
	LeaderSpeed         float64 // km/h, 0 when unranked
	ElevationDifference float64 // meters, negative for descents
	Terrain             Terrain

	Unranked  bool
	LookupErr error
}

// NewRankedSegment computes the derived metrics for an effort. A leaderTime of
// zero or less marks the row unranked.
func NewRankedSegment(e Effort, leaderTime int) RankedSegment {
	r := RankedSegment{
		Effort:              e,
		Speed:               Speed(e.Distance, e.ElapsedTime),
		ElevationDifference: ElevationDifference(e.ElevationHigh, e.ElevationLow, e.AverageGrade),
	}
	r.Terrain = ClassifyTerrain(e.AverageGrade, r.ElevationDifference)

	if diff, ok := DifferenceFromLeader(e.ElapsedTime, leaderTime); ok {
		r.LeaderTime = leaderTime
		r.DifferenceFromLeader = &diff
		r.LeaderSpeed = Speed(e.Distance, leaderTime)
	} else {
		r.Unranked = true
	}

	return r
}

// Difference returns DifferenceFromLeader, or 0 and false when unranked
func (r RankedSegment) Difference() (float64, bool) {
	if r.DifferenceFromLeader == nil {
		return 0, false
	}
	return *r.DifferenceFromLeader, true
}

// DifferenceFromLeader returns athlete/leader - 1. The result is undefined for
// a non-positive leader time.
func DifferenceFromLeader(athleteTime, leaderTime int) (float64, bool) {
	if leaderTime <= 0 {
		return 0, false
	}
	return float64(athleteTime)/float64(leaderTime) - 1, true
}

// Speed returns the average speed in km/h
func Speed(distanceMeters float64, seconds int) float64 {
	if seconds <= 0 {
		return 0
	}
	return distanceMeters / float64(seconds) * MetersPerSecondToKmh
}

// ElevationDifference is the segment's elevation range signed by its grade
func ElevationDifference(high, low, grade float64) float64 {
	diff := high - low
	if grade < 0 {
		return -diff
	}
	return diff
}

// ClassifyTerrain buckets a segment by its average grade (percent) and
// elevation difference (meters)
func ClassifyTerrain(grade, elevationDifference float64) Terrain {
	switch {
	case grade > GradeThreshold && elevationDifference > ElevationThreshold:
		return TerrainUphill
	case grade < -GradeThreshold && elevationDifference < -ElevationThreshold:
		return TerrainDownhill
	case math.Abs(grade) <= GradeThreshold && math.Abs(elevationDifference) <= ElevationThreshold:
		return TerrainFlat
	default:
		return TerrainOther
	}
}

// SortByDifference orders rows closest-to-leader first. Unranked rows go last.
// Ties keep fetch order.
func SortByDifference(rows []RankedSegment) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessByDifference(rows[i], rows[j])
	})
}

func lessByDifference(a, b RankedSegment) bool {
	da, aok := a.Difference()
	db, bok := b.Difference()
	switch {
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	case aok && bok && da != db:
		return da < db
	default:
		return a.Index < b.Index
	}
}

// FilterPRRank keeps efforts whose PR rank is at most maxRank. A maxRank of
// zero or less disables the filter.
func FilterPRRank(efforts []Effort, maxRank int) []Effort {
	if maxRank <= 0 {
		return efforts
	}
	var kept []Effort
	for _, e := range efforts {
		if e.PRRank != nil && *e.PRRank <= maxRank {
			kept = append(kept, e)
		}
	}
	return kept
}

// FilterMinDistance keeps rows at least minKm long
func FilterMinDistance(rows []RankedSegment, minKm float64) []RankedSegment {
	kept := make([]RankedSegment, 0, len(rows))
	for _, r := range rows {
		if r.Distance/1000 >= minKm {
			kept = append(kept, r)
		}
	}
	return kept
}

// MaxDistanceKm returns the longest segment in km
func MaxDistanceKm(rows []RankedSegment) float64 {
	var longest float64
	for _, r := range rows {
		if r.Distance > longest {
			longest = r.Distance
		}
	}
	return longest / 1000
}

// CountRanked returns how many rows have a leader time
func CountRanked(rows []RankedSegment) int {
	n := 0
	for _, r := range rows {
		if !r.Unranked {
			n++
		}
	}
	return n
}

