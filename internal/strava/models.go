package strava

import "time"

// Activity is the subset of Strava's DetailedActivity used for segment ranking
type Activity struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	SportType      string          `json:"sport_type"`
	StartDateLocal time.Time       `json:"start_date_local"`
	Distance       float64         `json:"distance"`     // meters
	ElapsedTime    int             `json:"elapsed_time"` // seconds
	Map            PolylineMap     `json:"map"`
	SegmentEfforts []SegmentEffort `json:"segment_efforts"`
}

// rideTypes are the activity and sport types Strava treats as rides
var rideTypes = map[string]bool{
	"Ride":              true,
	"VirtualRide":       true,
	"EBikeRide":         true,
	"EMountainBikeRide": true,
	"GravelRide":        true,
	"MountainBikeRide":  true,
}

// IsRide reports whether the activity is a bike ride
func (a *Activity) IsRide() bool {
	return rideTypes[a.Type] || rideTypes[a.SportType]
}

// PolylineMap holds the encoded activity or segment path
type PolylineMap struct {
	ID              string `json:"id"`
	Polyline        string `json:"polyline"`
	SummaryPolyline string `json:"summary_polyline"`
}

// Encoded returns the full-resolution polyline, falling back to the summary
func (m PolylineMap) Encoded() string {
	if m.Polyline != "" {
		return m.Polyline
	}
	return m.SummaryPolyline
}

// SegmentEffort is one traversal of a segment within an activity
type SegmentEffort struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	ElapsedTime int            `json:"elapsed_time"` // seconds
	MovingTime  int            `json:"moving_time"`  // seconds
	Distance    float64        `json:"distance"`     // meters
	PRRank      *int           `json:"pr_rank"`      // nil unless a top-3 personal effort
	KOMRank     *int           `json:"kom_rank"`
	Segment     SummarySegment `json:"segment"`
}

// SummarySegment is the segment embedded in a segment effort
type SummarySegment struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ActivityType  string  `json:"activity_type"`
	Distance      float64 `json:"distance"`      // meters
	AverageGrade  float64 `json:"average_grade"` // percent
	MaximumGrade  float64 `json:"maximum_grade"` // percent
	ElevationHigh float64 `json:"elevation_high"`
	ElevationLow  float64 `json:"elevation_low"`
	ClimbCategory int     `json:"climb_category"` // 0 = uncategorized, 5 = HC
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
}

// IsCategorizedClimb reports whether Strava assigned the segment a climb category
func (s SummarySegment) IsCategorizedClimb() bool {
	return s.ClimbCategory > 0
}

// Segment is the subset of Strava's DetailedSegment used for leader lookups
type Segment struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	ActivityType  string      `json:"activity_type"`
	Distance      float64     `json:"distance"`
	AverageGrade  float64     `json:"average_grade"`
	ElevationHigh float64     `json:"elevation_high"`
	ElevationLow  float64     `json:"elevation_low"`
	ClimbCategory int         `json:"climb_category"`
	City          string      `json:"city"`
	EffortCount   int         `json:"effort_count"`
	AthleteCount  int         `json:"athlete_count"`
	Map           PolylineMap `json:"map"`
	Xoms          *Xoms       `json:"xoms"`
}

// Xoms holds the leaderboard-topping times as Strava formats them ("5:23", "45s")
type Xoms struct {
	KOM     string `json:"kom"`
	QOM     string `json:"qom"`
	Overall string `json:"overall"`
}

// LeaderTime is the best recorded time on a segment for a gender
type LeaderTime struct {
	SegmentID   int64
	ElapsedTime int // seconds
}
