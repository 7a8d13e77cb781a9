package strava

import (
	"fmt"
	"strconv"
	"strings"
)

// Gender selects which leaderboard a leader time is read from
type Gender string

const (
	Men   Gender = "man"
	Women Gender = "women"
)

// LeaderTime returns the KOM (men) or QOM (women) time for the segment
func (s *Segment) LeaderTime(g Gender) (LeaderTime, error) {
	if s.Xoms == nil {
		return LeaderTime{}, fmt.Errorf("segment %d: %w", s.ID, ErrNoLeaderTime)
	}

	raw := s.Xoms.KOM
	if g == Women {
		raw = s.Xoms.QOM
	}
	if strings.TrimSpace(raw) == "" {
		return LeaderTime{}, fmt.Errorf("segment %d: %w", s.ID, ErrNoLeaderTime)
	}

	secs, err := ParseLeaderTime(raw)
	if err != nil {
		return LeaderTime{}, fmt.Errorf("segment %d: %w", s.ID, err)
	}
	if secs <= 0 {
		return LeaderTime{}, fmt.Errorf("segment %d: leader time %q: %w", s.ID, raw, ErrNoLeaderTime)
	}

	return LeaderTime{SegmentID: s.ID, ElapsedTime: secs}, nil
}

// ParseLeaderTime converts Strava's xoms strings to seconds.
// Accepted forms are "H:MM:SS", "M:SS" and "Ns" (e.g. "45s").
func ParseLeaderTime(s string) (int, error) {
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "s") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "s")))
		if err != nil {
			return 0, fmt.Errorf("parsing leader time %q: %w", s, ErrMalformedResponse)
		}
		return n, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parsing leader time %q: %w", s, ErrMalformedResponse)
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parsing leader time %q: %w", s, ErrMalformedResponse)
		}
		total = total*60 + n
	}
	return total, nil
}
