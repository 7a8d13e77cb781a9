package analysis

import (
	"math/rand/v2"
	"sort"
	"time"
)

// Filter chooses which segments of an activity are considered
type Filter string

const (
	FilterAll    Filter = "all"
	FilterClimbs Filter = "climbs"
)

// Strategy decides how efforts are capped before leader lookups
type Strategy string

const (
	StrategyRandom Strategy = "random" // uniform sample of Size efforts
	StrategyFirst  Strategy = "first"  // first Size efforts
	StrategyAll    Strategy = "all"    // no cap
)

// DefaultSampleSize keeps one ranking run well inside Strava's 100 requests
// per 15 minutes
const DefaultSampleSize = 30

// Selector caps the number of segments looked up per run. Every selected
// segment costs one API request.
type Selector struct {
	Strategy Strategy
	Size     int        // <= 0 means no cap
	Rand     *rand.Rand // nil uses a time-seeded source
}

// NewSelector creates a Selector. Unknown strategies fall back to random.
func NewSelector(strategy string, size int) Selector {
	s := Selector{Strategy: Strategy(strategy), Size: size}
	switch s.Strategy {
	case StrategyRandom, StrategyFirst, StrategyAll:
	default:
		s.Strategy = StrategyRandom
	}
	return s
}

// Select applies the selection policy: categorized climbs only when asked for
// on a ride that has some, otherwise the capped sample. The result keeps
// fetch order.
func (s Selector) Select(efforts []Effort, filter Filter, isRide bool) []Effort {
	if filter == FilterClimbs && isRide {
		var climbs []Effort
		for _, e := range efforts {
			if e.IsCategorizedClimb() {
				climbs = append(climbs, e)
			}
		}
		if len(climbs) > 0 {
			return climbs
		}
	}
	return s.Sample(efforts)
}

// Sample caps efforts according to the strategy
func (s Selector) Sample(efforts []Effort) []Effort {
	if s.Strategy == StrategyAll || s.Size <= 0 || len(efforts) <= s.Size {
		return append([]Effort(nil), efforts...)
	}

	if s.Strategy == StrategyFirst {
		return append([]Effort(nil), efforts[:s.Size]...)
	}

	rng := s.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	picked := rng.Perm(len(efforts))[:s.Size]
	sort.Ints(picked)

	sample := make([]Effort, len(picked))
	for i, idx := range picked {
		sample[i] = efforts[idx]
	}
	return sample
}
