package analysis

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func makeEfforts(n int, climbs ...int) []Effort {
	efforts := make([]Effort, n)
	for i := range efforts {
		efforts[i] = Effort{Index: i, SegmentID: int64(1000 + i)}
	}
	for _, c := range climbs {
		efforts[c].ClimbCategory = 2
	}
	return efforts
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestSelectClimbsOnRide(t *testing.T) {
	s := Selector{Strategy: StrategyRandom, Size: 2, Rand: seeded(1)}
	efforts := makeEfforts(10, 2, 5, 7)

	got := s.Select(efforts, FilterClimbs, true)

	// Categorized climbs are kept in full, not sampled
	if len(got) != 3 {
		t.Fatalf("selected %d efforts, want 3", len(got))
	}
	for i, want := range []int{2, 5, 7} {
		if got[i].Index != want {
			t.Errorf("selected[%d] = %d, want %d", i, got[i].Index, want)
		}
	}
}

func TestSelectFallsBackToSample(t *testing.T) {
	tests := []struct {
		name    string
		efforts []Effort
		filter  Filter
		isRide  bool
	}{
		{"climbs filter without climbs", makeEfforts(50), FilterClimbs, true},
		{"climbs filter on a run", makeEfforts(50, 1, 2), FilterClimbs, false},
		{"all filter", makeEfforts(50, 1, 2), FilterAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Selector{Strategy: StrategyRandom, Size: DefaultSampleSize, Rand: seeded(7)}
			got := s.Select(tt.efforts, tt.filter, tt.isRide)

			if len(got) != DefaultSampleSize {
				t.Errorf("selected %d efforts, want %d", len(got), DefaultSampleSize)
			}
			if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Index < got[j].Index }) {
				t.Error("sample does not keep fetch order")
			}
			seen := make(map[int]bool)
			for _, e := range got {
				if seen[e.Index] {
					t.Errorf("effort %d selected twice", e.Index)
				}
				seen[e.Index] = true
			}
		})
	}
}

func TestSampleNeverExceedsCap(t *testing.T) {
	for _, n := range []int{0, 1, 5, 29, 30, 31, 100} {
		for _, strategy := range []Strategy{StrategyRandom, StrategyFirst} {
			s := Selector{Strategy: strategy, Size: 30, Rand: seeded(uint64(n))}
			got := s.Select(makeEfforts(n), FilterClimbs, true)

			want := n
			if want > 30 {
				want = 30
			}
			if len(got) != want {
				t.Errorf("%s with %d efforts: selected %d, want %d", strategy, n, len(got), want)
			}
		}
	}
}

func TestSampleStrategies(t *testing.T) {
	efforts := makeEfforts(10)

	first := Selector{Strategy: StrategyFirst, Size: 3}.Sample(efforts)
	for i, e := range first {
		if e.Index != i {
			t.Errorf("first[%d] = %d, want %d", i, e.Index, i)
		}
	}

	all := Selector{Strategy: StrategyAll, Size: 3}.Sample(efforts)
	if len(all) != 10 {
		t.Errorf("all strategy kept %d, want 10", len(all))
	}

	uncapped := Selector{Strategy: StrategyRandom, Size: 0}.Sample(efforts)
	if len(uncapped) != 10 {
		t.Errorf("size 0 kept %d, want 10", len(uncapped))
	}

	// Same seed, same sample
	a := Selector{Strategy: StrategyRandom, Size: 4, Rand: seeded(42)}.Sample(efforts)
	b := Selector{Strategy: StrategyRandom, Size: 4, Rand: seeded(42)}.Sample(efforts)
	for i := range a {
		if a[i].Index != b[i].Index {
			t.Fatalf("seeded samples differ: %v vs %v", a, b)
		}
	}
}

func TestNewSelector(t *testing.T) {
	if s := NewSelector("first", 5); s.Strategy != StrategyFirst || s.Size != 5 {
		t.Errorf("NewSelector(first, 5) = %+v", s)
	}
	if s := NewSelector("bogus", 5); s.Strategy != StrategyRandom {
		t.Errorf("NewSelector(bogus) strategy = %q, want random", s.Strategy)
	}
}
