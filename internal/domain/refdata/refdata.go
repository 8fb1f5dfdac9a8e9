// Package refdata contains the reference table rows read by a derivation run
// and the target series it produces.
package refdata

import (
	"sort"

	"github.com/okian/ontrack/internal/domain/event"
)

// TrackBenchmark is one benchmark time on a development track. A track is one
// of several alternative developmental pathways; not every track has an entry
// at every age, and multiple tracks may share an age.
type TrackBenchmark struct {
	Event   event.Key
	TrackID string
	Age     int
	Seconds float64
}

// TransitionStatistic is an externally computed typical improvement (usually
// a median over a large longitudinal population) for the age transition
// AgeStart -> AgeStart+1. A negative value signals a population
// plateau/regression artifact, not a usable target trajectory.
type TransitionStatistic struct {
	Event    event.Key
	AgeStart int
	Seconds  float64
}

// AgeEnd returns the end of the one-year transition.
func (s TransitionStatistic) AgeEnd() int { return s.AgeStart + 1 }

// AnchorBenchmark is the fastest, most-developed benchmark for an event: the
// fixed point from which the rest of the age series cascades backward.
// Exactly one exists per event.
type AnchorBenchmark struct {
	Event   event.Key
	Age     int
	Seconds float64
}

// TargetSeries maps age to target time for one event. Within a series an
// older age is never slower: Seconds[a] >= Seconds[a+1].
type TargetSeries struct {
	Event   event.Key
	Seconds map[int]float64
}

// NewTargetSeries returns an empty series for key.
func NewTargetSeries(key event.Key) TargetSeries {
	return TargetSeries{Event: key, Seconds: make(map[int]float64)}
}

// Set records the target time for age.
func (t TargetSeries) Set(age int, seconds float64) {
	t.Seconds[age] = seconds
}

// At returns the target time for age, reporting absence explicitly.
func (t TargetSeries) At(age int) (float64, bool) {
	v, ok := t.Seconds[age]
	return v, ok
}

// Len returns the number of ages with a target time.
func (t TargetSeries) Len() int { return len(t.Seconds) }

// Ages returns the covered ages in ascending order.
func (t TargetSeries) Ages() []int {
	ages := make([]int, 0, len(t.Seconds))
	for age := range t.Seconds {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	return ages
}

// Floor returns the youngest covered age; ok is false for an empty series.
func (t TargetSeries) Floor() (int, bool) {
	ages := t.Ages()
	if len(ages) == 0 {
		return 0, false
	}
	return ages[0], true
}

// Ceiling returns the oldest covered age; ok is false for an empty series.
func (t TargetSeries) Ceiling() (int, bool) {
	ages := t.Ages()
	if len(ages) == 0 {
		return 0, false
	}
	return ages[len(ages)-1], true
}

// Clone returns an independent copy of the series.
func (t TargetSeries) Clone() TargetSeries {
	out := NewTargetSeries(t.Event)
	for age, v := range t.Seconds {
		out.Seconds[age] = v
	}
	return out
}
