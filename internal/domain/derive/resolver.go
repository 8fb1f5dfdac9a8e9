// Package derive implements the target-time derivation engine: per-transition
// delta resolution, the anchor-backward cascade, and series validation.
package derive

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// DefaultStatisticAgeCeiling bounds the youth band: transitions starting at
// this age or later never consult the population statistic, both because the
// external statistic does not cover late ages and because track data is the
// authority for the late-development phase.
const DefaultStatisticAgeCeiling = 18

// Source identifies which reference table supplied a transition delta.
type Source string

// Delta sources.
const (
	SourceStatistic    Source = "statistic"
	SourceTrackAverage Source = "track_average"
)

// Decision records how one transition's delta was resolved. Decisions exist
// for the duration of a single run and feed the audit trace, so a reviewer
// can see which source supplied every delta.
type Decision struct {
	Event      event.Key
	AgeStart   int
	AgeEnd     int
	Source     Source
	Seconds    float64
	TrackCount int // tracks contributing to a track average; 0 for a statistic
}

// ResolverOption applies a configuration option to the Resolver.
type ResolverOption func(*Resolver)

// WithStatisticAgeCeiling sets the first age at which the population
// statistic is no longer consulted.
func WithStatisticAgeCeiling(age int) ResolverOption {
	return func(r *Resolver) {
		if age > 0 {
			r.statisticAgeCeiling = age
		}
	}
}

// Resolver selects the data source for each age-transition delta against a
// frozen snapshot of the reference tables.
type Resolver struct {
	snap                *refdata.Snapshot
	statisticAgeCeiling int
}

// NewResolver creates a resolver over snap with configuration options.
func NewResolver(snap *refdata.Snapshot, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		snap:                snap,
		statisticAgeCeiling: DefaultStatisticAgeCeiling,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the delta for the ageStart -> ageStart+1 transition of key.
//
// Policy, in order: within the youth band a present, non-negative population
// statistic wins. A negative statistic reflects attrition/plateau dynamics in
// the population rather than a forward-looking target, so it is distrusted
// and the transition falls through to the track average. At or past the
// ceiling only the track average is considered. When neither source is
// usable the transition is unresolvable; it is never defaulted to zero.
func (r *Resolver) Resolve(_ context.Context, key event.Key, ageStart int) (Decision, error) {
	d := Decision{Event: key, AgeStart: ageStart, AgeEnd: ageStart + 1}

	if ageStart < r.statisticAgeCeiling {
		if v, ok := r.snap.TransitionStatistic(key, ageStart); ok && v >= 0 {
			d.Source = SourceStatistic
			d.Seconds = v
			return d, nil
		}
	}

	avg, n, ok := r.trackAverage(key, ageStart)
	if !ok {
		return Decision{}, fmt.Errorf("%s transition %d-%d: %w", key, ageStart, ageStart+1, ErrUnresolvableDelta)
	}
	d.Source = SourceTrackAverage
	d.Seconds = avg
	d.TrackCount = n
	return d, nil
}

// trackAverage averages time(ageStart) - time(ageStart+1) over every track
// that has benchmarks at both ages. Tracks are visited in sorted order so the
// floating-point accumulation is identical run to run. ok is false when no
// track covers both ages.
func (r *Resolver) trackAverage(key event.Key, ageStart int) (avg float64, n int, ok bool) {
	byTrack := make(map[string]map[int]float64)
	for _, row := range r.snap.TrackBenchmarks(key) {
		ages, found := byTrack[row.TrackID]
		if !found {
			ages = make(map[int]float64)
			byTrack[row.TrackID] = ages
		}
		ages[row.Age] = row.Seconds
	}

	trackIDs := make([]string, 0, len(byTrack))
	for id := range byTrack {
		trackIDs = append(trackIDs, id)
	}
	sort.Strings(trackIDs)

	var sum float64
	for _, id := range trackIDs {
		ages := byTrack[id]
		younger, okStart := ages[ageStart]
		older, okEnd := ages[ageStart+1]
		if okStart && okEnd {
			sum += younger - older
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return sum / float64(n), n, true
}
