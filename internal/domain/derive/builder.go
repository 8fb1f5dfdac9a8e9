package derive

import (
	"context"
	"fmt"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// Default age floors for the target series.
const (
	DefaultStandardFloorAge = 15
	DefaultSprintFloorAge   = 18
)

// BuilderOption applies a configuration option to the Builder.
type BuilderOption func(*Builder)

// WithAgeFloors sets the youngest age of the series for standard and
// sprint-class events.
func WithAgeFloors(standard, sprint int) BuilderOption {
	return func(b *Builder) {
		if standard > 0 && sprint > 0 {
			b.standardFloor = standard
			b.sprintFloor = sprint
		}
	}
}

// Builder produces a target series by cascading deltas backward from the
// anchor benchmark.
type Builder struct {
	snap          *refdata.Snapshot
	resolver      *Resolver
	standardFloor int
	sprintFloor   int
}

// NewBuilder creates a builder over snap, resolving deltas via resolver.
func NewBuilder(snap *refdata.Snapshot, resolver *Resolver, opts ...BuilderOption) *Builder {
	b := &Builder{
		snap:          snap,
		resolver:      resolver,
		standardFloor: DefaultStandardFloorAge,
		sprintFloor:   DefaultSprintFloorAge,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FloorAge returns the youngest age the series must cover for key.
func (b *Builder) FloorAge(key event.Key) int {
	if key.SprintClass() {
		return b.sprintFloor
	}
	return b.standardFloor
}

// BuildSeries derives the full age series for key.
//
// The anchor seeds the oldest age, then ages walk downward with each resolved
// delta added to the age above: a delta is "younger minus older", so a
// non-negative delta always yields a slower time at the younger age. A
// negative resolved delta is passed through untouched; flagging it is the
// validator's job, because clamping here would mask a source-data problem.
// The decisions made along the way are returned for the audit trace, also on
// failure, so a reviewer can see how far the cascade got.
func (b *Builder) BuildSeries(ctx context.Context, key event.Key) (refdata.TargetSeries, []Decision, error) {
	anchor, ok := b.snap.Anchor(key)
	if !ok {
		return refdata.TargetSeries{}, nil, fmt.Errorf("%s: %w", key, ErrMissingAnchor)
	}

	floor := b.FloorAge(key)
	series := refdata.NewTargetSeries(key)
	series.Set(anchor.Age, anchor.Seconds)

	decisions := make([]Decision, 0, anchor.Age-floor)
	for age := anchor.Age - 1; age >= floor; age-- {
		d, err := b.resolver.Resolve(ctx, key, age)
		if err != nil {
			return refdata.TargetSeries{}, decisions, err
		}
		decisions = append(decisions, d)
		older, _ := series.At(age + 1)
		series.Set(age, older+d.Seconds)
	}
	return series, decisions, nil
}
