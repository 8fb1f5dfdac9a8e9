// Package app wires the derivation pipeline into a runnable orchestrator:
// snapshot freeze, per-event fan-out, validation, report assembly and
// conditional persistence.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ontrack/internal/adapters/repository"
	"github.com/okian/ontrack/internal/domain/derive"
	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/pkg/logger"
	"github.com/okian/ontrack/pkg/metrics"
)

// Service orchestrates derivation runs over a reference store.
type Service struct {
	workerCount         int
	statisticAgeCeiling int
	standardFloor       int
	sprintFloor         int
	minPace             float64
	maxPace             float64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds the per-event fan-out. Events are independent, so
// parallelism is a throughput choice only; correctness never depends on it.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatisticAgeCeiling sets the first age at which transition deltas stop
// consulting the population statistic.
func WithStatisticAgeCeiling(age int) Option {
	return func(s *Service) {
		if age > 0 {
			s.statisticAgeCeiling = age
		}
	}
}

// WithAgeFloors sets the youngest series ages for standard and sprint-class
// events.
func WithAgeFloors(standard, sprint int) Option {
	return func(s *Service) {
		if standard > 0 && sprint > 0 {
			s.standardFloor = standard
			s.sprintFloor = sprint
		}
	}
}

// WithPaceBounds sets the validator's plausibility window in seconds per 100m.
func WithPaceBounds(minPace, maxPace float64) Option {
	return func(s *Service) {
		if minPace > 0 && maxPace > minPace {
			s.minPace = minPace
			s.maxPace = maxPace
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU(),
		statisticAgeCeiling: derive.DefaultStatisticAgeCeiling,
		standardFloor:       derive.DefaultStandardFloorAge,
		sprintFloor:         derive.DefaultSprintFloorAge,
		minPace:             derive.DefaultMinPacePer100,
		maxPace:             derive.DefaultMaxPacePer100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("derivation")
	}
	return s
}

// Run executes one derivation pass: freeze a snapshot, derive and validate
// every cataloged event, then persist the series of clean events only.
// Events with errors or violations keep their prior stored series untouched;
// their problems are attached to the report, and nothing is retried, since
// these are deterministic data-completeness issues rather than transient
// faults.
func (s *Service) Run(ctx context.Context, store repository.Store) (Report, error) {
	started := time.Now()
	rep := Report{
		RunID:    uuid.NewString(),
		Started:  started,
		Outcomes: make(map[string]Outcome),
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("freeze snapshot: %w", err)
	}
	catalog := snap.Events()

	metrics.RecordRunStarted()
	metrics.UpdateCatalogSize(len(catalog))
	s.logger.Info(ctx, "derivation run started",
		logger.String("runID", rep.RunID),
		logger.Int("events", len(catalog)),
		logger.Int("workers", s.workerCount),
	)

	resolver := derive.NewResolver(snap, derive.WithStatisticAgeCeiling(s.statisticAgeCeiling))
	builder := derive.NewBuilder(snap, resolver, derive.WithAgeFloors(s.standardFloor, s.sprintFloor))
	validator := derive.NewValidator(
		derive.WithRequiredFloors(s.standardFloor, s.sprintFloor),
		derive.WithPaceBounds(s.minPace, s.maxPace),
	)

	outcomes := s.deriveAll(ctx, builder, validator, catalog)

	// Single-writer persistence pass in catalog order. The caller may abort
	// via ctx before a write is committed; a committed write is always a
	// full series replacement.
	for _, o := range outcomes {
		if err := ctx.Err(); err != nil {
			rep.Finished = time.Now()
			return rep, fmt.Errorf("run aborted: %w", err)
		}
		if o.Clean() {
			if werr := store.ReplaceTargetSeries(ctx, o.Event, o.Series); werr != nil {
				o.Err = fmt.Errorf("replace target series: %w", werr)
			}
		}
		rep.Outcomes[o.Event.String()] = o
		if o.Clean() {
			rep.Updated = append(rep.Updated, o.Event)
			metrics.RecordEventUpdated()
			continue
		}
		rep.Skipped = append(rep.Skipped, o.Event)
		metrics.RecordEventSkipped()
		s.logger.Warn(ctx, "event needs attention",
			logger.String("event", o.Event.String()),
			logger.Any("reasons", o.Reasons()),
		)
	}

	rep.Finished = time.Now()
	metrics.RecordRunCompleted()
	metrics.RecordRunDuration(rep.Finished.Sub(started).Seconds())
	metrics.UpdateLastRunUnix(float64(rep.Finished.Unix()))
	s.logger.Info(ctx, "derivation run finished",
		logger.String("runID", rep.RunID),
		logger.Int("updated", len(rep.Updated)),
		logger.Int("skipped", len(rep.Skipped)),
	)
	return rep, nil
}

// deriveAll fans the catalog out over a bounded worker set. Results land in
// a fixed slice indexed by catalog position, so output order is stable no
// matter how the work interleaves.
func (s *Service) deriveAll(ctx context.Context, builder *derive.Builder, validator *derive.Validator, catalog []event.Key) []Outcome {
	outcomes := make([]Outcome, len(catalog))

	workers := s.workerCount
	if workers > len(catalog) {
		workers = len(catalog)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.deriveOne(ctx, builder, validator, catalog[i])
			}
		}()
	}

feed:
	for i := range catalog {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// deriveOne builds and validates a single event's series.
func (s *Service) deriveOne(ctx context.Context, builder *derive.Builder, validator *derive.Validator, key event.Key) Outcome {
	start := time.Now()
	o := Outcome{Event: key}

	series, decisions, err := builder.BuildSeries(ctx, key)
	o.Decisions = decisions
	if err != nil {
		o.Err = err
		switch {
		case errors.Is(err, derive.ErrMissingAnchor):
			metrics.RecordMissingAnchor()
		case errors.Is(err, derive.ErrUnresolvableDelta):
			metrics.RecordUnresolvableDelta()
		}
		return o
	}

	o.Series = series
	o.Violations = validator.Validate(key, series)
	for _, v := range o.Violations {
		metrics.RecordViolation(string(v.Kind))
	}

	metrics.RecordEventDeriveMillis(float64(time.Since(start).Milliseconds()))
	return o
}
