package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// MemStore is an in-memory Store. Source rows live as plain slices; reads for
// a derivation run go through an immutable snapshot built on demand, so the
// run never observes mid-run edits. Derived series are kept per event and
// replaced wholesale.
type MemStore struct {
	mu      sync.RWMutex
	tracks  []refdata.TrackBenchmark
	stats   []refdata.TransitionStatistic
	anchors []refdata.AnchorBenchmark
	series  map[event.Key]refdata.TargetSeries
}

// NewMemStore creates an in-memory store seeded via options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		series: make(map[event.Key]refdata.TargetSeries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot freezes the current source tables into an immutable view.
func (s *MemStore) Snapshot(_ context.Context) (*refdata.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.tracks) == 0 && len(s.stats) == 0 && len(s.anchors) == 0 {
		return nil, ErrEmptyStore
	}
	// NewSnapshot copies the rows, so the snapshot stays frozen even if the
	// store is edited afterwards.
	return refdata.NewSnapshot(s.tracks, s.stats, s.anchors), nil
}

// Events returns the sorted event catalog.
func (s *MemStore) Events(ctx context.Context) ([]event.Key, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Events(), nil
}

// TargetSeries returns a copy of the stored series for key.
func (s *MemStore) TargetSeries(_ context.Context, key event.Key) (refdata.TargetSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[key]
	if !ok {
		return refdata.TargetSeries{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return series.Clone(), nil
}

// ReplaceTargetSeries swaps the full series for key under the write lock.
func (s *MemStore) ReplaceTargetSeries(_ context.Context, key event.Key, series refdata.TargetSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[key] = series.Clone()
	return nil
}

// ReplaceReferenceRows swaps all three source tables at once. This is the
// write path for imports and admin edits; callers are expected to retrigger
// a derivation run afterwards.
func (s *MemStore) ReplaceReferenceRows(_ context.Context, tracks []refdata.TrackBenchmark, stats []refdata.TransitionStatistic, anchors []refdata.AnchorBenchmark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = append([]refdata.TrackBenchmark(nil), tracks...)
	s.stats = append([]refdata.TransitionStatistic(nil), stats...)
	s.anchors = append([]refdata.AnchorBenchmark(nil), anchors...)
}
