package repository

import "github.com/okian/ontrack/internal/domain/refdata"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithTrackBenchmarks seeds the store with track benchmark rows.
func WithTrackBenchmarks(rows []refdata.TrackBenchmark) Option {
	return func(s *MemStore) {
		s.tracks = append(s.tracks, rows...)
	}
}

// WithTransitionStatistics seeds the store with transition statistic rows.
func WithTransitionStatistics(rows []refdata.TransitionStatistic) Option {
	return func(s *MemStore) {
		s.stats = append(s.stats, rows...)
	}
}

// WithAnchors seeds the store with anchor benchmark rows.
func WithAnchors(rows []refdata.AnchorBenchmark) Option {
	return func(s *MemStore) {
		s.anchors = append(s.anchors, rows...)
	}
}
