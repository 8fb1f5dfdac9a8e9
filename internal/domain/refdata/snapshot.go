package refdata

import (
	"sort"

	"github.com/okian/ontrack/internal/domain/event"
)

// Snapshot is an immutable view of the three source tables handed to one
// derivation run. A run computes entirely against the snapshot, so edits to
// the live store mid-run can never leak into the result. Absence of a row is
// always an explicit not-found result, never a zero value, because a zero
// would corrupt averaging and break the monotonic-progression invariant.
type Snapshot struct {
	tracks  map[event.Key][]TrackBenchmark
	stats   map[event.Key]map[int]float64
	anchors map[event.Key]AnchorBenchmark
	catalog []event.Key
}

// NewSnapshot copies the given rows into a frozen view. The event catalog is
// the union of keys across all three tables, sorted, so an event with track
// rows but no anchor still surfaces in a run (as a missing-anchor outcome)
// instead of vanishing silently.
func NewSnapshot(tracks []TrackBenchmark, stats []TransitionStatistic, anchors []AnchorBenchmark) *Snapshot {
	s := &Snapshot{
		tracks:  make(map[event.Key][]TrackBenchmark),
		stats:   make(map[event.Key]map[int]float64),
		anchors: make(map[event.Key]AnchorBenchmark, len(anchors)),
	}

	seen := make(map[event.Key]struct{})
	for _, row := range tracks {
		s.tracks[row.Event] = append(s.tracks[row.Event], row)
		seen[row.Event] = struct{}{}
	}
	for _, row := range stats {
		byAge, ok := s.stats[row.Event]
		if !ok {
			byAge = make(map[int]float64)
			s.stats[row.Event] = byAge
		}
		byAge[row.AgeStart] = row.Seconds
		seen[row.Event] = struct{}{}
	}
	for _, row := range anchors {
		s.anchors[row.Event] = row
		seen[row.Event] = struct{}{}
	}

	// Fix track row order so averages accumulate identically every run.
	for key := range s.tracks {
		rows := s.tracks[key]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].TrackID != rows[j].TrackID {
				return rows[i].TrackID < rows[j].TrackID
			}
			return rows[i].Age < rows[j].Age
		})
	}

	s.catalog = make([]event.Key, 0, len(seen))
	for key := range seen {
		s.catalog = append(s.catalog, key)
	}
	event.SortKeys(s.catalog)

	return s
}

// Events returns the sorted event catalog.
func (s *Snapshot) Events() []event.Key {
	out := make([]event.Key, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// TrackBenchmarks returns all track rows for key, ordered by track then age.
func (s *Snapshot) TrackBenchmarks(key event.Key) []TrackBenchmark {
	rows := s.tracks[key]
	out := make([]TrackBenchmark, len(rows))
	copy(out, rows)
	return out
}

// TransitionStatistic returns the central improvement value for the
// ageStart -> ageStart+1 transition, reporting absence explicitly.
func (s *Snapshot) TransitionStatistic(key event.Key, ageStart int) (float64, bool) {
	byAge, ok := s.stats[key]
	if !ok {
		return 0, false
	}
	v, ok := byAge[ageStart]
	return v, ok
}

// Anchor returns the anchor benchmark for key, reporting absence explicitly.
func (s *Snapshot) Anchor(key event.Key) (AnchorBenchmark, bool) {
	a, ok := s.anchors[key]
	return a, ok
}
