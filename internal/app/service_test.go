package app_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ontrack/internal/adapters/repository"
	"github.com/okian/ontrack/internal/app"
	"github.com/okian/ontrack/internal/domain/derive"
	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

var (
	goodKey = event.Key{Course: event.CourseLong, Stroke: event.StrokeFree, Distance: 100, Gender: event.GenderFemale}

	orphanKey = event.Key{Course: event.CourseLong, Stroke: event.StrokeBack, Distance: 100, Gender: event.GenderFemale}

	gappyKey = event.Key{Course: event.CourseLong, Stroke: event.StrokeBreast, Distance: 100, Gender: event.GenderFemale}

	sprintKey = event.Key{Course: event.CourseLong, Stroke: event.StrokeFree, Distance: 50, Gender: event.GenderMale}
)

// fixtureStore seeds one fully-derivable standard event, one sprint event,
// one event without an anchor and one with an unresolvable transition.
func fixtureStore() *repository.MemStore {
	tracks := []refdata.TrackBenchmark{
		// goodKey: track deltas 0.23 (19), 0.32 (18), 0.46 (17).
		{Event: goodKey, TrackID: "early", Age: 20, Seconds: 54.00},
		{Event: goodKey, TrackID: "early", Age: 19, Seconds: 54.20},
		{Event: goodKey, TrackID: "early", Age: 18, Seconds: 54.50},
		{Event: goodKey, TrackID: "early", Age: 17, Seconds: 54.94},
		{Event: goodKey, TrackID: "late", Age: 20, Seconds: 55.00},
		{Event: goodKey, TrackID: "late", Age: 19, Seconds: 55.26},
		{Event: goodKey, TrackID: "late", Age: 18, Seconds: 55.60},
		{Event: goodKey, TrackID: "late", Age: 17, Seconds: 56.08},

		// orphanKey has rows but no anchor.
		{Event: orphanKey, TrackID: "early", Age: 18, Seconds: 61.0},
		{Event: orphanKey, TrackID: "early", Age: 19, Seconds: 60.5},

		// gappyKey: anchored, but nothing covers transitions below 19.
		{Event: gappyKey, TrackID: "early", Age: 20, Seconds: 68.0},
		{Event: gappyKey, TrackID: "early", Age: 19, Seconds: 68.6},

		// sprintKey: full coverage from the sprint floor up.
		{Event: sprintKey, TrackID: "early", Age: 21, Seconds: 22.4},
		{Event: sprintKey, TrackID: "early", Age: 20, Seconds: 22.6},
		{Event: sprintKey, TrackID: "early", Age: 19, Seconds: 22.9},
		{Event: sprintKey, TrackID: "early", Age: 18, Seconds: 23.3},
	}
	stats := []refdata.TransitionStatistic{
		{Event: goodKey, AgeStart: 17, Seconds: -0.15},
		{Event: goodKey, AgeStart: 16, Seconds: 0.37},
		{Event: goodKey, AgeStart: 15, Seconds: 0.76},
	}
	anchors := []refdata.AnchorBenchmark{
		{Event: goodKey, Age: 20, Seconds: 53.54},
		{Event: gappyKey, Age: 20, Seconds: 66.90},
		{Event: sprintKey, Age: 21, Seconds: 21.90},
	}
	return repository.NewMemStore(
		repository.WithTrackBenchmarks(tracks),
		repository.WithTransitionStatistics(stats),
		repository.WithAnchors(anchors),
	)
}

func TestRun(t *testing.T) {
	Convey("Given a store with mixed-quality reference data", t, func() {
		store := fixtureStore()
		svc := app.New(app.WithWorkerCount(2))

		Convey("When a derivation run executes", func() {
			rep, err := svc.Run(context.Background(), store)
			So(err, ShouldBeNil)

			Convey("Then every cataloged event has an outcome", func() {
				So(rep.RunID, ShouldNotBeEmpty)
				So(rep.Outcomes, ShouldHaveLength, 4)
			})

			Convey("Then clean events are updated and the rest skipped", func() {
				So(rep.Updated, ShouldResemble, []event.Key{sprintKey, goodKey})
				So(rep.Skipped, ShouldResemble, []event.Key{orphanKey, gappyKey})
			})

			Convey("Then the good event's series was persisted with anchor fidelity", func() {
				series, err := store.TargetSeries(context.Background(), goodKey)
				So(err, ShouldBeNil)
				v, ok := series.At(20)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 53.54)
				So(series.Ages(), ShouldResemble, []int{15, 16, 17, 18, 19, 20})
			})

			Convey("Then the sprint event has no targets below 18", func() {
				series, err := store.TargetSeries(context.Background(), sprintKey)
				So(err, ShouldBeNil)
				So(series.Ages(), ShouldResemble, []int{18, 19, 20, 21})
			})

			Convey("Then the missing-anchor event stored nothing", func() {
				o := rep.Outcomes[orphanKey.String()]
				So(o.Err, ShouldWrap, derive.ErrMissingAnchor)

				_, err := store.TargetSeries(context.Background(), orphanKey)
				So(err, ShouldWrap, repository.ErrNotFound)
			})

			Convey("Then the unresolvable event stored nothing", func() {
				o := rep.Outcomes[gappyKey.String()]
				So(o.Err, ShouldWrap, derive.ErrUnresolvableDelta)

				_, err := store.TargetSeries(context.Background(), gappyKey)
				So(err, ShouldWrap, repository.ErrNotFound)
			})

			Convey("Then the audit trail names each delta's source", func() {
				o := rep.Outcomes[goodKey.String()]
				So(o.Decisions, ShouldHaveLength, 5)
				sources := make(map[int]derive.Source)
				for _, d := range o.Decisions {
					sources[d.AgeStart] = d.Source
				}
				So(sources[17], ShouldEqual, derive.SourceTrackAverage)
				So(sources[16], ShouldEqual, derive.SourceStatistic)
			})
		})
	})
}

func TestRunDeterminism(t *testing.T) {
	Convey("Given unchanged source data", t, func() {
		store := fixtureStore()
		svc := app.New(app.WithWorkerCount(4))

		Convey("When the orchestrator runs twice", func() {
			first, err := svc.Run(context.Background(), store)
			So(err, ShouldBeNil)
			firstSeries, err := store.TargetSeries(context.Background(), goodKey)
			So(err, ShouldBeNil)

			second, err := svc.Run(context.Background(), store)
			So(err, ShouldBeNil)
			secondSeries, err := store.TargetSeries(context.Background(), goodKey)
			So(err, ShouldBeNil)

			Convey("Then the derived values are bit-identical", func() {
				So(secondSeries.Seconds, ShouldResemble, firstSeries.Seconds)
			})

			Convey("Then the updated/skipped split is stable", func() {
				So(second.Updated, ShouldResemble, first.Updated)
				So(second.Skipped, ShouldResemble, first.Skipped)
			})
		})
	})
}

func TestRunBrokenProgression(t *testing.T) {
	Convey("Given source data whose deltas run backwards", t, func() {
		key := event.Key{Course: event.CourseShort, Stroke: event.StrokeFly, Distance: 100, Gender: event.GenderMale}
		store := repository.NewMemStore(
			repository.WithTrackBenchmarks([]refdata.TrackBenchmark{
				// Younger is faster on the only track.
				{Event: key, TrackID: "early", Age: 20, Seconds: 58.0},
				{Event: key, TrackID: "early", Age: 19, Seconds: 57.2},
				{Event: key, TrackID: "early", Age: 18, Seconds: 58.6},
				{Event: key, TrackID: "early", Age: 17, Seconds: 59.4},
				{Event: key, TrackID: "early", Age: 16, Seconds: 60.2},
				{Event: key, TrackID: "early", Age: 15, Seconds: 61.1},
			}),
			repository.WithAnchors([]refdata.AnchorBenchmark{{Event: key, Age: 20, Seconds: 56.9}}),
		)
		svc := app.New(app.WithWorkerCount(1))

		Convey("When the run completes", func() {
			rep, err := svc.Run(context.Background(), store)
			So(err, ShouldBeNil)

			Convey("Then the event is flagged, not silently written", func() {
				So(rep.Skipped, ShouldResemble, []event.Key{key})
				o := rep.Outcomes[key.String()]
				So(o.Err, ShouldBeNil)
				So(len(o.Violations), ShouldBeGreaterThan, 0)

				_, err := store.TargetSeries(context.Background(), key)
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}

func TestRunEmptyStore(t *testing.T) {
	Convey("Given an empty reference store", t, func() {
		svc := app.New()

		Convey("When a run is attempted", func() {
			_, err := svc.Run(context.Background(), repository.NewMemStore())

			Convey("Then the snapshot failure aborts the run", func() {
				So(err, ShouldWrap, repository.ErrEmptyStore)
			})
		})
	})
}

func TestRunRespectsCancellation(t *testing.T) {
	Convey("Given an already-cancelled context", t, func() {
		store := fixtureStore()
		svc := app.New(app.WithWorkerCount(1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When a run is attempted", func() {
			_, err := svc.Run(ctx, store)

			Convey("Then no series is committed", func() {
				So(err, ShouldNotBeNil)
				_, readErr := store.TargetSeries(context.Background(), goodKey)
				So(readErr, ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}
