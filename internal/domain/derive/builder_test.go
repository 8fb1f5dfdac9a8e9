package derive_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ontrack/internal/domain/derive"
	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// scenarioSnapshot reproduces the documented derivation walk-through:
// anchor 20 -> 53.54; track averages 0.23 (19) and 0.32 (18); at 17 a
// negative statistic falls back to a 0.46 track average; statistics 0.37 (16)
// and 0.76 (15) are used directly.
func scenarioSnapshot(key event.Key) *refdata.Snapshot {
	tracks := []refdata.TrackBenchmark{
		{Event: key, TrackID: "early", Age: 20, Seconds: 54.00},
		{Event: key, TrackID: "early", Age: 19, Seconds: 54.20},
		{Event: key, TrackID: "early", Age: 18, Seconds: 54.50},
		{Event: key, TrackID: "early", Age: 17, Seconds: 54.94},
		{Event: key, TrackID: "late", Age: 20, Seconds: 55.00},
		{Event: key, TrackID: "late", Age: 19, Seconds: 55.26},
		{Event: key, TrackID: "late", Age: 18, Seconds: 55.60},
		{Event: key, TrackID: "late", Age: 17, Seconds: 56.08},
	}
	stats := []refdata.TransitionStatistic{
		{Event: key, AgeStart: 17, Seconds: -0.15},
		{Event: key, AgeStart: 16, Seconds: 0.37},
		{Event: key, AgeStart: 15, Seconds: 0.76},
	}
	anchors := []refdata.AnchorBenchmark{
		{Event: key, Age: 20, Seconds: 53.54},
	}
	return refdata.NewSnapshot(tracks, stats, anchors)
}

func TestBuildSeriesScenario(t *testing.T) {
	Convey("Given the documented walk-through data", t, func() {
		key := key100Free()
		snap := scenarioSnapshot(key)
		builder := derive.NewBuilder(snap, derive.NewResolver(snap))

		Convey("When the series is built", func() {
			series, decisions, err := builder.BuildSeries(context.Background(), key)
			So(err, ShouldBeNil)

			Convey("Then the anchor is carried over exactly", func() {
				v, ok := series.At(20)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 53.54)
			})

			Convey("Then every age matches the walk-through", func() {
				expect := map[int]float64{
					19: 53.77,
					18: 54.09,
					17: 54.55,
					16: 54.92,
					15: 55.68,
				}
				for age, want := range expect {
					got, ok := series.At(age)
					So(ok, ShouldBeTrue)
					So(got, ShouldAlmostEqual, want, 1e-9)
				}
			})

			Convey("Then the audit trail names each delta's source", func() {
				So(decisions, ShouldHaveLength, 5)
				bySource := make(map[int]derive.Source)
				for _, d := range decisions {
					bySource[d.AgeStart] = d.Source
				}
				So(bySource[19], ShouldEqual, derive.SourceTrackAverage)
				So(bySource[18], ShouldEqual, derive.SourceTrackAverage)
				So(bySource[17], ShouldEqual, derive.SourceTrackAverage) // negative statistic fell through
				So(bySource[16], ShouldEqual, derive.SourceStatistic)
				So(bySource[15], ShouldEqual, derive.SourceStatistic)
			})

			Convey("Then rebuilding produces bit-identical values", func() {
				again, _, err := builder.BuildSeries(context.Background(), key)
				So(err, ShouldBeNil)
				So(again.Seconds, ShouldResemble, series.Seconds)
			})
		})
	})
}

func TestBuildSeriesSprintFloor(t *testing.T) {
	Convey("Given a sprint-class event with full data", t, func() {
		key := event.Key{Course: event.CourseLong, Stroke: event.StrokeFree, Distance: 50, Gender: event.GenderMale}
		tracks := []refdata.TrackBenchmark{
			{Event: key, TrackID: "early", Age: 21, Seconds: 22.4},
			{Event: key, TrackID: "early", Age: 20, Seconds: 22.6},
			{Event: key, TrackID: "early", Age: 19, Seconds: 22.9},
			{Event: key, TrackID: "early", Age: 18, Seconds: 23.3},
		}
		anchors := []refdata.AnchorBenchmark{{Event: key, Age: 21, Seconds: 21.9}}
		snap := refdata.NewSnapshot(tracks, nil, anchors)
		builder := derive.NewBuilder(snap, derive.NewResolver(snap))

		Convey("When the series is built", func() {
			series, _, err := builder.BuildSeries(context.Background(), key)
			So(err, ShouldBeNil)

			Convey("Then the series starts at the sprint floor", func() {
				So(series.Ages(), ShouldResemble, []int{18, 19, 20, 21})
			})

			Convey("Then no age below 18 exists", func() {
				_, ok := series.At(17)
				So(ok, ShouldBeFalse)
				_, ok = series.At(15)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestBuildSeriesMissingAnchor(t *testing.T) {
	Convey("Given an event with track rows but no anchor", t, func() {
		key := key100Free()
		tracks := []refdata.TrackBenchmark{
			{Event: key, TrackID: "early", Age: 18, Seconds: 55.0},
			{Event: key, TrackID: "early", Age: 19, Seconds: 54.7},
		}
		snap := refdata.NewSnapshot(tracks, nil, nil)
		builder := derive.NewBuilder(snap, derive.NewResolver(snap))

		Convey("When the series is built", func() {
			_, _, err := builder.BuildSeries(context.Background(), key)

			Convey("Then the missing anchor is fatal for the event", func() {
				So(err, ShouldWrap, derive.ErrMissingAnchor)
			})
		})
	})
}

func TestBuildSeriesUnresolvableTransition(t *testing.T) {
	Convey("Given an anchor but a gap in the reference data", t, func() {
		key := key100Free()
		tracks := []refdata.TrackBenchmark{
			{Event: key, TrackID: "early", Age: 20, Seconds: 54.0},
			{Event: key, TrackID: "early", Age: 19, Seconds: 54.3},
			// Nothing covers transitions below 19.
		}
		anchors := []refdata.AnchorBenchmark{{Event: key, Age: 20, Seconds: 53.54}}
		snap := refdata.NewSnapshot(tracks, nil, anchors)
		builder := derive.NewBuilder(snap, derive.NewResolver(snap))

		Convey("When the series is built", func() {
			_, decisions, err := builder.BuildSeries(context.Background(), key)

			Convey("Then the cascade fails instead of fabricating a delta", func() {
				So(err, ShouldWrap, derive.ErrUnresolvableDelta)
			})

			Convey("Then the decisions up to the failure are still reported", func() {
				So(decisions, ShouldHaveLength, 1)
				So(decisions[0].AgeStart, ShouldEqual, 19)
			})
		})
	})
}

func TestBuildSeriesCustomFloors(t *testing.T) {
	Convey("Given a builder with custom age floors", t, func() {
		key := key100Free()
		snap := scenarioSnapshot(key)
		builder := derive.NewBuilder(snap, derive.NewResolver(snap), derive.WithAgeFloors(17, 19))

		Convey("When the series is built", func() {
			series, _, err := builder.BuildSeries(context.Background(), key)
			So(err, ShouldBeNil)

			Convey("Then the standard floor is honored", func() {
				So(series.Ages(), ShouldResemble, []int{17, 18, 19, 20})
			})
		})
	})
}
