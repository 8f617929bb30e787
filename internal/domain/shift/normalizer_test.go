package shift_test

import (
	"testing"

	shift "github.com/okian/onice/internal/domain/shift"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizer(t *testing.T) {
	Convey("Given a regular-season normalizer", t, func() {
		n := shift.NewNormalizer()

		Convey("When normalizing an ordinary first-period shift", func() {
			intervals, stats := n.Normalize([]shift.Record{
				{PlayerID: 100, TeamID: 1, Period: 1, Start: "0:30", End: "1:15", Duration: 45},
			})

			Convey("Then the start moves forward one second and the end is unchanged", func() {
				So(intervals, ShouldHaveLength, 1)
				So(intervals[0].StartAbs, ShouldEqual, 31)
				So(intervals[0].EndAbs, ShouldEqual, 75)
				So(stats.Dropped, ShouldEqual, 0)
			})
		})

		Convey("When normalizing a second-period shift", func() {
			intervals, _ := n.Normalize([]shift.Record{
				{PlayerID: 100, TeamID: 1, Period: 2, Start: "0:00", End: "0:50"},
			})

			Convey("Then times land on the absolute game clock", func() {
				So(intervals[0].StartAbs, ShouldEqual, 1201)
				So(intervals[0].EndAbs, ShouldEqual, 1250)
			})
		})

		Convey("When a shift starts and immediately ends", func() {
			intervals, stats := n.Normalize([]shift.Record{
				{PlayerID: 100, TeamID: 1, Period: 1, Start: "5:00", End: "5:00"},
				{PlayerID: 101, TeamID: 1, Period: 1, Start: "5:00", End: "5:01"},
			})

			Convey("Then both zero-or-negative-duration artifacts are dropped", func() {
				So(intervals, ShouldBeEmpty)
				So(stats.Dropped, ShouldEqual, 2)
			})
		})

		Convey("When a goalie shift crosses into the next period unflagged", func() {
			// Recorded as period 1 but the end clock belongs to period 2.
			intervals, stats := n.Normalize([]shift.Record{
				{PlayerID: 30, TeamID: 1, Period: 1, Start: "10:00", End: "2:00"},
			})

			Convey("Then one period length is added to the end exactly once", func() {
				So(intervals, ShouldHaveLength, 1)
				So(intervals[0].StartAbs, ShouldEqual, 601)
				So(intervals[0].EndAbs, ShouldEqual, 1320)
				So(stats.Repaired, ShouldEqual, 1)
				So(stats.Dropped, ShouldEqual, 0)
			})
		})

		Convey("When a shift is still inverted after the correction", func() {
			intervals, stats := n.Normalize([]shift.Record{
				{PlayerID: 30, TeamID: 1, Period: 2, Start: "754", End: "10"},
			})
			// start 754 -> 1955 abs; end 10 -> 1210, +1200 = 2410 > 1955, repairable.
			So(intervals, ShouldHaveLength, 1)
			So(stats.Repaired, ShouldEqual, 1)

			Convey("Then a truly irreparable inversion is dropped and counted", func() {
				intervals, stats := n.Normalize([]shift.Record{
					{PlayerID: 30, TeamID: 1, Period: 1, Start: "30:00", End: "0:10"},
				})
				So(intervals, ShouldBeEmpty)
				So(stats.Dropped, ShouldEqual, 1)
				So(stats.RepairFailed, ShouldEqual, 1)
			})
		})

		Convey("When records carry malformed clocks or periods", func() {
			intervals, stats := n.Normalize([]shift.Record{
				{PlayerID: 1, TeamID: 1, Period: 1, Start: "oops", End: "1:00"},
				{PlayerID: 2, TeamID: 1, Period: 1, Start: "0:00", End: ""},
				{PlayerID: 3, TeamID: 1, Period: 0, Start: "0:00", End: "1:00"},
			})

			Convey("Then they are dropped without failing the batch", func() {
				So(intervals, ShouldBeEmpty)
				So(stats.Dropped, ShouldEqual, 3)
			})
		})

		Convey("When the feed's duration disagrees with start and end", func() {
			intervals, _ := n.Normalize([]shift.Record{
				{PlayerID: 100, TeamID: 1, Period: 1, Start: "0:00", End: "0:30", Duration: 999},
			})

			Convey("Then the interval's duration comes from the clock, not the feed", func() {
				So(intervals[0].Duration(), ShouldEqual, 29)
			})
		})
	})

	Convey("Given a playoff normalizer", t, func() {
		n := shift.NewNormalizer(shift.WithPhase(shift.PhasePlayoffs))

		Convey("When normalizing a second-overtime shift", func() {
			intervals, _ := n.Normalize([]shift.Record{
				{PlayerID: 100, TeamID: 1, Period: 5, Start: "0:10", End: "1:00"},
			})

			Convey("Then overtime periods stack as full periods", func() {
				So(intervals[0].StartAbs, ShouldEqual, 4811)
				So(intervals[0].EndAbs, ShouldEqual, 4860)
			})
		})
	})
}

func TestFinalSecond(t *testing.T) {
	Convey("Given normalized intervals", t, func() {
		intervals := []shift.Interval{
			{PlayerID: 1, TeamID: 1, StartAbs: 1, EndAbs: 1200},
			{PlayerID: 2, TeamID: 1, StartAbs: 1201, EndAbs: 3599},
		}

		Convey("When the context has no configured minimum", func() {
			So(shift.FinalSecond(intervals, shift.GameContext{}), ShouldEqual, 3599)
		})

		Convey("When the context floors the final second at 3600", func() {
			gctx := shift.GameContext{MinFinalSecond: 3600}
			So(shift.FinalSecond(intervals, gctx), ShouldEqual, 3600)
		})

		Convey("When observed ends exceed the floor", func() {
			gctx := shift.GameContext{MinFinalSecond: 3600}
			more := append(intervals, shift.Interval{PlayerID: 3, TeamID: 1, StartAbs: 3601, EndAbs: 3750})
			So(shift.FinalSecond(more, gctx), ShouldEqual, 3750)
		})
	})
}
