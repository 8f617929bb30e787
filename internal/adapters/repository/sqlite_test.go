package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/onice/internal/adapters/repository"
	"github.com/okian/onice/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLiteStore(t *testing.T) {
	Convey("Given a fresh sqlite store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "timelines.db")

		store, err := repository.NewSQLiteStore(path)
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		Convey("When reading an unknown game", func() {
			_, _, err := store.Timeline(ctx, "2017020001")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When saving a game result", func() {
			res := sampleResult("2017020001")
			res.Report.Notes = []timeline.Note{timeline.NoteShiftDropped, timeline.NoteGoalieConflict}
			res.Report.UnknownPlayers = []int64{8475791, 8478402}
			So(store.SaveTimeline(ctx, res), ShouldBeNil)

			Convey("Then the table and report round-trip", func() {
				table, report, err := store.Timeline(ctx, "2017020001")
				So(err, ShouldBeNil)
				So(table.Rows(), ShouldResemble, res.Table.Rows())
				So(report, ShouldResemble, res.Report)
			})

			Convey("Then a second write for the same game is rejected", func() {
				So(store.SaveTimeline(ctx, res), ShouldEqual, repository.ErrAlreadySaved)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then the result survives reopening the database", func() {
				So(store.Close(), ShouldBeNil)

				reopened, err := repository.NewSQLiteStore(path)
				So(err, ShouldBeNil)
				Reset(func() { _ = reopened.Close() })

				table, _, err := reopened.Timeline(ctx, "2017020001")
				So(err, ShouldBeNil)
				So(table.Len(), ShouldEqual, res.Table.Len())
			})
		})

		Convey("When saving several games", func() {
			So(store.SaveTimeline(ctx, sampleResult("2017020002")), ShouldBeNil)
			So(store.SaveTimeline(ctx, sampleResult("2017020001")), ShouldBeNil)

			Convey("Then the game list comes back sorted", func() {
				ids, err := store.Games(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"2017020001", "2017020002"})
			})
		})
	})
}
