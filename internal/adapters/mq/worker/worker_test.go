package worker_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	queue "github.com/okian/onice/internal/adapters/mq/queue"
	worker "github.com/okian/onice/internal/adapters/mq/worker"
	"github.com/okian/onice/internal/adapters/repository"
	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/internal/domain/timeline"
	"github.com/okian/onice/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// smallJob fabricates one short game: a skater and a goalie per team for a
// single minute of play.
func smallJob(gameID string) model.GameJob {
	return model.GameJob{
		JobID:  "job-" + gameID,
		GameID: gameID,
		Context: shift.GameContext{
			HomeTeamID:        1,
			RoadTeamID:        2,
			RegulationPeriods: 3,
		},
		Records: []shift.Record{
			{PlayerID: 11, TeamID: 1, Period: 1, Start: "0:00", End: "1:00"},
			{PlayerID: 30, TeamID: 1, Period: 1, Start: "0:00", End: "1:00"},
			{PlayerID: 21, TeamID: 2, Period: 1, Start: "0:00", End: "1:00"},
			{PlayerID: 40, TeamID: 2, Period: 1, Start: "0:00", End: "1:00"},
		},
		Positions: map[int64]shift.Position{
			11: shift.PositionSkater,
			30: shift.PositionGoalie,
			21: shift.PositionSkater,
			40: shift.PositionGoalie,
		},
	}
}

func TestPoolProcessesQueuedGames(t *testing.T) {
	Convey("Given a pool of workers over a queue and a store", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16), queue.WithBufferSize(16))
		store := repository.NewMemoryStore()
		builder := timeline.NewBuilder(timeline.WithGateThreshold(5), timeline.WithMinSeconds(60))

		pool := worker.NewPool(2, q, builder, store)

		Convey("When several games are enqueued and the pool drains", func() {
			for i := 1; i <= 5; i++ {
				So(q.Enqueue(ctx, smallJob("20170200"+strconv.Itoa(i))), ShouldBeTrue)
			}

			pool.Start(ctx)
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then every game lands in the store", func() {
				So(store.Count(ctx), ShouldEqual, 5)

				table, report, err := store.Timeline(ctx, "201702001")
				So(err, ShouldBeNil)
				So(report.Verdict, ShouldEqual, timeline.VerdictComplete)
				So(table.Len(), ShouldEqual, 60)
			})
		})

		Convey("When the same game is submitted twice", func() {
			So(q.Enqueue(ctx, smallJob("2017020001")), ShouldBeTrue)
			So(q.Enqueue(ctx, smallJob("2017020001")), ShouldBeTrue)

			pool.Start(ctx)
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then the store keeps exactly one copy", func() {
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}

func TestWorkerStopsWhenQueueCloses(t *testing.T) {
	Convey("Given a single worker on an already-closed queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		So(q.Close(), ShouldBeNil)

		store := repository.NewMemoryStore()
		builder := timeline.NewBuilder()
		w := worker.NewGameWorker(q, builder, store, worker.WithName("w0"))

		Convey("When the worker runs", func() {
			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()

			Convey("Then it exits on its own", func() {
				<-done
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}
