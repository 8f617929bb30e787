// Package worker defines the worker pool that reconstructs game timelines
// concurrently across games. Each worker owns its job's entire working set;
// nothing is shared between in-flight games.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/onice/internal/adapters/roster"
	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/internal/domain/timeline"
	"github.com/okian/onice/pkg/logger"
	"github.com/okian/onice/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.GameJob

// Builder reconstructs one game's timeline from its inputs.
type Builder interface {
	Build(ctx context.Context, gctx shift.GameContext, records []shift.Record, positions shift.PositionSource) (*timeline.Table, timeline.Report)
}

// Sink receives finished results. Implementations persist or collect them.
type Sink interface {
	SaveTimeline(ctx context.Context, res model.GameResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes game jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// GameWorker implements Worker for timeline reconstruction.
type GameWorker struct {
	queue   Queue
	builder Builder
	sink    Sink
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewGameWorker creates a new worker with configuration options.
func NewGameWorker(queue Queue, builder Builder, sink Sink, opts ...Option) *GameWorker {
	w := &GameWorker{
		queue:    queue,
		builder:  builder,
		sink:     sink,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *GameWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing game job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *GameWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob reconstructs and persists one game.
func (w *GameWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	positions := roster.NewStatic(job.Positions)

	buildStart := time.Now()
	table, report := w.builder.Build(ctx, job.Context, job.Records, positions)
	metrics.RecordBuildLatency(float64(time.Since(buildStart).Milliseconds()))

	recordReport(report)

	res := model.GameResult{
		JobID:  job.JobID,
		GameID: job.GameID,
		Table:  table,
		Report: report,
	}
	if err := w.sink.SaveTimeline(ctx, res); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "persisting timeline failed",
			logger.String("gameID", job.GameID),
			logger.Error(err),
		)
		return fmt.Errorf("save timeline for game %s: %w", job.GameID, err)
	}

	w.logger.Info(ctx, "game processed",
		logger.String("gameID", job.GameID),
		logger.String("verdict", string(report.Verdict)),
		logger.Int("seconds", report.Seconds),
	)
	return nil
}

// recordReport publishes the report's data-quality counts as metrics.
func recordReport(report timeline.Report) {
	metrics.RecordGameProcessed(string(report.Verdict))
	metrics.ObserveTimelineSeconds(report.Seconds)
	if report.DroppedShifts > 0 {
		metrics.RecordShiftsDropped(report.DroppedShifts)
	}
	if report.RepairedShifts > 0 {
		metrics.RecordShiftsRepaired(report.RepairedShifts)
	}
	if report.TruncatedSeconds > 0 {
		metrics.RecordTruncatedSeconds(report.TruncatedSeconds)
	}
	if report.ConflictSeconds > 0 {
		metrics.RecordGoalieConflict()
	}
	if len(report.UnknownPlayers) > 0 {
		metrics.RecordPositionsUnknown(len(report.UnknownPlayers))
	}
	if report.GatedSeconds > 0 {
		metrics.RecordGatedSeconds(report.GatedSeconds)
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*GameWorker
	queue   Queue

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, builder Builder, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*GameWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewGameWorker(
			queue,
			builder,
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown gracefully shuts down the entire worker pool, draining the
// queue first so submitted games still get processed.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue so workers drain what is left and then stop.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	return nil
}
