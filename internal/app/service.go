// Package app wires the timeline pipeline, job queue, worker pool, and
// store into a runnable service.
package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	jobqueue "github.com/okian/onice/internal/adapters/mq/queue"
	workerpool "github.com/okian/onice/internal/adapters/mq/worker"
	"github.com/okian/onice/internal/adapters/repository"
	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/internal/domain/timeline"
	"github.com/okian/onice/pkg/logger"
)

// Service owns the moving parts of the batch pipeline. Games submitted via
// Submit are reconstructed concurrently and written to the store; within a
// game everything is a single deterministic pass.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	queue    jobqueue.Queue
	builder  *timeline.Builder
	pool     *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	builderOpts []timeline.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStore sets the timeline store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPhase selects regular-season or playoff clock semantics.
func WithPhase(phase shift.Phase) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, timeline.WithPhase(phase))
	}
}

// WithMinTimelineSeconds overrides the complete-game length threshold.
func WithMinTimelineSeconds(seconds int) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, timeline.WithMinSeconds(seconds))
	}
}

// WithGateThreshold overrides the completeness gate column threshold.
func WithGateThreshold(threshold int) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, timeline.WithGateThreshold(threshold))
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 0, // pool picks a CPU-based default
		queueSize:   4096,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.queue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.builder = timeline.NewBuilder(append(s.builderOpts, timeline.WithLogger(s.logger.Named("builder")))...)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.builder, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "timeline service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Submit enqueues one game for reconstruction. A missing job id is filled
// with a fresh UUID. Returns false when the queue is full or closed.
func (s *Service) Submit(ctx context.Context, job model.GameJob) bool {
	s.mu.RLock()
	queue := s.queue
	started := s.started
	s.mu.RUnlock()

	if !started {
		return false
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.GameID == "" {
		job.GameID = job.JobID
	}
	return queue.Enqueue(ctx, job)
}

// Timeline returns a finished game's table and report from the store.
func (s *Service) Timeline(ctx context.Context, gameID string) (*timeline.Table, timeline.Report, error) {
	return s.store.Timeline(ctx, gameID)
}

// Pending returns the number of games waiting in the queue.
func (s *Service) Pending(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.queue.Len(ctx)
}

// Processed returns the number of games written to the store.
func (s *Service) Processed(ctx context.Context) int {
	return s.store.Count(ctx)
}

// Drain closes the queue and waits for the workers to finish what was
// submitted. The service cannot accept new jobs afterwards.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	return s.pool.Shutdown(ctx)
}

// Stop stops the service without waiting for queued jobs.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping timeline service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "timeline service stopped")
}
