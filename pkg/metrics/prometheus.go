// Package metrics provides Prometheus metrics for the onice timeline service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the timeline pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline outcome metrics
	gamesProcessed  *prometheus.CounterVec
	buildLatency    prometheus.Histogram
	timelineSeconds prometheus.Histogram

	// Data quality metrics
	shiftsDropped    prometheus.Counter
	shiftsRepaired   prometheus.Counter
	truncatedSeconds prometheus.Counter
	goalieConflicts  prometheus.Counter
	positionsUnknown prometheus.Counter
	gatedSeconds     prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// Store metrics
	storeWriteLatency prometheus.Histogram
	storeWriteErrors  prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "onice",
		subsystem:        "timeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_processed_total",
		Help:      "Games processed, labeled by quality verdict",
	}, []string{"verdict"})

	m.buildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "build_latency_milliseconds",
		Help:      "Time to build one game timeline in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.timelineSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "timeline_seconds",
		Help:      "Final timeline length in seconds per game",
		Buckets:   []float64{600, 1200, 1800, 2400, 3000, 3595, 3600, 3900, 4800},
	})

	m.shiftsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shifts_dropped_total",
		Help:      "Shifts dropped as logging artifacts or irreparable inversions",
	})

	m.shiftsRepaired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shifts_repaired_total",
		Help:      "Shifts repaired by the one-time period-inversion correction",
	})

	m.truncatedSeconds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "capacity_truncated_seconds_total",
		Help:      "Team-seconds where skater overcapacity forced a truncation",
	})

	m.goalieConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goalie_conflicts_total",
		Help:      "Games with conflicting simultaneous goalie records",
	})

	m.positionsUnknown = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "positions_unknown_total",
		Help:      "Players defaulted to skater because position data was missing",
	})

	m.gatedSeconds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gated_seconds_total",
		Help:      "Seconds dropped by the completeness gate",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued game jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured game job queue capacity",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Game jobs accepted by the queue",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Game jobs handed to workers",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Game jobs rejected because the queue was full or closed",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active timeline workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Worker failures while building or persisting timelines",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "End-to-end per-game processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Timeline store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_errors_total",
		Help:      "Timeline store write failures",
	})
}

// RecordGameProcessed increments the processed-games counter for a verdict.
func RecordGameProcessed(verdict string) {
	globalManager.gamesProcessed.WithLabelValues(verdict).Inc()
}

// RecordBuildLatency records one game's build latency in milliseconds.
func RecordBuildLatency(latencyMs float64) {
	globalManager.buildLatency.Observe(latencyMs)
}

// ObserveTimelineSeconds records the final table length for one game.
func ObserveTimelineSeconds(seconds int) {
	globalManager.timelineSeconds.Observe(float64(seconds))
}

// RecordShiftsDropped adds to the dropped-shifts counter.
func RecordShiftsDropped(n int) {
	globalManager.shiftsDropped.Add(float64(n))
}

// RecordShiftsRepaired adds to the repaired-shifts counter.
func RecordShiftsRepaired(n int) {
	globalManager.shiftsRepaired.Add(float64(n))
}

// RecordTruncatedSeconds adds to the overcapacity truncation counter.
func RecordTruncatedSeconds(n int) {
	globalManager.truncatedSeconds.Add(float64(n))
}

// RecordGoalieConflict increments the goalie conflict counter.
func RecordGoalieConflict() {
	globalManager.goalieConflicts.Inc()
}

// RecordPositionsUnknown adds to the unknown-position counter.
func RecordPositionsUnknown(n int) {
	globalManager.positionsUnknown.Add(float64(n))
}

// RecordGatedSeconds adds to the completeness-gate drop counter.
func RecordGatedSeconds(n int) {
	globalManager.gatedSeconds.Add(float64(n))
}

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the accepted-jobs counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dispatched-jobs counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the rejected-jobs counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records per-game worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordStoreWriteLatency records a store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreWriteError increments the store write error counter.
func RecordStoreWriteError() {
	globalManager.storeWriteErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
