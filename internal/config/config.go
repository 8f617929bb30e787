// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration for the batch runner.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the metrics/health listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// JobDir is the directory of game-job JSON files to process.
	JobDir string `koanf:"job_dir"`

	// DBPath is the SQLite database file for finished timelines.
	// Empty selects the in-memory store (results are not persisted).
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory game job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of timeline workers.
	WorkerCount int `koanf:"worker_count"`

	// Phase selects game clock semantics: "regular" or "playoffs".
	Phase string `koanf:"phase"`

	// RegulationPeriods is the default period count for jobs that omit it.
	RegulationPeriods int `koanf:"regulation_periods"`

	// MinTimelineSeconds is the shortest final table still judged complete.
	MinTimelineSeconds int `koanf:"min_timeline_seconds"`

	// GateThreshold is the minimum populated columns a second needs to
	// survive the completeness gate.
	GateThreshold int `koanf:"gate_threshold"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		JobDir:             "jobs",
		DBPath:             "timelines.db",
		QueueSize:          4096,
		WorkerCount:        runtime.NumCPU(),
		Phase:              "regular",
		RegulationPeriods:  3,
		MinTimelineSeconds: 3595,
		GateThreshold:      11,
	}
}
