// Package worker defines the worker pool for concurrent timeline builds.
package worker

import (
	"github.com/okian/onice/pkg/logger"
)

// Option applies a configuration option to the GameWorker.
type Option func(*GameWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *GameWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *GameWorker) {
		if log != nil {
			w.logger = log
		}
	}
}
