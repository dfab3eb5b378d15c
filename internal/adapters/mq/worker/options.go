// Package worker defines worker contracts for asynchronous answer judging.
package worker

import (
	"github.com/hirein/engine/pkg/logger"
)

// Option applies a configuration option to the JudgeWorker.
type Option func(*JudgeWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *JudgeWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *JudgeWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
