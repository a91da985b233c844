package renderer

import "log/slog"

// ProgramCacheBuilderOption is a functional option applied to a program cache during construction.
type ProgramCacheBuilderOption func(*programCache)

// WithWarmupWorkers sets how many workers Warmup compiles with.
//
// Parameters:
//   - n: the worker count, values below 1 are treated as 1
//
// Returns:
//   - ProgramCacheBuilderOption: a function that applies the worker count
func WithWarmupWorkers(n int) ProgramCacheBuilderOption {
	return func(c *programCache) {
		c.workers = max(n, 1)
	}
}

// WithWarmupQueueSize sets the task queue capacity of the Warmup worker pool.
//
// Parameters:
//   - n: the queue size
//
// Returns:
//   - ProgramCacheBuilderOption: a function that applies the queue size
func WithWarmupQueueSize(n int) ProgramCacheBuilderOption {
	return func(c *programCache) {
		c.queueSize = max(n, 1)
	}
}

// WithCacheLogger sets the logger used for warmup and snapshot diagnostics.
func WithCacheLogger(logger *slog.Logger) ProgramCacheBuilderOption {
	return func(c *programCache) {
		c.logger = logger
	}
}
