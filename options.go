package robdd

import (
	"runtime"
	"time"
)

// config holds Manager construction parameters. Kept unexported — callers
// only ever see it through Option.
type config struct {
	// Workers is the worker count set by WithParallel. NewBuilder copies
	// it into the Builder (see builder.go), but Build explores every
	// branch sequentially on the calling goroutine and does not read it.
	Workers int

	// MemoryLimit is the node-slot storage budget in bytes set by
	// WithMemoryLimit; zero means unlimited. Neither New nor Build reads
	// it: arena growth is never refused and ErrMemoryLimit is never
	// returned.
	MemoryLimit int64

	// Timeout bounds a single Build call.
	Timeout time.Duration

	// opCacheSize is the capacity of the optional Apply operation cache
	// (spec.md §4.3). Zero disables it.
	opCacheSize int

	metricsEnabled bool
}

// Option configures a Manager using the functional-options pattern.
type Option func(*config)

// WithParallel records a worker count for Build. workers <= 0 defaults to
// runtime.NumCPU(). Build runs sequentially whatever the value.
func WithParallel(workers int) Option {
	return func(c *config) {
		if workers <= 0 {
			c.Workers = runtime.NumCPU()
		} else {
			c.Workers = workers
		}
	}
}

// WithMemoryLimit records a node-arena budget in bytes; bytes <= 0 means
// unlimited. The budget is not enforced: arena growth is never refused.
func WithMemoryLimit(bytes int64) Option {
	return func(c *config) { c.MemoryLimit = bytes }
}

// WithTimeout bounds the duration of a single Build call. d <= 0 means no
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.Timeout = d }
}

// WithOperationCache enables the Apply-engine memoization cache of
// spec.md §4.3 with room for size entries. Its absence costs worst-case
// exponential time on operations over diagrams with heavy subgraph
// sharing; its presence yields the classical polynomial bounds. Disabled
// (size == 0) by default since it is explicitly optional in the spec and
// correctness never depends on it.
func WithOperationCache(size int) Option {
	return func(c *config) { c.opCacheSize = size }
}

// WithMetrics turns on the Prometheus instrumentation of metrics.go: live
// node-count gauge, unique-table hit/miss counters, operation-cache
// hit/miss counters. Off by default — a Manager created without this
// option runs with a no-op collector and pays no instrumentation cost.
func WithMetrics() Option {
	return func(c *config) { c.metricsEnabled = true }
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		Workers:     1,
		MemoryLimit: 0,
		Timeout:     0,
		opCacheSize: 0,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
