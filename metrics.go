package robdd

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the Manager's optional Prometheus instrumentation (spec_full
// §2 AMBIENT STACK, §3 DOMAIN STACK). A nil *metrics, or one created with
// enabled == false, is safe to call every method on: every method is a
// no-op until WithMetrics() is passed to New. This keeps the kernel free
// of any observability dependency on its hot path unless a caller asked
// for it.
type metrics struct {
	mu      sync.Mutex
	enabled bool

	registry *prometheus.Registry

	nodeCount   prometheus.Gauge
	uniqueHit   prometheus.Counter
	uniqueMiss  prometheus.Counter
	opCacheHit  prometheus.Counter
	opCacheMiss prometheus.Counter
}

// registries are per-Manager (not the global default registry) so that
// creating more than one instrumented Manager in a process, e.g. in
// tests, never panics on duplicate metric registration.
func newMetrics(enabled bool) *metrics {
	m := &metrics{enabled: enabled}
	if !enabled {
		return m
	}

	reg := prometheus.NewRegistry()
	m.nodeCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "robdd_live_nodes",
		Help: "Number of live nodes in the Manager's unique table.",
	})
	m.uniqueHit = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robdd_unique_table_hits_total",
		Help: "MakeNode calls resolved by an existing node in the unique table.",
	})
	m.uniqueMiss = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robdd_unique_table_misses_total",
		Help: "MakeNode calls that allocated a fresh node.",
	})
	m.opCacheHit = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robdd_op_cache_hits_total",
		Help: "Apply operations resolved from the operation cache.",
	})
	m.opCacheMiss = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robdd_op_cache_misses_total",
		Help: "Apply operations not found in the operation cache.",
	})
	reg.MustRegister(m.nodeCount, m.uniqueHit, m.uniqueMiss, m.opCacheHit, m.opCacheMiss)
	m.registry = reg
	return m
}

// Registry returns a Prometheus gatherer holding this Manager's metrics,
// or nil if WithMetrics() was not passed to New. The same *Registry is
// returned on every call: building a fresh one per call would re-register
// the same collectors and panic on the second Registry() call, since a
// prometheus.Registry rejects duplicate registrations.
func (m *Manager) Registry() prometheus.Gatherer {
	if m.metrics == nil || !m.metrics.enabled {
		return nil
	}
	return m.metrics.registry
}

func (m *metrics) hit() {
	if m == nil || !m.enabled {
		return
	}
	m.uniqueHit.Inc()
}

func (m *metrics) miss() {
	if m == nil || !m.enabled {
		return
	}
	m.uniqueMiss.Inc()
}

func (m *metrics) setSize(n int) {
	if m == nil || !m.enabled {
		return
	}
	m.nodeCount.Set(float64(n))
}

func (m *metrics) opHit() {
	if m == nil || !m.enabled {
		return
	}
	m.opCacheHit.Inc()
}

func (m *metrics) opMiss() {
	if m == nil || !m.enabled {
		return
	}
	m.opCacheMiss.Inc()
}
