// Package metrics exposes Prometheus metrics for optimizer runs.
//
// Each Registry owns a private prometheus.Registry, so tests and embedded
// callers can create as many as they like without duplicate registration.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initRunMetrics()
	r.initPassMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordRun records a finished run. levels and clusters are only observed for
// successful runs.
func (r *Registry) RecordRun(strategy, status string, duration time.Duration, levels, clusters int, codelength float64) {
	r.RunsTotal.WithLabelValues(strategy, status).Inc()
	r.RunDuration.WithLabelValues(strategy).Observe(duration.Seconds())

	if status != StatusSuccess {
		return
	}
	r.RunLevels.WithLabelValues(strategy).Observe(float64(levels))
	r.Clusters.WithLabelValues(strategy).Set(float64(clusters))
	r.Codelength.WithLabelValues(strategy).Set(codelength)
}

// RecordPass records one local moving pass and the moves it applied
func (r *Registry) RecordPass(strategy string, moves uint64, duration time.Duration) {
	r.PassesTotal.WithLabelValues(strategy).Inc()
	r.MovesTotal.WithLabelValues(strategy).Add(float64(moves))
	r.PassDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordRejectedMoves records moves that were decided but not applied
func (r *Registry) RecordRejectedMoves(strategy, reason string, n uint64) {
	if n == 0 {
		return
	}
	r.RejectedMovesTotal.WithLabelValues(strategy, reason).Add(float64(n))
}

// UpdateSystemMetrics samples goroutine count and heap usage
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
