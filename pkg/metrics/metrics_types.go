package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of the community detection optimizer
type Registry struct {
	// Run Metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	RunLevels   *prometheus.HistogramVec

	// Local moving Metrics
	PassesTotal        *prometheus.CounterVec
	MovesTotal         *prometheus.CounterVec
	RejectedMovesTotal *prometheus.CounterVec
	PassDuration       *prometheus.HistogramVec

	// Result Metrics
	Codelength *prometheus.GaugeVec
	Clusters   *prometheus.GaugeVec

	// System Metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
}

// Run status label values
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// ReasonStale is the rejection reason of a move whose decision no longer held
// at commit time: under the cluster locks for relaxmap, or after the earlier
// moves of the same synchronous pass.
const ReasonStale = "stale"

var (
	defaultRegistry *Registry
	once            sync.Once
)
