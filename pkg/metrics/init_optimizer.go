package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRunMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapequation_runs_total",
			Help: "Total number of optimizer runs",
		},
		[]string{"strategy", "status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mapequation_run_duration_seconds",
			Help:    "Optimizer run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"strategy"},
	)

	r.RunLevels = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mapequation_run_levels",
			Help:    "Number of hierarchy levels optimized per run",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		},
		[]string{"strategy"},
	)

	r.Codelength = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapequation_codelength_bits",
			Help: "Map equation value of the last successful run",
		},
		[]string{"strategy"},
	)

	r.Clusters = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapequation_clusters",
			Help: "Number of clusters found by the last successful run",
		},
		[]string{"strategy"},
	)
}

func (r *Registry) initPassMetrics() {
	r.PassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapequation_passes_total",
			Help: "Total number of local moving passes",
		},
		[]string{"strategy"},
	)

	r.MovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapequation_moves_total",
			Help: "Total number of applied node moves",
		},
		[]string{"strategy"},
	)

	r.RejectedMovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapequation_rejected_moves_total",
			Help: "Moves decided during a pass but not applied",
		},
		[]string{"strategy", "reason"},
	)

	r.PassDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mapequation_pass_duration_seconds",
			Help:    "Local moving pass duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"strategy"},
	)
}
