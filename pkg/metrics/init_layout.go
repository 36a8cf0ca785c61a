package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutIterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_layout_iterations_total",
			Help: "Total number of force layout iterations executed",
		},
	)

	r.LayoutBatchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netviz_layout_batch_duration_seconds",
			Help:    "Duration of a single layout batch in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .016, .025, .05, .1},
		},
		[]string{"phase"},
	)

	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_layout_runs_total",
			Help: "Total number of layout runs by outcome",
		},
		[]string{"outcome"},
	)

	r.LayoutRunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netviz_layout_run_duration_seconds",
			Help:    "Wall-clock duration of a layout run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	r.LayoutNonFiniteResets = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_layout_nonfinite_resets_total",
			Help: "Node positions reverted to their last finite value",
		},
	)

	r.LayoutOverlapsResolved = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_layout_overlaps_resolved_total",
			Help: "Overlapping node pairs pushed apart by the overlap pass",
		},
	)

	r.LayoutRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_layout_running",
			Help: "Whether a layout run is in progress (1 = running, 0 = idle)",
		},
	)
}
