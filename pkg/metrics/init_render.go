package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RenderFramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_render_frames_total",
			Help: "Total number of frames rendered by backend",
		},
		[]string{"backend"},
	)

	r.RenderFrameDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netviz_render_frame_duration_seconds",
			Help:    "Time spent planning and painting a frame in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .016, .033, .05, .1, .25},
		},
		[]string{"backend"},
	)

	r.RenderNodesDrawn = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_render_nodes_drawn",
			Help: "Nodes drawn in the last frame",
		},
	)

	r.RenderEdgesDrawn = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_render_edges_drawn",
			Help: "Edges drawn in the last frame",
		},
	)

	r.RenderLabelsDrawn = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_render_labels_drawn",
			Help: "Labels drawn in the last frame",
		},
	)

	r.RenderSurfaceErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_render_surface_errors_total",
			Help: "Drawing surface initialization failures",
		},
	)
}
