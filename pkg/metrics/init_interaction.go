package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInteractionMetrics() {
	r.InteractionEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_interaction_events_total",
			Help: "Input events handled by kind",
		},
		[]string{"kind"},
	)

	r.CameraScale = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_camera_scale",
			Help: "Current camera scale factor",
		},
	)
}
