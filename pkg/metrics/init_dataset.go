package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDatasetMetrics() {
	r.DatasetLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_dataset_loads_total",
			Help: "Snapshot loads by source and status",
		},
		[]string{"source", "status"},
	)

	r.DatasetLoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netviz_dataset_load_duration_seconds",
			Help:    "Snapshot fetch and decode duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	r.DatasetDroppedRecords = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_dataset_dropped_records_total",
			Help: "Snapshot records dropped at load by reason",
		},
		[]string{"reason"},
	)

	r.DatasetMergedEdges = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_dataset_merged_edges_total",
			Help: "Duplicate snapshot edges folded into an existing edge",
		},
	)

	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_nodes",
			Help: "Nodes in the loaded graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_graph_edges",
			Help: "Edges in the loaded graph",
		},
	)
}
