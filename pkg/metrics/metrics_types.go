package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Layout Metrics
	LayoutIterationsTotal  prometheus.Counter
	LayoutBatchDuration    *prometheus.HistogramVec
	LayoutRunsTotal        *prometheus.CounterVec
	LayoutRunDuration      prometheus.Histogram
	LayoutNonFiniteResets  prometheus.Counter
	LayoutOverlapsResolved prometheus.Counter
	LayoutRunning          prometheus.Gauge

	// Render Metrics
	RenderFramesTotal   *prometheus.CounterVec
	RenderFrameDuration *prometheus.HistogramVec
	RenderNodesDrawn    prometheus.Gauge
	RenderEdgesDrawn    prometheus.Gauge
	RenderLabelsDrawn   prometheus.Gauge
	RenderSurfaceErrors prometheus.Counter

	// Interaction Metrics
	InteractionEventsTotal *prometheus.CounterVec
	CameraScale            prometheus.Gauge

	// Dataset Metrics
	DatasetLoadsTotal     *prometheus.CounterVec
	DatasetLoadDuration   *prometheus.HistogramVec
	DatasetDroppedRecords *prometheus.CounterVec
	DatasetMergedEdges    prometheus.Counter
	GraphNodesTotal       prometheus.Gauge
	GraphEdgesTotal       prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
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
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initLayoutMetrics()
	r.initRenderMetrics()
	r.initInteractionMetrics()
	r.initDatasetMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
