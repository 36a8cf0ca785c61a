package metrics

import (
	"runtime"
	"time"
)

// Every recorder below is safe to call on a nil *Registry so components can
// treat metrics as optional.

// RecordLayoutBatch records one scheduler batch of the given phase
// ("force" or "overlap").
func (r *Registry) RecordLayoutBatch(phase string, iterations int, duration time.Duration) {
	if r == nil {
		return
	}
	r.LayoutIterationsTotal.Add(float64(iterations))
	r.LayoutBatchDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordLayoutRun records the end of a layout run.
func (r *Registry) RecordLayoutRun(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.LayoutRunsTotal.WithLabelValues(outcome).Inc()
	r.LayoutRunDuration.Observe(duration.Seconds())
}

// SetLayoutRunning flips the running gauge.
func (r *Registry) SetLayoutRunning(running bool) {
	if r == nil {
		return
	}
	if running {
		r.LayoutRunning.Set(1)
	} else {
		r.LayoutRunning.Set(0)
	}
}

// RecordNonFiniteResets counts positions reverted by the engine.
func (r *Registry) RecordNonFiniteResets(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.LayoutNonFiniteResets.Add(float64(n))
}

// RecordOverlapsResolved counts node pairs separated by the overlap pass.
func (r *Registry) RecordOverlapsResolved(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.LayoutOverlapsResolved.Add(float64(n))
}

// RecordFrame records a rendered frame and what it drew
func (r *Registry) RecordFrame(backend string, duration time.Duration, nodes, edges, labels int) {
	if r == nil {
		return
	}
	r.RenderFramesTotal.WithLabelValues(backend).Inc()
	r.RenderFrameDuration.WithLabelValues(backend).Observe(duration.Seconds())
	r.RenderNodesDrawn.Set(float64(nodes))
	r.RenderEdgesDrawn.Set(float64(edges))
	r.RenderLabelsDrawn.Set(float64(labels))
}

// RecordSurfaceError counts a failed surface initialization.
func (r *Registry) RecordSurfaceError() {
	if r == nil {
		return
	}
	r.RenderSurfaceErrors.Inc()
}

// RecordInteraction counts an input event of the given kind.
func (r *Registry) RecordInteraction(kind string) {
	if r == nil {
		return
	}
	r.InteractionEventsTotal.WithLabelValues(kind).Inc()
}

// SetCameraScale publishes the current camera scale.
func (r *Registry) SetCameraScale(scale float64) {
	if r == nil {
		return
	}
	r.CameraScale.Set(scale)
}

// RecordDatasetLoad records a snapshot fetch
func (r *Registry) RecordDatasetLoad(source, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.DatasetLoadsTotal.WithLabelValues(source, status).Inc()
	r.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordDropped counts records dropped at load for one reason.
func (r *Registry) RecordDropped(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.DatasetDroppedRecords.WithLabelValues(reason).Add(float64(n))
}

// RecordMergedEdges counts duplicate edges merged at load.
func (r *Registry) RecordMergedEdges(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.DatasetMergedEdges.Add(float64(n))
}

// SetGraphSize publishes the size of the loaded graph.
func (r *Registry) SetGraphSize(nodes, edges int) {
	if r == nil {
		return
	}
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// UpdateSystemMetrics refreshes uptime, goroutine and memory gauges.
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
