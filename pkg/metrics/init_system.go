package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	gauge := func(name, help string) prometheus.Gauge {
		return promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	r.UptimeSeconds = gauge("netviz_uptime_seconds", "Time since the process started in seconds")
	r.GoRoutines = gauge("netviz_goroutines", "Number of goroutines")
	r.MemoryAllocBytes = gauge("netviz_memory_alloc_bytes", "Bytes of allocated heap objects")
	r.MemorySysBytes = gauge("netviz_memory_sys_bytes", "Total bytes of memory obtained from the OS")
}
