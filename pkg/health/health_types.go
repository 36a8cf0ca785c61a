package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the last reported state of one component.
type Check struct {
	Name       string         `json:"name"`
	Status     Status         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	ReportedAt time.Time      `json:"reported_at"`
}

// Reporter collects checks pushed by the goroutine that owns the explorer
// and serves them to HTTP probes on other goroutines.
type Reporter struct {
	mu      sync.RWMutex
	started time.Time
	now     func() time.Time
	checks  map[string]Check
	ready   map[string]struct{} // names that gate readiness
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}
