package health

import (
	"time"
)

// NewReporter returns a reporter whose readiness depends on the named
// components. A readiness component that never reported is unhealthy.
func NewReporter(readiness ...string) *Reporter {
	r := &Reporter{
		started: time.Now(),
		now:     time.Now,
		checks:  make(map[string]Check),
		ready:   make(map[string]struct{}, len(readiness)),
	}
	for _, name := range readiness {
		r.ready[name] = struct{}{}
	}
	return r
}

// Report records the latest state of c.Name.
func (r *Reporter) Report(c Check) {
	if r == nil || c.Name == "" {
		return
	}
	if c.ReportedAt.IsZero() {
		c.ReportedAt = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[c.Name] = c
}

// Check aggregates every reported component.
func (r *Reporter) Check() Response {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp := r.response()
	for name, c := range r.checks {
		resp.Checks[name] = c
		resp.Status = worst(resp.Status, c.Status)
	}
	return resp
}

// CheckReadiness aggregates the readiness components only.
func (r *Reporter) CheckReadiness() Response {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp := r.response()
	for name := range r.ready {
		c, ok := r.checks[name]
		if !ok {
			c = Check{Name: name, Status: StatusUnhealthy, Message: "not reported"}
		}
		resp.Checks[name] = c
		resp.Status = worst(resp.Status, c.Status)
	}
	return resp
}

func (r *Reporter) response() Response {
	now := r.now()
	return Response{
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]Check),
		Uptime:    now.Sub(r.started).Seconds(),
	}
}

// worst wins: unhealthy over degraded over healthy.
func worst(a, b Status) Status {
	switch {
	case a == StatusUnhealthy || b == StatusUnhealthy:
		return StatusUnhealthy
	case a == StatusDegraded || b == StatusDegraded:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
