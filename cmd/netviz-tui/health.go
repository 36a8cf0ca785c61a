package main

import (
	"github.com/dd0wney/cluso-netviz/pkg/explorer"
	"github.com/dd0wney/cluso-netviz/pkg/health"
	"github.com/dd0wney/cluso-netviz/pkg/render"
)

// readiness lists the checks that must be healthy before /readyz passes.
var readiness = []string{"surface", "graph"}

// reportHealth publishes the explorer's state. It runs on the UI goroutine.
func reportHealth(ex *explorer.Explorer, r *health.Reporter) {
	if r == nil {
		return
	}
	s := ex.Surface()
	surface := health.Check{
		Name:    "surface",
		Status:  health.StatusHealthy,
		Details: map[string]any{"state": s.State().String(), "backend": s.Backend()},
	}
	switch s.State() {
	case render.Failed:
		surface.Status = health.StatusUnhealthy
		surface.Message = s.Message()
	case render.WaitingForContainer, render.Ready:
		surface.Status = health.StatusDegraded
		surface.Message = "waiting for the terminal"
	}
	r.Report(surface)

	g, diag := ex.Model(), ex.Diagnostics()
	graph := health.Check{
		Name:   "graph",
		Status: health.StatusHealthy,
		Details: map[string]any{
			"nodes":   g.Len(),
			"edges":   g.EdgeCount(),
			"dropped": diag.Dropped(),
			"merged":  diag.MergedEdges,
		},
	}
	if g.IsEmpty() {
		graph.Status = health.StatusDegraded
		graph.Message = "no nodes loaded"
	}
	r.Report(graph)

	p := ex.LayoutProgress()
	layout := health.Check{
		Name:    "layout",
		Status:  health.StatusHealthy,
		Details: map[string]any{"state": ex.Scheduler().State().String(), "progress": p.Progress},
	}
	if p.IsRunning {
		layout.Status = health.StatusDegraded
		layout.Message = "layout running"
	}
	r.Report(layout)
}
