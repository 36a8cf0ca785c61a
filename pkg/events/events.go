// Package events carries the engine's outbound notifications (selection,
// hover, isolation, layout progress, surface state) to host code.
package events

import "time"

// Topic names a stream of events.
type Topic string

const (
	TopicSelection      Topic = "selection"
	TopicHover          Topic = "hover"
	TopicIsolation      Topic = "isolation"
	TopicHighlight      Topic = "highlight"
	TopicLayoutProgress Topic = "layout.progress"
	TopicLayoutFinished Topic = "layout.finished"
	TopicSurface        Topic = "surface"
	TopicGraphLoaded    Topic = "graph.loaded"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	Topic   Topic
	At      time.Time
	Payload any
}

// SelectionChanged is published when the selected node changes. An empty
// NodeID means nothing is selected.
type SelectionChanged struct {
	NodeID   string `json:"nodeId"`
	Previous string `json:"previous,omitempty"`
}

// HoverChanged is published when the node under the pointer changes.
type HoverChanged struct {
	NodeID string `json:"nodeId"`
}

// IsolationChanged is published when focus isolation turns on or off.
type IsolationChanged struct {
	Active bool   `json:"active"`
	Focus  string `json:"focus,omitempty"`
}

// HighlightChanged is published when the highlighted set is replaced.
type HighlightChanged struct {
	NodeIDs []string `json:"nodeIds"`
}

// LayoutProgress is published after every scheduler batch.
type LayoutProgress struct {
	RunID     string  `json:"runId"`
	IsRunning bool    `json:"isRunning"`
	Progress  float64 `json:"progress"`
	Done      int     `json:"done"`
	Total     int     `json:"total"`
	Phase     string  `json:"phase"`
}

// LayoutFinished is published once when a run ends, whatever the outcome.
type LayoutFinished struct {
	RunID      string        `json:"runId"`
	Outcome    string        `json:"outcome"`
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration"`
}

// SurfaceStateChanged is published on every render surface transition.
type SurfaceStateChanged struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// GraphLoaded is published after a snapshot replaced the graph.
type GraphLoaded struct {
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Dropped int    `json:"dropped"`
	Merged  int    `json:"merged"`
	Version uint64 `json:"version"`
}
