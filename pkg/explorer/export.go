package explorer

import (
	"encoding/json"
	"io"

	"github.com/dd0wney/cluso-netviz/pkg/layout"
)

// NodePosition is one node of a positions export.
type NodePosition struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Type   string  `json:"type"`
	Count  float64 `json:"count"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// EdgeWeight is one edge of a positions export.
type EdgeWeight struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Positions is the layout export: placed nodes normalized into a width x
// height box, plus the edges between them.
type Positions struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Nodes  []NodePosition `json:"nodes"`
	Edges  []EdgeWeight   `json:"edges"`
}

// Positions normalizes the current layout into [padding, size-padding].
// Unplaced nodes are left out.
func (e *Explorer) Positions(width, height, padding float64) Positions {
	nodes := e.model.Nodes()
	norm := layout.NormalizePositions(nodes, width, height, padding)

	out := Positions{
		Width:  width,
		Height: height,
		Nodes:  make([]NodePosition, 0, len(norm)),
		Edges:  make([]EdgeWeight, 0, e.model.EdgeCount()),
	}
	for _, n := range nodes {
		p, ok := norm[n.ID]
		if !ok {
			continue
		}
		out.Nodes = append(out.Nodes, NodePosition{
			ID:     n.ID,
			Label:  n.Label,
			Type:   n.Type.String(),
			Count:  n.Count,
			Radius: n.Radius,
			X:      p.X,
			Y:      p.Y,
		})
	}
	for _, edge := range e.model.Edges() {
		_, a := norm[edge.Source]
		_, b := norm[edge.Target]
		if a && b {
			out.Edges = append(out.Edges, EdgeWeight{Source: edge.Source, Target: edge.Target, Weight: edge.Weight})
		}
	}
	return out
}

// ExportPositions writes Positions as indented JSON.
func (e *Explorer) ExportPositions(w io.Writer, width, height, padding float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e.Positions(width, height, padding))
}
