// Package graphmodel holds the normalized node/edge storage and adjacency
// index the layout engine, renderer and interaction layer share.
package graphmodel

import (
	"math"
	"strings"
)

// NodeType is the closed set of entity kinds in the archive, resolved once
// at load time from the snapshot's type string.
type NodeType int

const (
	TypeUnknown NodeType = iota
	TypePerson
	TypeOrganization
	TypeEvent
	TypeSubject
	TypeLocation
)

var nodeTypeNames = [...]string{
	TypeUnknown:      "unknown",
	TypePerson:       "person",
	TypeOrganization: "organization",
	TypeEvent:        "event",
	TypeSubject:      "subject",
	TypeLocation:     "location",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return nodeTypeNames[TypeUnknown]
	}
	return nodeTypeNames[t]
}

// ParseNodeType maps a snapshot type string to a NodeType. Anything it does
// not recognize becomes TypeUnknown.
func ParseNodeType(s string) NodeType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "persons":
		return TypePerson
	case "organization", "organisation", "organizations":
		return TypeOrganization
	case "event", "events":
		return TypeEvent
	case "subject", "subjects", "topic":
		return TypeSubject
	case "location", "locations", "place":
		return TypeLocation
	default:
		return TypeUnknown
	}
}

// typeFromID reads the "<type>:" prefix of conventional node ids.
func typeFromID(id string) NodeType {
	if i := strings.IndexByte(id, ':'); i > 0 {
		return ParseNodeType(id[:i])
	}
	return TypeUnknown
}

// Point is a coordinate in layout or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both components are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Node is a graph entity. Position and Radius are mutated in place by the
// layout engine, the node-drag path and the sizing pass.
type Node struct {
	ID       string
	Label    string
	Type     NodeType
	Count    float64
	Degree   int
	Strength float64

	Position Point
	// Seeded is false until the layout initializer (or a preserved
	// position from a previous load) has placed the node.
	Seeded bool
	Radius float64

	// Geo is set for nodes carrying coordinates (spatial variant).
	Geo *LatLng

	index int
}

// Index is the node's position in load order, which is also its base draw order.
func (n *Node) Index() int { return n.index }

// Edge is an undirected, weighted co-occurrence between two nodes.
type Edge struct {
	Source string
	Target string
	Weight float64
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return id != "" && (e.Source == id || e.Target == id)
}

// Other returns the endpoint opposite id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// NeighborSet is the precomputed set of neighbor ids for a node.
type NeighborSet map[string]struct{}

// Has reports whether id is in the set. Safe on a nil set.
func (s NeighborSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Rect is an axis-aligned box in layout space.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect returns a rect that any Extend call will replace.
func EmptyRect() Rect {
	return Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// Extend grows r to include the circle at p with radius r.
func (r Rect) Extend(p Point, radius float64) Rect {
	r.MinX = math.Min(r.MinX, p.X-radius)
	r.MinY = math.Min(r.MinY, p.Y-radius)
	r.MaxX = math.Max(r.MaxX, p.X+radius)
	r.MaxY = math.Max(r.MaxY, p.Y+radius)
	return r
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// IsDegenerate reports whether r has non-finite corners or a zero or negative
// extent on either axis. Fitting the camera to such a rect is a no-op.
func (r Rect) IsDegenerate() bool {
	for _, v := range []float64{r.MinX, r.MinY, r.MaxX, r.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return r.Width() <= 0 || r.Height() <= 0
}

// Normalize maps v from [min, max] into [0, 1]. When the range collapses
// (min == max) every value maps to 0.5. Results are clamped.
func Normalize(v, min, max float64) float64 {
	span := max - min
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0.5
	}
	t := (v - min) / span
	switch {
	case math.IsNaN(t):
		return 0.5
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
