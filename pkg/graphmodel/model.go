package graphmodel

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// Options configures a Model.
type Options struct {
	// MinEdgeWeight drops edges lighter than this at load. Zero keeps all.
	MinEdgeWeight float64
	Logger        logging.Logger
}

// Model owns the node map, the ordered node list, the edge list and the
// adjacency index. It is not safe for concurrent use: the engine runs all
// readers and writers on the frame goroutine.
type Model struct {
	opts      Options
	logger    logging.Logger
	nodes     map[string]*Node
	order     []*Node
	edges     []Edge
	adjacency map[string]NeighborSet
	diag      Diagnostics
	version   uint64

	minCount, maxCount   float64
	minWeight, maxWeight float64
}

// New creates an empty model.
func New(opts Options) *Model {
	return &Model{
		opts:      opts,
		logger:    logging.OrNop(opts.Logger).With(logging.Component("graphmodel")),
		nodes:     make(map[string]*Node),
		adjacency: make(map[string]NeighborSet),
	}
}

// FromSnapshot is shorthand for New followed by Load.
func FromSnapshot(s Snapshot, opts Options) *Model {
	m := New(opts)
	m.Load(s)
	return m
}

// Load replaces the model's contents with s and rebuilds adjacency in O(E).
// Positions of node ids present both before and after the call are kept, so
// toggling a filter does not make the layout jump. Invalid records are
// dropped and counted in the returned Diagnostics.
func (m *Model) Load(s Snapshot) Diagnostics {
	var diag Diagnostics
	previous := m.nodes

	nodes := make(map[string]*Node, len(s.Nodes))
	order := make([]*Node, 0, len(s.Nodes))
	explicitDegree := make(map[string]bool)

	for i := range s.Nodes {
		rec := &s.Nodes[i]
		if err := validation.Struct(rec); err != nil {
			diag.InvalidNodes++
			m.logger.Debug("dropping invalid node", logging.NodeID(rec.ID), logging.Error(err))
			continue
		}
		if _, dup := nodes[rec.ID]; dup {
			diag.DuplicateNodes++
			continue
		}

		n := &Node{
			ID:       rec.ID,
			Label:    rec.Label,
			Type:     ParseNodeType(rec.Type),
			Count:    rec.Count,
			Strength: rec.Strength,
			index:    len(order),
		}
		if n.Type == TypeUnknown {
			n.Type = typeFromID(rec.ID)
		}
		if n.Label == "" {
			n.Label = rec.ID
		}
		if rec.Degree != nil {
			n.Degree = *rec.Degree
			explicitDegree[rec.ID] = true
		}
		if len(rec.Coordinates) == 2 {
			if geo, ok := validLatLng(rec.Coordinates[0], rec.Coordinates[1]); ok {
				n.Geo = &geo
			} else {
				diag.InvalidCoordinates++
			}
		}
		if old, ok := previous[rec.ID]; ok && old.Seeded && old.Position.IsFinite() {
			n.Position = old.Position
			n.Seeded = true
			diag.PreservedPositions++
		}

		nodes[n.ID] = n
		order = append(order, n)
	}

	adjacency := make(map[string]NeighborSet, len(nodes))
	edgeIndex := make(map[[2]string]int, len(s.Edges))
	edges := make([]Edge, 0, len(s.Edges))

	for i := range s.Edges {
		rec := &s.Edges[i]
		if err := validation.Struct(rec); err != nil || math.IsNaN(rec.Weight) || math.IsInf(rec.Weight, 0) {
			diag.InvalidEdges++
			continue
		}
		if _, ok := nodes[rec.Source]; !ok {
			diag.DanglingEdges++
			continue
		}
		if _, ok := nodes[rec.Target]; !ok {
			diag.DanglingEdges++
			continue
		}
		if rec.Source == rec.Target {
			diag.SelfLoops++
			continue
		}
		if rec.Weight < m.opts.MinEdgeWeight {
			diag.BelowMinWeight++
			continue
		}

		key := pairKey(rec.Source, rec.Target)
		if at, dup := edgeIndex[key]; dup {
			// the same co-occurrence reported twice: accumulate
			edges[at].Weight += rec.Weight
			diag.MergedEdges++
			continue
		}
		edgeIndex[key] = len(edges)
		edges = append(edges, Edge{Source: rec.Source, Target: rec.Target, Weight: rec.Weight})
		link(adjacency, rec.Source, rec.Target)
		link(adjacency, rec.Target, rec.Source)
	}

	m.nodes = nodes
	m.order = order
	m.edges = edges
	m.adjacency = adjacency
	m.diag = diag
	m.version++

	for _, n := range order {
		if !explicitDegree[n.ID] {
			n.Degree = len(adjacency[n.ID])
		}
	}
	m.recomputeRanges()

	if diag.Dropped() > 0 || diag.InvalidCoordinates > 0 {
		m.logger.Warn("snapshot records dropped",
			logging.Nodes(len(order)),
			logging.Edges(len(edges)),
			logging.Any("diagnostics", diag),
		)
	}
	m.logger.Info("graph loaded",
		logging.Nodes(len(order)),
		logging.Edges(len(edges)),
		logging.Uint64("version", m.version),
	)
	return diag
}

func validLatLng(lat, lng float64) (LatLng, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return LatLng{}, false
	}
	return LatLng{Lat: lat, Lng: lng}, true
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func link(adj map[string]NeighborSet, from, to string) {
	set, ok := adj[from]
	if !ok {
		set = make(NeighborSet)
		adj[from] = set
	}
	set[to] = struct{}{}
}

func (m *Model) recomputeRanges() {
	m.minCount, m.maxCount = 0, 0
	for i, n := range m.order {
		if i == 0 || n.Count < m.minCount {
			m.minCount = n.Count
		}
		if i == 0 || n.Count > m.maxCount {
			m.maxCount = n.Count
		}
	}
	m.minWeight, m.maxWeight = 0, 0
	for i, e := range m.edges {
		if i == 0 || e.Weight < m.minWeight {
			m.minWeight = e.Weight
		}
		if i == 0 || e.Weight > m.maxWeight {
			m.maxWeight = e.Weight
		}
	}
}

// Node returns the node with the given id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Nodes returns the nodes in load order. The slice is owned by the model.
func (m *Model) Nodes() []*Node { return m.order }

// Edges returns the edge list. The slice is owned by the model.
func (m *Model) Edges() []Edge { return m.edges }

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.order) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// IsEmpty reports whether the model has no nodes.
func (m *Model) IsEmpty() bool { return len(m.order) == 0 }

// HasNode reports whether id exists.
func (m *Model) HasNode(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

// HasEdge reports whether a and b are connected, in either direction.
func (m *Model) HasEdge(a, b string) bool {
	return m.adjacency[a].Has(b)
}

// NeighborsOf returns the precomputed neighbor set of id, nil when id is
// unknown or isolated.
func (m *Model) NeighborsOf(id string) NeighborSet {
	return m.adjacency[id]
}

// Neighborhood returns id plus its neighbors.
func (m *Model) Neighborhood(id string) NeighborSet {
	out := make(NeighborSet, len(m.adjacency[id])+1)
	if !m.HasNode(id) {
		return out
	}
	out[id] = struct{}{}
	for n := range m.adjacency[id] {
		out[n] = struct{}{}
	}
	return out
}

// LinkDegree is the number of distinct neighbors, ignoring any precomputed
// degree from the snapshot. The layout's mass term uses it.
func (m *Model) LinkDegree(id string) int {
	return len(m.adjacency[id])
}

// Diagnostics returns the counts from the last Load.
func (m *Model) Diagnostics() Diagnostics { return m.diag }

// Version increments on every Load.
func (m *Model) Version() uint64 { return m.version }

// CountRange returns the min and max node count.
func (m *Model) CountRange() (min, max float64) { return m.minCount, m.maxCount }

// WeightRange returns the min and max edge weight.
func (m *Model) WeightRange() (min, max float64) { return m.minWeight, m.maxWeight }

// ApplySizing recomputes every node radius from its count, normalized against
// the graph's count range and mapped into [minSize, maxSize].
func (m *Model) ApplySizing(minSize, maxSize float64) {
	for _, n := range m.order {
		n.Radius = minSize + (maxSize-minSize)*Normalize(n.Count, m.minCount, m.maxCount)
	}
}

// SetPosition moves a node and marks it seeded. It returns false for unknown
// ids and non-finite points.
func (m *Model) SetPosition(id string, p Point) bool {
	n, ok := m.nodes[id]
	if !ok || !p.IsFinite() {
		return false
	}
	n.Position = p
	n.Seeded = true
	return true
}

// Bounds returns the box enclosing every seeded node including its radius.
// The result is EmptyRect (degenerate) when nothing is seeded.
func (m *Model) Bounds() Rect {
	r := EmptyRect()
	for _, n := range m.order {
		if !n.Seeded || !n.Position.IsFinite() {
			continue
		}
		r = r.Extend(n.Position, n.Radius)
	}
	return r
}

// Placed counts the nodes with a finite position.
func (m *Model) Placed() int {
	n := 0
	for _, node := range m.order {
		if node.Seeded && node.Position.IsFinite() {
			n++
		}
	}
	return n
}

// FitBounds is Bounds for framing the whole graph. With fewer than two
// placed nodes there is no extent to frame and the result is degenerate.
func (m *Model) FitBounds() Rect {
	if m.Placed() < 2 {
		return EmptyRect()
	}
	return m.Bounds()
}

// BoundsOf returns the box enclosing the given ids, ignoring unknown ones.
func (m *Model) BoundsOf(ids NeighborSet) Rect {
	r := EmptyRect()
	for id := range ids {
		if n, ok := m.nodes[id]; ok && n.Seeded && n.Position.IsFinite() {
			r = r.Extend(n.Position, n.Radius)
		}
	}
	return r
}

// GeoNodes returns the nodes that carry coordinates, in load order.
func (m *Model) GeoNodes() []*Node {
	out := make([]*Node, 0, len(m.order))
	for _, n := range m.order {
		if n.Geo != nil {
			out = append(out, n)
		}
	}
	return out
}
