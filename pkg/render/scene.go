package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

// NodeItem is one node as it will be drawn, in screen space.
type NodeItem struct {
	ID      string
	Label   string
	Type    graphmodel.NodeType
	Center  graphmodel.Point
	Radius  float64
	Color   color.RGBA
	Opacity float64

	Emphasized bool
	Dimmed     bool
	Selected   bool
	Hovered    bool
}

// Contains reports whether the screen point p lies on the drawn circle.
func (n NodeItem) Contains(p graphmodel.Point) bool {
	return graphmodel.Distance(n.Center, p) <= n.Radius
}

// EdgeItem is one edge as it will be drawn, in screen space.
type EdgeItem struct {
	Source, Target string
	From, To       graphmodel.Point
	Width          float64
	Color          color.RGBA
	Opacity        float64
	Emphasized     bool
}

// LabelItem is a node label anchored under its node.
type LabelItem struct {
	NodeID  string
	Text    string
	At      graphmodel.Point
	Size    float64
	Color   color.RGBA
	Opacity float64
}

// Scene is the draw list for one frame: edges, then nodes, then labels.
type Scene struct {
	Width, Height int
	Background    color.RGBA
	Transform     camera.Transform

	Edges  []EdgeItem
	Nodes  []NodeItem
	Labels []LabelItem

	// EdgesHidden counts edges suppressed by the zoom-out rule.
	EdgesHidden int
}

// NodeIDs returns the ids of the drawn nodes in draw order.
func (s *Scene) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// HasNode reports whether id is drawn.
func (s *Scene) HasNode(id string) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// HitTest returns the topmost drawn node containing the screen point p.
// Nodes are tested in reverse draw order so the one painted last wins.
func (s *Scene) HitTest(p graphmodel.Point) (string, bool) {
	if s == nil {
		return "", false
	}
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		if s.Nodes[i].Contains(p) {
			return s.Nodes[i].ID, true
		}
	}
	return "", false
}

// HitOrder returns the drawn node ids topmost first.
func (s *Scene) HitOrder() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[len(s.Nodes)-1-i] = n.ID
	}
	return ids
}

// EdgeWidth maps weight into [minWidth, maxWidth] by its normalized position
// in [minWeight, maxWeight]. Uniform weights get the midpoint.
func EdgeWidth(weight, minWeight, maxWeight, minWidth, maxWidth float64) float64 {
	return minWidth + (maxWidth-minWidth)*graphmodel.Normalize(weight, minWeight, maxWeight)
}

// focus is the emphasis resolved from the view state for one frame.
type focus struct {
	// id is the selected (or isolation focus) node, empty when none.
	id         string
	emphasized graphmodel.NeighborSet
	// dimming is on whenever a selection or highlight exists.
	dimming  bool
	isolated bool
	hovered  string
	// anchors are the nodes whose incident edges survive edge hiding.
	anchors graphmodel.NeighborSet
}

func resolveFocus(m *graphmodel.Model, view *viewstate.State) focus {
	f := focus{anchors: graphmodel.NeighborSet{}}
	if view == nil {
		return f
	}
	f.hovered = view.Hovered()
	if f.hovered != "" {
		f.anchors[f.hovered] = struct{}{}
	}

	iso := view.Isolation()
	f.id = view.Selected()
	if iso.Active && iso.Focus != "" {
		f.id = iso.Focus
	}
	if f.id != "" && m.HasNode(f.id) {
		f.emphasized = m.Neighborhood(f.id)
		f.dimming = true
		f.isolated = iso.Active
		f.anchors[f.id] = struct{}{}
	} else {
		f.id = ""
	}

	if f.id == "" && view.HasHighlight() {
		f.emphasized = graphmodel.NeighborSet{}
		for _, id := range view.Highlighted() {
			if m.HasNode(id) {
				f.emphasized[id] = struct{}{}
			}
		}
		f.dimming = len(f.emphasized) > 0
	}
	for _, id := range view.Highlighted() {
		f.anchors[id] = struct{}{}
	}
	return f
}

// visible reports whether the node id survives isolation filtering.
func (f focus) visible(id string) bool {
	return !f.isolated || f.emphasized.Has(id)
}

// edgeVisible: under isolation only edges incident to the focus are drawn.
func (f focus) edgeVisible(e graphmodel.Edge) bool {
	return !f.isolated || e.Touches(f.id)
}

func (f focus) edgeEmphasized(e graphmodel.Edge) bool {
	if !f.dimming {
		return false
	}
	if f.id != "" {
		return e.Touches(f.id)
	}
	return f.emphasized.Has(e.Source) || f.emphasized.Has(e.Target)
}

// drawRank orders nodes: background, emphasized, hovered, selected.
func drawRank(n NodeItem) int {
	switch {
	case n.Selected:
		return 3
	case n.Hovered:
		return 2
	case n.Emphasized:
		return 1
	default:
		return 0
	}
}

// plan builds the scene for the current model, view state and camera.
func (p *Pipeline) plan(m *graphmodel.Model, view *viewstate.State, t camera.Transform, vp camera.Viewport) *Scene {
	scene := &Scene{
		Width:      int(math.Ceil(vp.Width)),
		Height:     int(math.Ceil(vp.Height)),
		Background: p.palette.Background,
		Transform:  t,
	}
	if m == nil || m.IsEmpty() || !t.IsValid() {
		return scene
	}
	cfg := p.cfg
	f := resolveFocus(m, view)
	hideEdges := t.Ratio() > cfg.EdgeHideRatio

	minW, maxW := m.WeightRange()
	for _, e := range m.Edges() {
		if !f.edgeVisible(e) {
			continue
		}
		a, okA := m.Node(e.Source)
		b, okB := m.Node(e.Target)
		if !okA || !okB || !drawable(a) || !drawable(b) {
			continue
		}
		if hideEdges && !f.anchors.Has(e.Source) && !f.anchors.Has(e.Target) {
			scene.EdgesHidden++
			continue
		}
		from, to := t.ToScreen(a.Position), t.ToScreen(b.Position)
		if !segmentInView(from, to, vp) {
			continue
		}
		item := EdgeItem{
			Source:  e.Source,
			Target:  e.Target,
			From:    from,
			To:      to,
			Width:   EdgeWidth(e.Weight, minW, maxW, cfg.EdgeMinWidth, cfg.EdgeMaxWidth),
			Color:   p.palette.Edge,
			Opacity: cfg.EdgeOpacity,
		}
		switch {
		case f.edgeEmphasized(e):
			item.Emphasized = true
			item.Width *= cfg.EdgeWidthBoost
			item.Color = p.palette.EdgeFocus
			item.Opacity = 1
		case f.dimming:
			item.Opacity = cfg.DimOpacity
		}
		scene.Edges = append(scene.Edges, item)
	}

	for _, n := range m.Nodes() {
		if !drawable(n) || !f.visible(n.ID) {
			continue
		}
		center := t.ToScreen(n.Position)
		r := n.Radius * t.Scale
		if !circleInView(center, r, vp) {
			continue
		}
		item := NodeItem{
			ID:       n.ID,
			Label:    n.Label,
			Type:     n.Type,
			Center:   center,
			Radius:   r,
			Color:    p.palette.NodeColor(n.Type),
			Opacity:  cfg.DefaultOpacity,
			Selected: n.ID == f.id,
			Hovered:  n.ID == f.hovered,
		}
		switch {
		case f.emphasized.Has(n.ID):
			item.Emphasized = true
			item.Opacity = 1
		case f.dimming:
			item.Dimmed = true
			item.Opacity = cfg.DimOpacity
		}
		if item.Hovered {
			item.Opacity = 1
		}
		scene.Nodes = append(scene.Nodes, item)
	}
	sort.SliceStable(scene.Nodes, func(i, j int) bool {
		return drawRank(scene.Nodes[i]) < drawRank(scene.Nodes[j])
	})

	for _, n := range scene.Nodes {
		if !p.wantsLabel(n, view) {
			continue
		}
		scene.Labels = append(scene.Labels, LabelItem{
			NodeID:  n.ID,
			Text:    n.Label,
			At:      graphmodel.Point{X: n.Center.X, Y: n.Center.Y + n.Radius + cfg.LabelSize*0.8},
			Size:    cfg.LabelSize,
			Color:   p.palette.Label,
			Opacity: n.Opacity,
		})
	}
	return scene
}

// wantsLabel applies the level-of-detail rule for labels.
func (p *Pipeline) wantsLabel(n NodeItem, view *viewstate.State) bool {
	if n.Label == "" {
		return false
	}
	if n.Selected || n.Hovered {
		return true
	}
	if view != nil && view.IsHighlighted(n.ID) {
		return true
	}
	if _, ok := p.important[n.ID]; ok {
		return true
	}
	return n.Radius*p.cfg.LabelDensity >= p.cfg.LabelSizeThreshold
}

func drawable(n *graphmodel.Node) bool {
	return n.Seeded && n.Position.IsFinite()
}

// circleInView culls circles entirely outside the viewport. An empty
// viewport culls nothing so headless callers can plan without one.
func circleInView(c graphmodel.Point, r float64, vp camera.Viewport) bool {
	if vp.IsEmpty() {
		return true
	}
	return c.X+r >= 0 && c.Y+r >= 0 && c.X-r <= vp.Width && c.Y-r <= vp.Height
}

func segmentInView(a, b graphmodel.Point, vp camera.Viewport) bool {
	if vp.IsEmpty() {
		return true
	}
	return math.Max(a.X, b.X) >= 0 && math.Max(a.Y, b.Y) >= 0 &&
		math.Min(a.X, b.X) <= vp.Width && math.Min(a.Y, b.Y) <= vp.Height
}
