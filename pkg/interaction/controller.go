// Package interaction turns pointer and keyboard input into selection,
// hover, camera and node-drag changes.
package interaction

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/render"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

// ErrMissingCollaborator is returned by New when a required dependency is nil.
var ErrMissingCollaborator = errors.New("interaction: missing collaborator")

// PointerState is the state of the pointer machine.
type PointerState int

const (
	Idle PointerState = iota
	Pressed
	DraggingCamera
	DraggingNode
)

func (s PointerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case DraggingCamera:
		return "dragging_camera"
	case DraggingNode:
		return "dragging_node"
	default:
		return "unknown"
	}
}

// Layout is the part of the layout scheduler input needs.
type Layout interface {
	Start() bool
	Pause()
	Resume()
}

// SceneSource yields the last planned scene, whose draw order hit-testing
// follows.
type SceneSource interface {
	LastScene() *render.Scene
}

// Deps are the collaborators the controller drives. Layout and Scenes may
// be nil.
type Deps struct {
	Model  *graphmodel.Model
	Camera *camera.Controller
	View   *viewstate.State
	Layout Layout
	Scenes SceneSource
}

// Options carries optional collaborators.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Controller is the pointer state machine plus key dispatch.
type Controller struct {
	cfg     Config
	deps    Deps
	logger  logging.Logger
	metrics *metrics.Registry

	state     PointerState
	pressAt   graphmodel.Point
	last      graphmodel.Point
	pressNode string
	// grab is the node position minus the layout point under the pointer
	// at press time, so a dragged node does not jump to the cursor.
	grab graphmodel.Point
}

// New validates cfg and returns an idle controller.
func New(deps Deps, cfg Config, opts Options) (*Controller, error) {
	if deps.Model == nil || deps.Camera == nil || deps.View == nil {
		return nil, ErrMissingCollaborator
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interaction config: %w", err)
	}
	return &Controller{
		cfg:     cfg,
		deps:    deps,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("interaction")),
		metrics: opts.Metrics,
	}, nil
}

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// State returns the pointer state.
func (c *Controller) State() PointerState { return c.state }

// HitTest maps a screen point to the topmost visible node under it. The
// point is taken into layout space and tested against each node's layout
// radius in reverse draw order.
func (c *Controller) HitTest(screen graphmodel.Point) (string, bool) {
	t := c.deps.Camera.Transform()
	if !t.IsValid() {
		return "", false
	}
	p := t.ToLayout(screen)
	for _, id := range c.hitOrder() {
		n, ok := c.deps.Model.Node(id)
		if !ok || !n.Seeded {
			continue
		}
		if graphmodel.Distance(n.Position, p) <= n.Radius {
			return id, true
		}
	}
	return "", false
}

// hitOrder is the last scene's order, or reversed load order before any
// frame was planned.
func (c *Controller) hitOrder() []string {
	if c.deps.Scenes != nil {
		if s := c.deps.Scenes.LastScene(); s != nil {
			return s.HitOrder()
		}
	}
	nodes := c.deps.Model.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[len(nodes)-1-i] = n.ID
	}
	return ids
}

// PointerDown starts a press.
func (c *Controller) PointerDown(p graphmodel.Point) {
	if c.state != Idle {
		c.PointerUp(c.last)
	}
	c.state = Pressed
	c.pressAt, c.last = p, p
	c.pressNode, _ = c.HitTest(p)
	if n, ok := c.deps.Model.Node(c.pressNode); ok {
		at := c.deps.Camera.Transform().ToLayout(p)
		c.grab = graphmodel.Point{X: n.Position.X - at.X, Y: n.Position.Y - at.Y}
	}
}

// PointerMove updates hover while idle and drives drags while pressed.
func (c *Controller) PointerMove(p graphmodel.Point) {
	switch c.state {
	case Idle:
		c.updateHover(p)
		return
	case Pressed:
		if graphmodel.Distance(p, c.pressAt) <= c.cfg.DragThreshold {
			return
		}
		c.beginDrag()
	}

	switch c.state {
	case DraggingCamera:
		c.deps.Camera.PanBy(p.X-c.last.X, p.Y-c.last.Y)
	case DraggingNode:
		at := c.deps.Camera.Transform().ToLayout(p)
		c.deps.Model.SetPosition(c.pressNode, graphmodel.Point{X: at.X + c.grab.X, Y: at.Y + c.grab.Y})
	}
	c.last = p
}

func (c *Controller) beginDrag() {
	if c.pressNode != "" && c.deps.Model.HasNode(c.pressNode) {
		c.state = DraggingNode
		if c.deps.Layout != nil {
			c.deps.Layout.Pause()
		}
		c.deps.View.Hover(c.pressNode)
		c.metrics.RecordInteraction("node_drag")
		c.logger.Debug("node drag started", logging.NodeID(c.pressNode))
		return
	}
	c.state = DraggingCamera
	c.deps.Camera.CancelAnimation()
	c.metrics.RecordInteraction("pan")
}

// PointerUp ends a press. A press that never became a drag is a click:
// on a node it selects the node, on the background it clears the selection.
func (c *Controller) PointerUp(p graphmodel.Point) {
	switch c.state {
	case Pressed:
		if c.pressNode != "" {
			c.deps.View.Select(c.pressNode)
			c.metrics.RecordInteraction("select")
		} else {
			c.deps.View.ClearSelection()
			c.metrics.RecordInteraction("clear")
		}
	case DraggingNode:
		c.endNodeDrag()
	}
	c.state = Idle
	c.pressNode = ""
	c.updateHover(p)
}

// PointerLeave abandons any press and clears hover.
func (c *Controller) PointerLeave() {
	if c.state == DraggingNode {
		c.endNodeDrag()
	}
	c.state = Idle
	c.pressNode = ""
	c.deps.View.Hover("")
}

func (c *Controller) endNodeDrag() {
	if c.deps.Layout != nil {
		c.deps.Layout.Resume()
	}
	c.logger.Debug("node drag finished", logging.NodeID(c.pressNode))
}

// Wheel zooms toward p by notches wheel steps; positive notches zoom in.
func (c *Controller) Wheel(p graphmodel.Point, notches float64) {
	if notches == 0 || math.IsNaN(notches) || math.IsInf(notches, 0) {
		return
	}
	c.deps.Camera.ZoomAt(p, math.Pow(c.cfg.WheelStep, notches))
	c.metrics.RecordInteraction("wheel")
}

func (c *Controller) updateHover(p graphmodel.Point) {
	id, _ := c.HitTest(p)
	if id != c.deps.View.Hovered() {
		c.deps.View.Hover(id)
		c.metrics.RecordInteraction("hover")
	}
}
