package camera

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

var errZoomStep = errors.New("must be greater than 1")

// Options carries the controller's optional collaborators.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// animation interpolates the view center in layout space and the scale in
// log space, which keeps zooms perceptually even.
type animation struct {
	fromCenter, toCenter graphmodel.Point
	fromScale, toScale   float64
	started              time.Time
	duration             time.Duration
	frameID              frame.ID
	token                uint64
}

// Controller owns the view transform. At most one animation is in flight;
// a new fit or center request supersedes the previous one.
type Controller struct {
	cfg     Config
	loop    *frame.Loop
	logger  logging.Logger
	metrics *metrics.Registry

	transform Transform
	viewport  Viewport
	anim      *animation
	token     uint64
	observers []func(Transform)
}

// New creates a controller with the identity transform.
func New(loop *frame.Loop, cfg Config, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	return &Controller{
		cfg:       cfg,
		loop:      loop,
		logger:    logging.OrNop(opts.Logger).With(logging.Component("camera")),
		metrics:   opts.Metrics,
		transform: Identity(),
	}, nil
}

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.transform }

// Viewport returns the current viewport.
func (c *Controller) Viewport() Viewport { return c.viewport }

// SetViewport records a resize. The transform is left alone.
func (c *Controller) SetViewport(v Viewport) {
	c.viewport = v
}

// OnChange registers fn to run after every transform change.
func (c *Controller) OnChange(fn func(Transform)) {
	c.observers = append(c.observers, fn)
}

// Animating reports whether an animation is in flight.
func (c *Controller) Animating() bool { return c.anim != nil }

// ClampScale limits s to the configured range.
func (c *Controller) ClampScale(s float64) float64 {
	return math.Max(c.cfg.MinScale, math.Min(c.cfg.MaxScale, s))
}

// SetTransform applies t immediately, clamping its scale and cancelling
// any animation. Invalid transforms are ignored.
func (c *Controller) SetTransform(t Transform) {
	if !t.IsValid() {
		return
	}
	c.CancelAnimation()
	c.apply(c.clampAround(t))
}

// clampAround clamps t's scale while keeping the viewport center fixed.
func (c *Controller) clampAround(t Transform) Transform {
	s := c.ClampScale(t.Scale)
	if s == t.Scale {
		return t
	}
	center := t.ToLayout(c.viewport.Center())
	return centered(center, s, c.viewport)
}

func (c *Controller) apply(t Transform) {
	c.transform = t
	c.metrics.SetCameraScale(t.Scale)
	for _, fn := range c.observers {
		fn(t)
	}
}

// FitToBounds frames bounds, grown by paddingRatio, in the viewport:
// scale = min(Vw, Vh) / (max(W, H) * (1 + paddingRatio)), clamped, with the
// bounds centered. Degenerate bounds or an empty viewport make it a no-op,
// reported by a false return.
func (c *Controller) FitToBounds(bounds graphmodel.Rect, paddingRatio float64, animate bool) bool {
	if bounds.IsDegenerate() || c.viewport.IsEmpty() || paddingRatio < 0 {
		c.logger.Debug("fit skipped",
			logging.Bool("degenerate", bounds.IsDegenerate()),
			logging.Bool("empty_viewport", c.viewport.IsEmpty()),
		)
		return false
	}
	scale := c.ClampScale(FitScale(bounds, c.viewport, paddingRatio))
	c.moveTo(bounds.Center(), scale, animate)
	return true
}

// CenterOn maps p to the viewport center at targetScale. A non-positive
// targetScale keeps the current scale.
func (c *Controller) CenterOn(p graphmodel.Point, targetScale float64, animate bool) bool {
	if !p.IsFinite() || c.viewport.IsEmpty() {
		return false
	}
	if !(targetScale > 0) {
		targetScale = c.transform.Scale
	}
	c.moveTo(p, c.ClampScale(targetScale), animate)
	return true
}

// ZoomAt multiplies the scale by factor around a screen point: the layout
// point under it stays under it.
func (c *Controller) ZoomAt(screen graphmodel.Point, factor float64) {
	if !(factor > 0) || !screen.IsFinite() {
		return
	}
	c.CancelAnimation()
	anchor := c.transform.ToLayout(screen)
	s := c.ClampScale(c.transform.Scale * factor)
	c.apply(Transform{
		Scale:      s,
		TranslateX: screen.X - anchor.X*s,
		TranslateY: screen.Y - anchor.Y*s,
	})
}

// ZoomIn zooms one step toward the viewport center.
func (c *Controller) ZoomIn() { c.ZoomAt(c.viewport.Center(), c.cfg.ZoomStep) }

// ZoomOut zooms one step away from the viewport center.
func (c *Controller) ZoomOut() { c.ZoomAt(c.viewport.Center(), 1/c.cfg.ZoomStep) }

// PanBy shifts the view by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return
	}
	c.CancelAnimation()
	t := c.transform
	t.TranslateX += dx
	t.TranslateY += dy
	c.apply(t)
}

// CancelAnimation stops an in-flight animation where it is.
func (c *Controller) CancelAnimation() {
	if c.anim == nil {
		return
	}
	c.loop.Cancel(c.anim.frameID)
	c.anim = nil
	c.token++
}

func (c *Controller) moveTo(center graphmodel.Point, scale float64, animate bool) {
	c.CancelAnimation()
	target := centered(center, scale, c.viewport)
	if !animate || c.cfg.AnimationDuration <= 0 || c.loop == nil {
		c.apply(target)
		return
	}

	c.token++
	c.anim = &animation{
		fromCenter: c.transform.ToLayout(c.viewport.Center()),
		toCenter:   center,
		fromScale:  c.transform.Scale,
		toScale:    scale,
		duration:   c.cfg.AnimationDuration,
		token:      c.token,
	}
	c.requestFrame()
}

func (c *Controller) requestFrame() {
	a := c.anim
	a.frameID = c.loop.Request(func(now time.Time) { c.step(a, now) })
}

func (c *Controller) step(a *animation, now time.Time) {
	if c.anim != a || a.token != c.token {
		return
	}
	if a.started.IsZero() {
		a.started = now
	}
	t := float64(now.Sub(a.started)) / float64(a.duration)
	if t >= 1 {
		c.anim = nil
		c.apply(centered(a.toCenter, a.toScale, c.viewport))
		return
	}

	e := easeInOutCubic(t)
	center := graphmodel.Point{
		X: a.fromCenter.X + (a.toCenter.X-a.fromCenter.X)*e,
		Y: a.fromCenter.Y + (a.toCenter.Y-a.fromCenter.Y)*e,
	}
	scale := math.Exp(math.Log(a.fromScale) + (math.Log(a.toScale)-math.Log(a.fromScale))*e)
	c.apply(centered(center, scale, c.viewport))
	c.requestFrame()
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}
