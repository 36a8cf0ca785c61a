// Package explorer is the single owner of the visualization engine. It
// builds every component, hands each one its collaborators as arguments and
// exposes the programmatic controls hosts call.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/algorithms"
	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/events"
	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/geosync"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/layout"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/render"
	"github.com/dd0wney/cluso-netviz/pkg/scheduler"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

var (
	// ErrUnknownNode is returned by controls given an id the graph lacks.
	ErrUnknownNode = errors.New("explorer: unknown node")
	// ErrSpatial is returned for force-layout controls in the spatial variant.
	ErrSpatial = errors.New("explorer: layout is driven by the map in spatial mode")
)

// Options carries the explorer's optional collaborators.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	// Bus receives outbound events. A private bus is created when nil.
	Bus     *events.Bus
	Palette *render.Palette

	// Backend names the surface backend that Factory creates. A nil Factory
	// draws into a RasterCanvas.
	Backend string
	Factory render.Factory

	// Map switches on the spatial variant with a host-owned map view. With
	// config geo.enabled and no Map, the explorer creates its own.
	Map *geosync.MapView
}

// Explorer wires model, layout, camera, view state, renderer, input and the
// optional geographic sync. It is not safe for concurrent use; every call
// happens on the goroutine that ticks the frame loop.
type Explorer struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	bus     *events.Bus

	loop     *frame.Loop
	model    *graphmodel.Model
	engine   *layout.Engine
	sched    *scheduler.Scheduler
	cam      *camera.Controller
	view     *viewstate.State
	pipeline *render.Pipeline
	surface  *render.Surface
	input    *interaction.Controller

	mapView *geosync.MapView
	geo     *geosync.Sync
	// bridging is set while a camera change is being folded into the map.
	bridging bool
	// fitPending defers a fit requested before the viewport had a size.
	fitPending bool
	// geoBounds is the extent the last snapshot declared, if any.
	geoBounds *graphmodel.GeoBounds

	// redrawID is the pending map redraw; drawn holds what it drew this tick.
	redrawID frame.ID
	drawn    *drawResult

	selected string
}

// New builds an explorer over an empty graph.
func New(cfg config.Config, opts Options) (*Explorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrNop(opts.Logger)
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	e := &Explorer{
		cfg:     cfg,
		logger:  logger.With(logging.Component("explorer")),
		metrics: opts.Metrics,
		bus:     bus,
		loop:    frame.NewLoop(),
		view:    viewstate.New(),
	}
	e.model = graphmodel.New(graphmodel.Options{MinEdgeWeight: cfg.Graph.MinEdgeWeight, Logger: logger})

	var err error
	if e.engine, err = layout.NewEngine(e.model, cfg.LayoutFor(0, 0), layout.Options{Logger: logger, Metrics: opts.Metrics}); err != nil {
		return nil, err
	}
	e.sched = scheduler.New(e.engine, e.loop, scheduler.Options{
		Logger:  logger,
		Metrics: opts.Metrics,
		Bus:     bus,
		OnFinish: func(scheduler.Result) {
			e.FitToView(true)
		},
	})
	if e.cam, err = camera.New(e.loop, cfg.Camera, camera.Options{Logger: logger, Metrics: opts.Metrics}); err != nil {
		return nil, err
	}
	if e.pipeline, err = render.NewPipeline(cfg.Render, render.Options{Logger: logger, Metrics: opts.Metrics, Palette: opts.Palette}); err != nil {
		return nil, err
	}

	backend, factory := opts.Backend, opts.Factory
	if factory == nil {
		backend = "raster"
		factory = func() (render.Canvas, error) { return render.NewRasterCanvas(), nil }
	}
	e.surface = render.NewSurface(e.loop, backend, factory, render.SurfaceOptions{
		Logger: logger, Metrics: opts.Metrics, Bus: bus,
	})

	e.mapView = opts.Map
	if e.mapView == nil && cfg.Geo.Enabled {
		e.mapView = geosync.NewMapView(geosync.View{Zoom: cfg.Geo.Zoom})
	}

	deps := interaction.Deps{Model: e.model, Camera: e.cam, View: e.view, Scenes: e.pipeline}
	if e.mapView == nil {
		deps.Layout = e.sched
	}
	if e.input, err = interaction.New(deps, cfg.Interaction, interaction.Options{Logger: logger, Metrics: opts.Metrics}); err != nil {
		return nil, err
	}

	if e.mapView != nil {
		if err := e.attachMap(logger); err != nil {
			return nil, err
		}
	}
	e.view.Subscribe(e.publishView)
	return e, nil
}

// Spatial reports whether positions follow a map instead of the layout.
func (e *Explorer) Spatial() bool { return e.geo != nil }

// Load replaces the graph. Outside the spatial variant it starts a layout
// run, which fits the view when it completes.
func (e *Explorer) Load(s graphmodel.Snapshot) graphmodel.Diagnostics {
	e.sched.Stop()
	diag := e.model.Load(s)

	if err := e.engine.SetConfig(e.cfg.LayoutFor(e.model.Len(), e.model.EdgeCount())); err != nil {
		e.logger.Warn("adaptive layout config rejected", logging.Error(err))
	}
	e.pipeline.EnsureSizing(e.model)
	e.rank()
	e.view.Prune(e.model.HasNode)

	e.metrics.SetGraphSize(e.model.Len(), e.model.EdgeCount())
	e.bus.Publish(events.TopicGraphLoaded, events.GraphLoaded{
		Nodes:   e.model.Len(),
		Edges:   e.model.EdgeCount(),
		Dropped: diag.Dropped(),
		Merged:  diag.MergedEdges,
		Version: e.model.Version(),
	})
	e.logger.Info("graph loaded",
		logging.Nodes(e.model.Len()),
		logging.Edges(e.model.EdgeCount()),
		logging.Int("dropped", diag.Dropped()),
		logging.Int("merged", diag.MergedEdges),
		logging.Bool("spatial", e.Spatial()),
	)

	if e.geo != nil {
		e.geoBounds = s.Bounds
		e.geo.Resync()
		e.FitToView(false)
	} else if !e.model.IsEmpty() {
		e.sched.Start()
	}
	return diag
}

func (e *Explorer) rank() {
	if e.model.IsEmpty() {
		e.pipeline.SetImportant(nil)
		return
	}
	timer := logging.StartTimer(e.logger, "important nodes ranked", logging.String("method", e.cfg.Ranking.Method))
	ids, err := algorithms.Important(e.model, algorithms.Ranking(e.cfg.Ranking.Method), e.cfg.Ranking.Top)
	if err != nil {
		e.logger.Warn("importance ranking failed", logging.Error(err))
		ids = nil
	}
	e.pipeline.SetImportant(ids)
	timer.End(logging.Count(len(ids)))
}

// Resize reports the drawing area in pixels.
func (e *Explorer) Resize(width, height float64) {
	vp := camera.Viewport{Width: width, Height: height}
	e.cam.SetViewport(vp)
	e.surface.SetViewport(vp)
	if e.mapView != nil {
		e.mapView.Resize(width, height)
	}
	if e.fitPending && !vp.IsEmpty() {
		e.FitToView(false)
	}
}

// Frame advances the frame loop to now and renders into the surface. Until
// the surface is Initialized nothing is drawn; a failed surface returns its
// error.
func (e *Explorer) Frame(now time.Time) (*render.Scene, error) {
	e.drawn = nil
	e.loop.Tick(now)
	if d := e.drawn; d != nil {
		e.drawn = nil
		return d.scene, d.err
	}
	return e.render()
}

type drawResult struct {
	scene *render.Scene
	err   error
}

func (e *Explorer) render() (*render.Scene, error) {
	if e.surface.State() != render.Initialized {
		return nil, e.surface.Err()
	}
	return e.pipeline.Render(e.surface, e.model, e.view, e.cam.Transform())
}

// DrawTo plans the current view and paints it on c, bypassing the surface.
// The headless host uses it for one-shot exports.
func (e *Explorer) DrawTo(c render.Canvas) (*render.Scene, error) {
	scene := e.pipeline.Plan(e.model, e.view, e.cam.Transform(), e.cam.Viewport())
	return scene, e.pipeline.Draw(c, scene)
}

// Settle ticks the frame loop on a synthetic clock, step apart, until no
// frame callback is pending: the layout, camera animations and the surface
// bootstrap have all finished.
func (e *Explorer) Settle(ctx context.Context, start time.Time, step time.Duration) (int, error) {
	now := start
	frames := 0
	for e.loop.Pending() > 0 {
		if err := ctx.Err(); err != nil {
			e.sched.Stop()
			return frames, err
		}
		now = now.Add(step)
		e.loop.Tick(now)
		frames++
	}
	return frames, nil
}

// FitToView frames the whole graph. It is a no-op on an empty or one-node
// graph; a fit requested before the first Resize is applied once the
// viewport has a size.
func (e *Explorer) FitToView(animate bool) bool {
	if e.cam.Viewport().IsEmpty() {
		e.fitPending = !e.model.IsEmpty()
		return false
	}
	e.fitPending = false
	if e.geo != nil {
		return e.fitMap()
	}
	return e.cam.FitToBounds(e.model.FitBounds(), e.cfg.Camera.FitPadding, animate)
}

// CenterOnNode moves the view so id is at the center, at the focus scale.
func (e *Explorer) CenterOnNode(id string) error {
	n, ok := e.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if e.geo != nil {
		if n.Geo == nil {
			return fmt.Errorf("%w: %s has no coordinates", ErrUnknownNode, id)
		}
		e.mapView.SetCenter(*n.Geo)
		return nil
	}
	if !n.Seeded {
		return fmt.Errorf("%w: %s is not placed yet", ErrUnknownNode, id)
	}
	e.cam.CenterOn(n.Position, e.cfg.Camera.FocusScale, true)
	return nil
}

// RunLayout starts a layout run. It reports false while one is running and
// on an empty graph.
func (e *Explorer) RunLayout() (bool, error) {
	if e.geo != nil {
		return false, ErrSpatial
	}
	return e.sched.Start(), nil
}

// StopLayout stops the current run; it is safe at any time.
func (e *Explorer) StopLayout() { e.sched.Stop() }

// LayoutProgress returns the scheduler's progress.
func (e *Explorer) LayoutProgress() scheduler.Progress { return e.sched.Progress() }

// Select selects id; the empty id clears the selection.
func (e *Explorer) Select(id string) error {
	if id != "" && !e.model.HasNode(id) {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	e.view.Select(id)
	return nil
}

// HighlightNodes replaces the highlighted set with the known ids among ids
// and returns how many were kept.
func (e *Explorer) HighlightNodes(ids []string) int {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if e.model.HasNode(id) {
			known = append(known, id)
		}
	}
	e.view.SetHighlight(known)
	return len(known)
}

// ClearHighlight empties the highlighted set.
func (e *Explorer) ClearHighlight() { e.view.ClearHighlight() }

// ToggleIsolation isolates id, selecting it first when needed. With an
// empty id, or the id already in focus, isolation of the current selection
// is toggled. It returns whether isolation is now active.
func (e *Explorer) ToggleIsolation(id string) (bool, error) {
	if id != "" && id != e.view.Selected() {
		if err := e.Select(id); err != nil {
			return e.view.Isolation().Active, err
		}
		return true, e.view.SetIsolation(true)
	}
	return e.view.ToggleIsolation()
}

// Key runs the action bound to key. In the spatial variant, fit and center
// move the map rather than the camera.
func (e *Explorer) Key(key string) (interaction.Action, error) {
	if e.geo != nil {
		switch a := e.cfg.Interaction.Keys[key]; a {
		case interaction.ActionFit:
			e.FitToView(false)
			return a, nil
		case interaction.ActionCenterSelection:
			if e.view.Selected() == "" {
				return a, viewstate.ErrNoSelection
			}
			return a, e.CenterOnNode(e.view.Selected())
		case interaction.ActionRelayout:
			return a, ErrSpatial
		}
	}
	return e.input.Key(key)
}

// Retry restarts a failed surface.
func (e *Explorer) Retry() bool { return e.surface.Retry() }

// Close stops the layout, pending surface work and map following.
func (e *Explorer) Close() {
	e.sched.Stop()
	e.cam.CancelAnimation()
	e.surface.Close()
	if e.redrawID != 0 {
		e.loop.Cancel(e.redrawID)
		e.redrawID = 0
	}
	if e.geo != nil {
		e.geo.Close()
	}
}

// Accessors for hosts and tests.

func (e *Explorer) Model() *graphmodel.Model { return e.model }
func (e *Explorer) Camera() *camera.Controller { return e.cam }
func (e *Explorer) View() *viewstate.State { return e.view }
func (e *Explorer) Scheduler() *scheduler.Scheduler { return e.sched }
func (e *Explorer) Pipeline() *render.Pipeline { return e.pipeline }
func (e *Explorer) Surface() *render.Surface { return e.surface }
func (e *Explorer) Input() *interaction.Controller { return e.input }
func (e *Explorer) Loop() *frame.Loop { return e.loop }
func (e *Explorer) Bus() *events.Bus { return e.bus }
func (e *Explorer) MapView() *geosync.MapView { return e.mapView }
func (e *Explorer) Geo() *geosync.Sync { return e.geo }
func (e *Explorer) Config() config.Config { return e.cfg }
func (e *Explorer) LastScene() *render.Scene { return e.pipeline.LastScene() }
func (e *Explorer) Diagnostics() graphmodel.Diagnostics { return e.model.Diagnostics() }

func (e *Explorer) publishView(s *viewstate.State, c viewstate.Change) {
	if c.Selection {
		e.bus.Publish(events.TopicSelection, events.SelectionChanged{NodeID: s.Selected(), Previous: e.selected})
		e.selected = s.Selected()
	}
	if c.Hover {
		e.bus.Publish(events.TopicHover, events.HoverChanged{NodeID: s.Hovered()})
	}
	if c.Isolation {
		iso := s.Isolation()
		e.bus.Publish(events.TopicIsolation, events.IsolationChanged{Active: iso.Active, Focus: iso.Focus})
	}
	if c.Highlight {
		e.bus.Publish(events.TopicHighlight, events.HighlightChanged{NodeIDs: s.Highlighted()})
	}
}
