// Package render plans and draws the graph each frame: edges first, then
// nodes, then labels, with focus emphasis, isolation filtering and
// level-of-detail rules applied while planning.
package render

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

// Options carries the pipeline's optional collaborators.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Palette *Palette
}

// Pipeline turns model, view state and camera into a Scene and draws it.
type Pipeline struct {
	cfg     Config
	palette Palette
	logger  logging.Logger
	metrics *metrics.Registry

	important map[string]struct{}

	sizedModel   *graphmodel.Model
	sizedVersion uint64

	last *Scene
}

// NewPipeline validates cfg and returns a pipeline.
func NewPipeline(cfg Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render config: %w", err)
	}
	p := &Pipeline{
		cfg:       cfg,
		palette:   DefaultPalette(),
		logger:    logging.OrNop(opts.Logger).With(logging.Component("render")),
		metrics:   opts.Metrics,
		important: make(map[string]struct{}),
	}
	if opts.Palette != nil {
		p.palette = *opts.Palette
	}
	return p, nil
}

// Config returns the active configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// SetConfig replaces the configuration. Node radii are recomputed on the
// next frame.
func (p *Pipeline) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid render config: %w", err)
	}
	p.cfg = cfg
	p.sizedModel = nil
	return nil
}

// Palette returns the active palette.
func (p *Pipeline) Palette() Palette { return p.palette }

// SetImportant replaces the set of nodes that always get a label. Only the
// first ImportantLabels ids are kept.
func (p *Pipeline) SetImportant(ids []string) {
	if len(ids) > p.cfg.ImportantLabels {
		ids = ids[:p.cfg.ImportantLabels]
	}
	p.important = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		p.important[id] = struct{}{}
	}
}

// IsImportant reports whether id is in the important set.
func (p *Pipeline) IsImportant(id string) bool {
	_, ok := p.important[id]
	return ok
}

// EnsureSizing recomputes node radii from counts when the model was
// reloaded or the size range changed since the last call.
func (p *Pipeline) EnsureSizing(m *graphmodel.Model) {
	if m == nil || (m == p.sizedModel && m.Version() == p.sizedVersion) {
		return
	}
	m.ApplySizing(p.cfg.NodeMinSize, p.cfg.NodeMaxSize)
	p.sizedModel = m
	p.sizedVersion = m.Version()
}

// Plan builds the scene for one frame without drawing it.
func (p *Pipeline) Plan(m *graphmodel.Model, view *viewstate.State, t camera.Transform, vp camera.Viewport) *Scene {
	p.EnsureSizing(m)
	scene := p.plan(m, view, t, vp)
	p.last = scene
	return scene
}

// LastScene returns the most recently planned scene, nil before the first.
// Hit-testing reads it so picks match what is on screen.
func (p *Pipeline) LastScene() *Scene { return p.last }

// Draw paints scene onto c and records frame metrics.
func (p *Pipeline) Draw(c Canvas, scene *Scene) error {
	start := time.Now()
	if err := draw(c, scene, p.palette); err != nil {
		return err
	}
	p.metrics.RecordFrame(c.Name(), time.Since(start), len(scene.Nodes), len(scene.Edges), len(scene.Labels))
	return nil
}

// Render plans a frame and draws it on the surface. Nothing is drawn into
// a surface that is not Initialized; the surface's error is returned. A
// draw error fails the surface.
func (p *Pipeline) Render(s *Surface, m *graphmodel.Model, view *viewstate.State, t camera.Transform) (*Scene, error) {
	c, err := s.Canvas()
	if err != nil {
		return nil, err
	}
	scene := p.Plan(m, view, t, s.Viewport())
	if err := p.Draw(c, scene); err != nil {
		s.Fail("draw", err)
		return scene, s.Err()
	}
	return scene, nil
}
