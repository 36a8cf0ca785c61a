package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// ErrNilModel is returned by NewEngine when no model is supplied.
var ErrNilModel = errors.New("layout: nil graph model")

// Options carries the engine's optional collaborators.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// StepStats describes the iterations executed by one Step call.
type StepStats struct {
	Iterations int
	// MeanDisplacement is the average distance a node moved during the
	// last iteration of the call.
	MeanDisplacement float64
	NonFiniteResets  int
	Approximated     bool
}

type edgeRef struct {
	source, target int
	weight         float64
}

// Engine runs the force simulation on a graphmodel.Model, mutating node
// positions in place. It keeps per-node speed state between Step calls and
// resynchronizes with the model whenever the model is reloaded.
type Engine struct {
	model   *graphmodel.Model
	cfg     Config
	logger  logging.Logger
	metrics *metrics.Registry
	rng     *rand.Rand

	version    uint64
	nodes      []*graphmodel.Node
	mass       []float64
	dx, dy     []float64
	oldDx      []float64
	oldDy      []float64
	lastFinite []graphmodel.Point
	edges      []edgeRef

	iterations int
	resets     int
}

// NewEngine creates an engine over model. The configuration is validated.
func NewEngine(model *graphmodel.Model, cfg Config, opts Options) (*Engine, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	e := &Engine{
		model:   model,
		cfg:     cfg,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("layout")),
		metrics: opts.Metrics,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	e.sync()
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig swaps the configuration. Speed state is kept so a running layout
// continues smoothly.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid layout config: %w", err)
	}
	if cfg.Seed != e.cfg.Seed {
		e.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	e.cfg = cfg
	return nil
}

// Model returns the model the engine mutates.
func (e *Engine) Model() *graphmodel.Model { return e.model }

// Iterations is the number of force iterations run since the engine was
// created or last reset.
func (e *Engine) Iterations() int { return e.iterations }

// NonFiniteResets is the number of positions reverted so far.
func (e *Engine) NonFiniteResets() int { return e.resets }

// Reset clears accumulated speed state and counters. Positions are kept.
func (e *Engine) Reset() {
	for i := range e.dx {
		e.dx[i], e.dy[i], e.oldDx[i], e.oldDy[i] = 0, 0, 0, 0
	}
	e.iterations = 0
	e.resets = 0
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
}

// Seed places every node that has no position yet and reports how many were
// placed. Step seeds implicitly; hosts call Seed to show a first frame
// before any iteration has run.
func (e *Engine) Seed() int {
	e.sync()
	return e.seedUnplaced()
}

// UsesApproximation reports whether repulsion currently runs through the
// Barnes-Hut quadtree.
func (e *Engine) UsesApproximation() bool {
	return e.cfg.BarnesHutTheta > 0 && len(e.nodes) > e.cfg.BarnesHutThreshold
}

// sync rebuilds per-node state when the model was reloaded.
func (e *Engine) sync() {
	if e.nodes != nil && e.version == e.model.Version() {
		return
	}
	e.version = e.model.Version()
	e.nodes = e.model.Nodes()
	n := len(e.nodes)

	e.mass = make([]float64, n)
	e.dx = make([]float64, n)
	e.dy = make([]float64, n)
	e.oldDx = make([]float64, n)
	e.oldDy = make([]float64, n)
	e.lastFinite = make([]graphmodel.Point, n)

	index := make(map[string]int, n)
	for i, node := range e.nodes {
		index[node.ID] = i
		e.mass[i] = 1 + float64(e.model.LinkDegree(node.ID))
		e.lastFinite[i] = node.Position
	}

	modelEdges := e.model.Edges()
	e.edges = make([]edgeRef, 0, len(modelEdges))
	for _, edge := range modelEdges {
		e.edges = append(e.edges, edgeRef{
			source: index[edge.Source],
			target: index[edge.Target],
			weight: edge.Weight,
		})
	}

	e.logger.Debug("engine synchronized",
		logging.Nodes(n),
		logging.Edges(len(e.edges)),
		logging.Bool("approximate", e.UsesApproximation()),
	)
}

// Step runs up to n force iterations. An empty model is a no-op.
func (e *Engine) Step(n int) StepStats {
	e.sync()
	stats := StepStats{Approximated: e.UsesApproximation()}
	if len(e.nodes) == 0 || n <= 0 {
		return stats
	}
	e.seedUnplaced()

	before := e.resets
	for i := 0; i < n; i++ {
		stats.MeanDisplacement = e.iterate()
		stats.Iterations++
	}
	e.iterations += stats.Iterations
	stats.NonFiniteResets = e.resets - before

	if stats.NonFiniteResets > 0 {
		e.logger.Debug("reverted non-finite positions", logging.Count(stats.NonFiniteResets))
		e.metrics.RecordNonFiniteResets(stats.NonFiniteResets)
	}
	return stats
}

// iterate runs one iteration and returns the mean node displacement.
func (e *Engine) iterate() float64 {
	e.separateCoincident()

	for i := range e.nodes {
		e.oldDx[i], e.oldDy[i] = e.dx[i], e.dy[i]
		e.dx[i], e.dy[i] = 0, 0
	}

	if e.UsesApproximation() {
		if err := e.repelApproximate(); err != nil {
			e.logger.Debug("falling back to exact repulsion", logging.Error(err))
			e.repelExact()
		}
	} else {
		e.repelExact()
	}
	e.applyGravity()
	e.attract()
	return e.integrate()
}

func (e *Engine) repelExact() {
	k := e.cfg.ScalingRatio
	for i := 0; i < len(e.nodes); i++ {
		pi := e.nodes[i].Position
		for j := i + 1; j < len(e.nodes); j++ {
			pj := e.nodes[j].Position
			xd := pi.X - pj.X
			yd := pi.Y - pj.Y
			d2 := xd*xd + yd*yd
			if d2 == 0 {
				continue
			}
			// magnitude k*m1*m2/d along the unit vector
			factor := k * e.mass[i] * e.mass[j] / d2
			e.dx[i] += xd * factor
			e.dy[i] += yd * factor
			e.dx[j] -= xd * factor
			e.dy[j] -= yd * factor
		}
	}
}

// applyGravity pulls every node toward the centroid of the layout.
func (e *Engine) applyGravity() {
	if e.cfg.Gravity == 0 {
		return
	}
	c := centroid(e.nodes)
	for i, node := range e.nodes {
		xd := node.Position.X - c.X
		yd := node.Position.Y - c.Y
		d := math.Hypot(xd, yd)
		if d == 0 {
			continue
		}
		factor := e.cfg.Gravity * e.mass[i]
		if !e.cfg.StrongGravity {
			factor /= d
		}
		e.dx[i] -= xd * factor
		e.dy[i] -= yd * factor
	}
}

func (e *Engine) attract() {
	coefficient := e.cfg.LinkStrength
	for _, edge := range e.edges {
		ps := e.nodes[edge.source].Position
		pt := e.nodes[edge.target].Position
		xd := ps.X - pt.X
		yd := ps.Y - pt.Y

		w := e.weightFactor(edge.weight)
		var factor float64
		if e.cfg.LinLogMode {
			d := math.Hypot(xd, yd)
			if d == 0 {
				continue
			}
			factor = -coefficient * w * math.Log1p(d) / d
		} else {
			factor = -coefficient * w
		}
		e.dx[edge.source] += xd * factor
		e.dy[edge.source] += yd * factor
		e.dx[edge.target] -= xd * factor
		e.dy[edge.target] -= yd * factor
	}
}

func (e *Engine) weightFactor(w float64) float64 {
	switch e.cfg.EdgeWeightInfluence {
	case 0:
		return 1
	case 1:
		return w
	default:
		return math.Pow(w, e.cfg.EdgeWeightInfluence)
	}
}

// integrate moves every node with its adaptive local speed: a node whose
// force keeps flipping direction (swinging) slows down, one pushed
// consistently (traction) speeds up.
func (e *Engine) integrate() float64 {
	var total float64
	for i, node := range e.nodes {
		sx := e.oldDx[i] - e.dx[i]
		sy := e.oldDy[i] - e.dy[i]
		swinging := e.mass[i] * math.Sqrt(sx*sx+sy*sy)

		tx := e.oldDx[i] + e.dx[i]
		ty := e.oldDy[i] + e.dy[i]
		traction := math.Sqrt(tx*tx+ty*ty) / 2

		speed := 0.1 * math.Log1p(traction) / (1 + math.Sqrt(swinging))
		step := speed / e.cfg.SlowDown

		next := graphmodel.Point{
			X: node.Position.X + e.dx[i]*step,
			Y: node.Position.Y + e.dy[i]*step,
		}
		if !next.IsFinite() {
			node.Position = e.lastFinite[i]
			e.dx[i], e.dy[i], e.oldDx[i], e.oldDy[i] = 0, 0, 0, 0
			e.resets++
			continue
		}
		total += graphmodel.Distance(node.Position, next)
		node.Position = next
		e.lastFinite[i] = next
	}
	return total / float64(len(e.nodes))
}

// separateCoincident nudges nodes that share a position with another node.
// The jitter comes from the seeded RNG so runs stay reproducible.
func (e *Engine) separateCoincident() {
	seen := make(map[graphmodel.Point]struct{}, len(e.nodes))
	for i, node := range e.nodes {
		if _, dup := seen[node.Position]; dup {
			angle := e.rng.Float64() * 2 * math.Pi
			node.Position.X += math.Cos(angle) * jitterRadius
			node.Position.Y += math.Sin(angle) * jitterRadius
			e.lastFinite[i] = node.Position
		}
		seen[node.Position] = struct{}{}
	}
}

const jitterRadius = 0.01
