package layout

import (
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// particle adapts a node to barneshut.Particle2. Mass is 1 + degree, the
// same mass the exact pass uses, so aggregated tiles repel as the sum of
// their members.
type particle struct {
	pos  r2.Vec
	mass float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

// repelApproximate computes repulsion through a Barnes-Hut quadtree with
// the configured theta.
func (e *Engine) repelApproximate() error {
	particles := make([]barneshut.Particle2, len(e.nodes))
	for i, node := range e.nodes {
		particles[i] = &particle{
			pos:  r2.Vec{X: node.Position.X, Y: node.Position.Y},
			mass: e.mass[i],
		}
	}

	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return err
	}

	k := e.cfg.ScalingRatio
	repel := func(p1, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		d2 := r2.Norm2(v)
		if d2 == 0 {
			return r2.Vec{}
		}
		// v points from p1 toward the other mass; repulsion acts against it
		return r2.Scale(-k*m1*m2/d2, v)
	}

	for i, p := range particles {
		f := plane.ForceOn(p, e.cfg.BarnesHutTheta, repel)
		e.dx[i] += f.X
		e.dy[i] += f.Y
	}
	return nil
}
