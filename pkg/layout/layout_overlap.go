package layout

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// OverlapStats describes one AdjustOverlap call.
type OverlapStats struct {
	Iterations int
	// Resolved counts pair separations applied across all iterations.
	Resolved int
	// Remaining is the number of overlapping pairs left afterwards.
	Remaining int
}

// Converged reports whether no overlap remains.
func (s OverlapStats) Converged() bool { return s.Remaining == 0 }

type cellKey struct{ x, y int }

// AdjustOverlap pushes apart every pair of nodes whose circles (radius plus
// the configured margin) intersect, proportionally to the overlap depth.
// It stops as soon as nothing overlaps or after maxIterations.
func (e *Engine) AdjustOverlap(maxIterations int) OverlapStats {
	e.sync()
	var stats OverlapStats
	if len(e.nodes) < 2 {
		return stats
	}

	for stats.Iterations < maxIterations {
		moved := e.overlapPass(true)
		if moved == 0 {
			break
		}
		stats.Iterations++
		stats.Resolved += moved
	}
	stats.Remaining = e.overlapPass(false)

	e.metrics.RecordOverlapsResolved(stats.Resolved)
	if stats.Resolved > 0 {
		e.logger.Debug("overlap pass",
			logging.Iterations(stats.Iterations),
			logging.Int("resolved", stats.Resolved),
			logging.Int("remaining", stats.Remaining),
		)
	}
	return stats
}

// overlapPass finds overlapping pairs through a uniform grid whose cell
// size is the largest possible contact distance, so only the 3x3
// neighborhood of a cell needs checking. With apply set the pairs are
// separated; the pair count is returned either way.
func (e *Engine) overlapPass(apply bool) int {
	margin := e.cfg.OverlapMargin
	maxRadius := 0.0
	for _, n := range e.nodes {
		maxRadius = math.Max(maxRadius, n.Radius)
	}
	cell := 2*maxRadius + margin
	if cell <= 0 {
		return 0
	}

	grid := make(map[cellKey][]int, len(e.nodes))
	for i, n := range e.nodes {
		k := cellOf(n.Position, cell)
		grid[k] = append(grid[k], i)
	}

	overlaps := 0
	for i, a := range e.nodes {
		home := cellOf(a.Position, cell)
		for gx := home.x - 1; gx <= home.x+1; gx++ {
			for gy := home.y - 1; gy <= home.y+1; gy++ {
				for _, j := range grid[cellKey{gx, gy}] {
					if j <= i {
						continue
					}
					b := e.nodes[j]
					need := a.Radius + b.Radius + margin
					xd := b.Position.X - a.Position.X
					yd := b.Position.Y - a.Position.Y
					d := math.Hypot(xd, yd)
					if d >= need {
						continue
					}
					overlaps++
					if !apply {
						continue
					}
					if d == 0 {
						angle := e.rng.Float64() * 2 * math.Pi
						xd, yd, d = math.Cos(angle), math.Sin(angle), 1
					}
					push := (need - d) / 2
					ux, uy := xd/d*push, yd/d*push
					a.Position.X -= ux
					a.Position.Y -= uy
					b.Position.X += ux
					b.Position.Y += uy
					e.lastFinite[i] = a.Position
					e.lastFinite[j] = b.Position
				}
			}
		}
	}
	return overlaps
}

func cellOf(p graphmodel.Point, size float64) cellKey {
	return cellKey{int(math.Floor(p.X / size)), int(math.Floor(p.Y / size))}
}
