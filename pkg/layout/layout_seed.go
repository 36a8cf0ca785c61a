package layout

import (
	"math"
	"sort"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// seedSpread is the disc radius used for n nodes: wide enough that the
// first iterations are dominated by attraction rather than by repulsion
// between crowded neighbors.
func seedSpread(n int) float64 {
	return 10 * math.Sqrt(float64(n))
}

// seedUnplaced gives every unseeded node a position according to the
// configured strategy. Already placed nodes are untouched.
func (e *Engine) seedUnplaced() int {
	unplaced := make([]int, 0)
	for i, node := range e.nodes {
		if !node.Seeded || !node.Position.IsFinite() {
			unplaced = append(unplaced, i)
		}
	}
	if len(unplaced) == 0 {
		return 0
	}

	center := seededCentroid(e.nodes)
	radius := seedSpread(len(e.nodes))

	switch e.cfg.Seeding {
	case SeedCircular:
		e.seedCircular(unplaced, center, radius)
	case SeedRadial:
		e.seedRadial(unplaced, center, radius)
	default:
		e.seedRandom(unplaced, center, radius)
	}

	for _, i := range unplaced {
		e.nodes[i].Seeded = true
		e.lastFinite[i] = e.nodes[i].Position
	}
	e.logger.Debug("seeded nodes",
		logging.Count(len(unplaced)),
		logging.String("strategy", string(e.cfg.Seeding)),
	)
	return len(unplaced)
}

func (e *Engine) seedRandom(unplaced []int, center graphmodel.Point, radius float64) {
	for _, i := range unplaced {
		angle := e.rng.Float64() * 2 * math.Pi
		r := radius * math.Sqrt(e.rng.Float64())
		e.nodes[i].Position = graphmodel.Point{
			X: center.X + r*math.Cos(angle),
			Y: center.Y + r*math.Sin(angle),
		}
	}
}

// seedCircular arranges nodes in a circle
func (e *Engine) seedCircular(unplaced []int, center graphmodel.Point, radius float64) {
	if len(unplaced) == 1 {
		e.nodes[unplaced[0]].Position = center
		return
	}
	angleStep := 2 * math.Pi / float64(len(unplaced))

	for k, i := range unplaced {
		angle := float64(k) * angleStep
		e.nodes[i].Position = graphmodel.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
}

// seedRadial builds breadth-first levels from the best connected unplaced
// node and puts level k on the k-th ring.
func (e *Engine) seedRadial(unplaced []int, center graphmodel.Point, radius float64) {
	pending := make(map[string]int, len(unplaced))
	root := unplaced[0]
	for _, i := range unplaced {
		pending[e.nodes[i].ID] = i
		if e.mass[i] > e.mass[root] {
			root = i
		}
	}

	// Build levels using BFS
	levels := make([][]int, 0)
	visited := make(map[int]bool)
	currentLevel := []int{root}
	visited[root] = true

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]int, 0)

		for _, i := range currentLevel {
			for _, neighbor := range sortedNeighbors(e.model.NeighborsOf(e.nodes[i].ID)) {
				j, ok := pending[neighbor]
				if !ok || visited[j] {
					continue
				}
				visited[j] = true
				nextLevel = append(nextLevel, j)
			}
		}

		currentLevel = nextLevel
	}

	// Add unvisited nodes to an outer ring
	outer := make([]int, 0)
	for _, i := range unplaced {
		if !visited[i] {
			outer = append(outer, i)
		}
	}
	if len(outer) > 0 {
		levels = append(levels, outer)
	}

	// keep the center free when part of the layout already exists
	inner := 0
	if len(unplaced) < len(e.nodes) {
		inner = 1
	}
	ringStep := radius / float64(len(levels)+inner)
	for levelIdx, level := range levels {
		r := ringStep * float64(levelIdx+inner)
		if r == 0 && len(level) == 1 {
			e.nodes[level[0]].Position = center
			continue
		}
		if r == 0 {
			r = ringStep / 2
		}
		// offset every ring a little so spokes do not line up
		phase := float64(levelIdx) * 0.5
		spacing := 2 * math.Pi / float64(len(level))
		for k, i := range level {
			angle := phase + spacing*float64(k)
			e.nodes[i].Position = graphmodel.Point{
				X: center.X + r*math.Cos(angle),
				Y: center.Y + r*math.Sin(angle),
			}
		}
	}
}

func sortedNeighbors(set graphmodel.NeighborSet) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
