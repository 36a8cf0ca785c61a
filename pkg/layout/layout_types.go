// Package layout implements the ForceAtlas2-style force-directed layout that
// positions graphmodel nodes, plus the anti-overlap pass and initial seeding.
package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// SeedStrategy selects how unplaced nodes get their first position.
type SeedStrategy string

const (
	// SeedRandom scatters nodes uniformly within a disc.
	SeedRandom SeedStrategy = "random"
	// SeedCircular arranges nodes evenly on a circle in load order.
	SeedCircular SeedStrategy = "circular"
	// SeedRadial places breadth-first levels from the best connected node on
	// concentric rings.
	SeedRadial SeedStrategy = "radial"
)

// Config configures the force simulation and how the scheduler drives it
type Config struct {
	TotalIterations int `yaml:"total_iterations"` // Iteration budget of one run
	BatchSize       int `yaml:"batch_size"`       // Iterations per frame

	ScalingRatio        float64 `yaml:"scaling_ratio"` // Repulsion strength
	Gravity             float64 `yaml:"gravity"`
	StrongGravity       bool    `yaml:"strong_gravity"`
	LinkStrength        float64 `yaml:"link_strength"` // Attraction coefficient
	EdgeWeightInfluence float64 `yaml:"edge_weight_influence"`
	LinLogMode          bool    `yaml:"linlog_mode"`
	SlowDown            float64 `yaml:"slow_down"` // Damping, >= 1

	// BarnesHutTheta of 0 keeps repulsion exact. Above BarnesHutThreshold
	// nodes and with a positive theta the quadtree approximation is used.
	BarnesHutTheta     float64 `yaml:"barnes_hut_theta"`
	BarnesHutThreshold int     `yaml:"barnes_hut_threshold"`

	AdjustOverlap        bool    `yaml:"adjust_overlap"`
	OverlapMargin        float64 `yaml:"overlap_margin"`
	OverlapMaxIterations int     `yaml:"overlap_max_iterations"`

	Seeding SeedStrategy `yaml:"seeding"`
	Seed    int64        `yaml:"seed"`

	// Timeout stops a run after this much wall-clock time. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used for mid-sized graphs.
func DefaultConfig() Config {
	return Config{
		TotalIterations:      300,
		BatchSize:            20,
		ScalingRatio:         10,
		Gravity:              0.3,
		LinkStrength:         1,
		EdgeWeightInfluence:  1,
		SlowDown:             1 + math.Log(500),
		BarnesHutTheta:       0.5,
		BarnesHutThreshold:   200,
		AdjustOverlap:        true,
		OverlapMargin:        2,
		OverlapMaxIterations: 50,
		Seeding:              SeedRandom,
		Seed:                 1,
	}
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	return validation.NewConfigValidator("layout").
		NonNegative("total_iterations", c.TotalIterations).
		Positive("batch_size", c.BatchSize).
		PositiveFloat("scaling_ratio", c.ScalingRatio).
		NonNegativeFloat("gravity", c.Gravity).
		NonNegativeFloat("link_strength", c.LinkStrength).
		NonNegativeFloat("edge_weight_influence", c.EdgeWeightInfluence).
		Custom("slow_down", func() error {
			if math.IsNaN(c.SlowDown) || c.SlowDown < 1 {
				return fmt.Errorf("must be >= 1, got %v", c.SlowDown)
			}
			return nil
		}).
		RangeFloat("barnes_hut_theta", c.BarnesHutTheta, 0, 2).
		NonNegative("barnes_hut_threshold", c.BarnesHutThreshold).
		NonNegativeFloat("overlap_margin", c.OverlapMargin).
		When(c.AdjustOverlap, func(v *validation.ConfigValidator) {
			v.Positive("overlap_max_iterations", c.OverlapMaxIterations)
		}).
		OneOf("seeding", string(c.Seeding), []string{string(SeedRandom), string(SeedCircular), string(SeedRadial)}).
		NonNegativeDuration("timeout", c.Timeout).
		Validate()
}

// sizeBucket holds the tuned parameters for graphs up to maxNodes.
type sizeBucket struct {
	maxNodes     int
	gravity      float64
	scalingRatio float64
	batchSize    int
	iterations   int
	theta        float64
}

// Gravity and batch size strictly decrease from one bucket to the next while
// repulsion and the approximation factor grow.
var sizeBuckets = []sizeBucket{
	{maxNodes: 50, gravity: 1.0, scalingRatio: 2, batchSize: 50, iterations: 500, theta: 0},
	{maxNodes: 200, gravity: 0.5, scalingRatio: 5, batchSize: 30, iterations: 400, theta: 0},
	{maxNodes: 500, gravity: 0.3, scalingRatio: 10, batchSize: 20, iterations: 300, theta: 0.5},
	{maxNodes: 1000, gravity: 0.15, scalingRatio: 20, batchSize: 10, iterations: 250, theta: 0.8},
	{maxNodes: 2000, gravity: 0.08, scalingRatio: 40, batchSize: 5, iterations: 200, theta: 1.0},
	{maxNodes: math.MaxInt, gravity: 0.05, scalingRatio: 60, batchSize: 2, iterations: 150, theta: 1.2},
}

// denseEdgeRatio is the edges-per-node ratio above which LinLog attraction is
// switched on; it spreads hub-heavy co-occurrence graphs into clusters.
const denseEdgeRatio = 5.0

// Adaptive derives a configuration from the graph size. Values not covered
// by the size buckets come from DefaultConfig.
func Adaptive(nodes, edges int) Config {
	cfg := DefaultConfig()
	b := bucketFor(nodes)

	cfg.Gravity = b.gravity
	cfg.ScalingRatio = b.scalingRatio
	cfg.BatchSize = b.batchSize
	cfg.TotalIterations = b.iterations
	cfg.BarnesHutTheta = b.theta
	cfg.SlowDown = 1 + math.Log(math.Max(1, float64(nodes)))
	cfg.LinLogMode = nodes > 0 && float64(edges)/float64(nodes) > denseEdgeRatio
	if nodes > 1000 {
		cfg.OverlapMaxIterations = 20
	}
	return cfg
}

func bucketFor(nodes int) sizeBucket {
	for _, b := range sizeBuckets {
		if nodes <= b.maxNodes {
			return b
		}
	}
	return sizeBuckets[len(sizeBuckets)-1]
}
