package layout

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// centroid returns the mean position of nodes, the origin for none.
func centroid(nodes []*graphmodel.Node) graphmodel.Point {
	if len(nodes) == 0 {
		return graphmodel.Point{}
	}
	var c graphmodel.Point
	for _, n := range nodes {
		c.X += n.Position.X
		c.Y += n.Position.Y
	}
	c.X /= float64(len(nodes))
	c.Y /= float64(len(nodes))
	return c
}

// seededCentroid is the centroid of placed nodes only, so nodes added by a
// reload are scattered around the existing layout.
func seededCentroid(nodes []*graphmodel.Node) graphmodel.Point {
	var c graphmodel.Point
	n := 0
	for _, node := range nodes {
		if !node.Seeded || !node.Position.IsFinite() {
			continue
		}
		c.X += node.Position.X
		c.Y += node.Position.Y
		n++
	}
	if n == 0 {
		return graphmodel.Point{}
	}
	c.X /= float64(n)
	c.Y /= float64(n)
	return c
}

// NormalizePositions maps every placed node into the rect [padding,
// width-padding] x [padding, height-padding], preserving aspect per axis.
// Collapsed extents are treated as one unit wide.
func NormalizePositions(nodes []*graphmodel.Node, width, height, padding float64) map[string]graphmodel.Point {
	positions := make(map[string]graphmodel.Point, len(nodes))
	if len(nodes) == 0 {
		return positions
	}

	// Find bounds
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64

	for _, n := range nodes {
		if !n.Seeded {
			continue
		}
		minX = math.Min(minX, n.Position.X)
		maxX = math.Max(maxX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxY = math.Max(maxY, n.Position.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY

	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	// Scale to fit bounds with padding
	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	for _, n := range nodes {
		if !n.Seeded {
			continue
		}
		positions[n.ID] = graphmodel.Point{
			X: padding + ((n.Position.X-minX)/rangeX)*targetWidth,
			Y: padding + ((n.Position.Y-minY)/rangeY)*targetHeight,
		}
	}

	return positions
}
