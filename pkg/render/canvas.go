package render

import (
	"image/color"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Canvas is a drawing backend. Coordinates are screen units. A frame is
// Begin, any number of primitives, then End.
type Canvas interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	Begin(width, height int, background color.RGBA) error
	Line(from, to graphmodel.Point, width float64, c color.RGBA)
	Circle(center graphmodel.Point, r float64, fill color.RGBA)
	Ring(center graphmodel.Point, r, width float64, c color.RGBA)
	Text(at graphmodel.Point, s string, size float64, c color.RGBA)
	End() error
}

// draw paints scene onto c in draw-list order.
func draw(c Canvas, scene *Scene, palette Palette) error {
	if err := c.Begin(scene.Width, scene.Height, scene.Background); err != nil {
		return err
	}
	for _, e := range scene.Edges {
		c.Line(e.From, e.To, e.Width, withAlpha(e.Color, e.Opacity))
	}
	for _, n := range scene.Nodes {
		c.Circle(n.Center, n.Radius, withAlpha(n.Color, n.Opacity))
		switch {
		case n.Selected:
			c.Ring(n.Center, n.Radius+2, 2, palette.Selection)
		case n.Hovered:
			c.Ring(n.Center, n.Radius+1.5, 1.5, palette.Hover)
		}
	}
	for _, l := range scene.Labels {
		c.Text(l.At, l.Text, l.Size, withAlpha(l.Color, l.Opacity))
	}
	return c.End()
}
