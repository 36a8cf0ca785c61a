// Package camera owns the view transform that maps layout space to screen
// space (screen = layout*scale + translate) and animates changes to it.
package camera

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Transform maps layout coordinates to screen coordinates.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// Identity is the unscaled, untranslated transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ToScreen maps a layout point to the screen.
func (t Transform) ToScreen(p graphmodel.Point) graphmodel.Point {
	return graphmodel.Point{X: p.X*t.Scale + t.TranslateX, Y: p.Y*t.Scale + t.TranslateY}
}

// ToLayout maps a screen point back to layout space.
func (t Transform) ToLayout(p graphmodel.Point) graphmodel.Point {
	return graphmodel.Point{X: (p.X - t.TranslateX) / t.Scale, Y: (p.Y - t.TranslateY) / t.Scale}
}

// Ratio is the inverse of the scale: how many layout units one screen
// unit covers. Large ratios mean zoomed out.
func (t Transform) Ratio() float64 {
	return 1 / t.Scale
}

// IsValid reports whether the transform has a positive finite scale and a
// finite translation.
func (t Transform) IsValid() bool {
	return t.Scale > 0 && !math.IsInf(t.Scale, 0) &&
		graphmodel.Point{X: t.TranslateX, Y: t.TranslateY}.IsFinite()
}

// Viewport is the size of the drawing surface in screen units.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the viewport midpoint.
func (v Viewport) Center() graphmodel.Point {
	return graphmodel.Point{X: v.Width / 2, Y: v.Height / 2}
}

// IsEmpty reports whether either side is non-positive.
func (v Viewport) IsEmpty() bool {
	return !(v.Width > 0) || !(v.Height > 0)
}

// centered returns the transform that puts layout point c at the viewport
// center with the given scale.
func centered(c graphmodel.Point, scale float64, v Viewport) Transform {
	vc := v.Center()
	return Transform{
		Scale:      scale,
		TranslateX: vc.X - c.X*scale,
		TranslateY: vc.Y - c.Y*scale,
	}
}

// FitScale is the scale at which bounds, grown by paddingRatio, fit the
// viewport on its shorter side.
func FitScale(bounds graphmodel.Rect, v Viewport, paddingRatio float64) float64 {
	extent := math.Max(bounds.Width(), bounds.Height())
	return math.Min(v.Width, v.Height) / (extent * (1 + paddingRatio))
}
