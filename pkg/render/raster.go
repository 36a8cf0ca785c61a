package render

import (
	"errors"
	"image"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

var errNoFrame = errors.New("no frame has been drawn")

// RasterCanvas draws into an in-memory RGBA image with gg.
type RasterCanvas struct {
	dc *gg.Context
}

// NewRasterCanvas returns an empty raster backend.
func NewRasterCanvas() *RasterCanvas {
	return &RasterCanvas{}
}

func (r *RasterCanvas) Name() string { return "raster" }

func (r *RasterCanvas) Begin(width, height int, background color.RGBA) error {
	if width <= 0 || height <= 0 {
		return &SurfaceError{Op: "begin", Backend: r.Name(), Cause: ErrSurfaceUnavailable}
	}
	if r.dc == nil || r.dc.Width() != width || r.dc.Height() != height {
		r.dc = gg.NewContext(width, height)
	}
	r.dc.SetColor(background)
	r.dc.Clear()
	return nil
}

func (r *RasterCanvas) Line(from, to graphmodel.Point, width float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

func (r *RasterCanvas) Circle(center graphmodel.Point, radius float64, fill color.RGBA) {
	r.dc.SetColor(fill)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.Fill()
}

func (r *RasterCanvas) Ring(center graphmodel.Point, radius, width float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.Stroke()
}

// Text draws s centered horizontally on at. gg's built-in face has a fixed
// size, so size is ignored.
func (r *RasterCanvas) Text(at graphmodel.Point, s string, _ float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, 0.5)
}

func (r *RasterCanvas) End() error { return nil }

// Image returns the last frame, nil before the first Begin.
func (r *RasterCanvas) Image() image.Image {
	if r.dc == nil {
		return nil
	}
	return r.dc.Image()
}

// EncodePNG writes the last frame as PNG.
func (r *RasterCanvas) EncodePNG(w io.Writer) error {
	if r.dc == nil {
		return errNoFrame
	}
	return r.dc.EncodePNG(w)
}

// SavePNG writes the last frame to path.
func (r *RasterCanvas) SavePNG(path string) error {
	if r.dc == nil {
		return errNoFrame
	}
	return r.dc.SavePNG(path)
}
