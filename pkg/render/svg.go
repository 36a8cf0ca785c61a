package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// SVGCanvas writes each frame as a standalone SVG document to w. svgo works
// in integer units, so coordinates are rounded.
type SVGCanvas struct {
	w   io.Writer
	buf bytes.Buffer
	doc *svg.SVG
}

// NewSVGCanvas returns an SVG backend writing frames to w.
func NewSVGCanvas(w io.Writer) *SVGCanvas {
	return &SVGCanvas{w: w}
}

func (s *SVGCanvas) Name() string { return "svg" }

func (s *SVGCanvas) Begin(width, height int, background color.RGBA) error {
	if width <= 0 || height <= 0 {
		return &SurfaceError{Op: "begin", Backend: s.Name(), Cause: ErrSurfaceUnavailable}
	}
	s.buf.Reset()
	s.doc = svg.New(&s.buf)
	s.doc.Start(width, height)
	s.doc.Rect(0, 0, width, height, "fill:"+hexColor(background))
	return nil
}

func (s *SVGCanvas) Line(from, to graphmodel.Point, width float64, c color.RGBA) {
	s.doc.Line(px(from.X), px(from.Y), px(to.X), px(to.Y),
		fmt.Sprintf("stroke:%s;stroke-opacity:%.3f;stroke-width:%.2f;stroke-linecap:round",
			hexColor(c), alpha(c), width))
}

func (s *SVGCanvas) Circle(center graphmodel.Point, r float64, fill color.RGBA) {
	s.doc.Circle(px(center.X), px(center.Y), radiusPx(r),
		fmt.Sprintf("fill:%s;fill-opacity:%.3f", hexColor(fill), alpha(fill)))
}

func (s *SVGCanvas) Ring(center graphmodel.Point, r, width float64, c color.RGBA) {
	s.doc.Circle(px(center.X), px(center.Y), radiusPx(r),
		fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%.3f;stroke-width:%.2f",
			hexColor(c), alpha(c), width))
}

func (s *SVGCanvas) Text(at graphmodel.Point, text string, size float64, c color.RGBA) {
	s.doc.Text(px(at.X), px(at.Y), text,
		fmt.Sprintf("fill:%s;fill-opacity:%.3f;font-size:%.0fpx;font-family:sans-serif;text-anchor:middle;dominant-baseline:middle",
			hexColor(c), alpha(c), size))
}

// End closes the document and copies it to the destination writer.
func (s *SVGCanvas) End() error {
	if s.doc == nil {
		return errNoFrame
	}
	s.doc.End()
	_, err := s.buf.WriteTo(s.w)
	s.doc = nil
	return err
}

func px(v float64) int { return int(math.Round(v)) }

// radiusPx keeps tiny nodes visible as one-unit dots.
func radiusPx(r float64) int {
	if n := px(r); n > 0 {
		return n
	}
	return 1
}

func alpha(c color.RGBA) float64 { return float64(c.A) / 255 }
