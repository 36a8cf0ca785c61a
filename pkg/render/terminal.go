package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Braille cells pack a 2x4 dot matrix into one rune.
const (
	CellWidth   = 2
	CellHeight  = 4
	brailleBase = 0x2800
)

var brailleBits = [CellHeight][CellWidth]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type cell struct {
	dots uint8
	text rune
	fg   color.RGBA
}

// TerminalCanvas rasterizes onto a braille character grid, one dot per
// screen unit, and styles each run of cells with lipgloss. Transparency is
// emulated by blending toward the background.
type TerminalCanvas struct {
	cols, rows int
	bg         color.RGBA
	cells      []cell
	out        string
}

// NewTerminalCanvas returns an empty terminal backend.
func NewTerminalCanvas() *TerminalCanvas {
	return &TerminalCanvas{}
}

// TerminalViewport converts a character grid into the dot resolution the
// canvas draws at.
func TerminalViewport(cols, rows int) (width, height float64) {
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

func (t *TerminalCanvas) Name() string { return "terminal" }

func (t *TerminalCanvas) Begin(width, height int, background color.RGBA) error {
	if width <= 0 || height <= 0 {
		return &SurfaceError{Op: "begin", Backend: t.Name(), Cause: ErrSurfaceUnavailable}
	}
	t.cols = (width + CellWidth - 1) / CellWidth
	t.rows = (height + CellHeight - 1) / CellHeight
	t.bg = background
	n := t.cols * t.rows
	if cap(t.cells) >= n {
		t.cells = t.cells[:n]
		clear(t.cells)
	} else {
		t.cells = make([]cell, n)
	}
	t.out = ""
	return nil
}

func (t *TerminalCanvas) dot(x, y int, c color.RGBA) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/CellWidth, y/CellHeight
	if col >= t.cols || row >= t.rows {
		return
	}
	cl := &t.cells[row*t.cols+col]
	cl.dots |= brailleBits[y%CellHeight][x%CellWidth]
	cl.fg = blend(c, t.bg)
}

// Line uses Bresenham on the dot grid; width is not representable. The
// segment is clipped to the grid first, so the walk never leaves the screen.
func (t *TerminalCanvas) Line(from, to graphmodel.Point, _ float64, c color.RGBA) {
	from, to, ok := clipSegment(from, to, float64(t.cols*CellWidth), float64(t.rows*CellHeight))
	if !ok {
		return
	}
	x0, y0 := int(math.Floor(from.X)), int(math.Floor(from.Y))
	x1, y1 := int(math.Floor(to.X)), int(math.Floor(to.Y))
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		t.dot(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips a-b to [0,width)x[0,height) with Liang-Barsky. It
// reports false when nothing of the segment is inside.
func clipSegment(a, b graphmodel.Point, width, height float64) (graphmodel.Point, graphmodel.Point, bool) {
	for _, v := range [...]float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	if width <= 0 || height <= 0 {
		return a, b, false
	}
	// keep the far edge inside the last dot column and row
	maxX := math.Nextafter(width, 0)
	maxY := math.Nextafter(height, 0)

	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [...]struct{ p, q float64 }{
		{-dx, a.X},
		{dx, maxX - a.X},
		{-dy, a.Y},
		{dy, maxY - a.Y},
	}
	for _, e := range edges {
		if e.p == 0 {
			if e.q < 0 {
				return a, b, false
			}
			continue
		}
		r := e.q / e.p
		if e.p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	from := graphmodel.Point{X: a.X + t0*dx, Y: a.Y + t0*dy}
	to := graphmodel.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}
	return clampPoint(from, maxX, maxY), clampPoint(to, maxX, maxY), true
}

func clampPoint(p graphmodel.Point, maxX, maxY float64) graphmodel.Point {
	return graphmodel.Point{X: math.Min(math.Max(p.X, 0), maxX), Y: math.Min(math.Max(p.Y, 0), maxY)}
}

func (t *TerminalCanvas) Circle(center graphmodel.Point, r float64, fill color.RGBA) {
	cx, cy := int(math.Floor(center.X)), int(math.Floor(center.Y))
	ir := int(math.Round(r))
	if ir < 1 {
		t.dot(cx, cy, fill)
		return
	}
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if dx*dx+dy*dy <= ir*ir {
				t.dot(cx+dx, cy+dy, fill)
			}
		}
	}
}

func (t *TerminalCanvas) Ring(center graphmodel.Point, r, _ float64, c color.RGBA) {
	steps := int(math.Max(8, 2*math.Pi*r))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		t.dot(int(math.Floor(center.X+r*math.Cos(a))), int(math.Floor(center.Y+r*math.Sin(a))), c)
	}
}

// Text writes s centered on the cell containing at. Characters replace the
// dots underneath them.
func (t *TerminalCanvas) Text(at graphmodel.Point, s string, _ float64, c color.RGBA) {
	row := int(math.Floor(at.Y)) / CellHeight
	if at.Y < 0 || row >= t.rows {
		return
	}
	runes := []rune(s)
	start := int(math.Floor(at.X))/CellWidth - len(runes)/2
	fg := blend(c, t.bg)
	for i, r := range runes {
		col := start + i
		if col < 0 || col >= t.cols {
			continue
		}
		cl := &t.cells[row*t.cols+col]
		cl.text = r
		cl.fg = fg
	}
}

// End assembles the styled frame.
func (t *TerminalCanvas) End() error {
	bg := lipgloss.Color(hexColor(t.bg))
	var b strings.Builder
	for row := 0; row < t.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var runFg color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(hexColor(runFg)))
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < t.cols; col++ {
			cl := t.cells[row*t.cols+col]
			if cl.fg != runFg {
				flush()
				runFg = cl.fg
			}
			run.WriteRune(cl.rune())
		}
		flush()
	}
	t.out = b.String()
	return nil
}

// String returns the last assembled frame.
func (t *TerminalCanvas) String() string { return t.out }

// Size returns the grid in characters.
func (t *TerminalCanvas) Size() (cols, rows int) { return t.cols, t.rows }

// Rune returns the character at a grid cell, without styling.
func (t *TerminalCanvas) Rune(col, row int) rune {
	if col < 0 || row < 0 || col >= t.cols || row >= t.rows {
		return ' '
	}
	return t.cells[row*t.cols+col].rune()
}

func (c cell) rune() rune {
	switch {
	case c.text != 0:
		return c.text
	case c.dots != 0:
		return rune(brailleBase + int(c.dots))
	default:
		return ' '
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
