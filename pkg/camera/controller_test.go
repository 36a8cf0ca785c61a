package camera

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

const eps = 1e-6

func newController(t *testing.T, loop *frame.Loop) *Controller {
	t.Helper()
	c, err := New(loop, DefaultConfig(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.SetViewport(Viewport{Width: 800, Height: 600})
	return c
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{Scale: 2.5, TranslateX: 10, TranslateY: -40}
	p := graphmodel.Point{X: 3, Y: 7}
	back := tr.ToLayout(tr.ToScreen(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
	if tr.Ratio() != 0.4 {
		t.Errorf("Ratio() = %v, want 0.4", tr.Ratio())
	}
}

func TestFitToBounds(t *testing.T) {
	c := newController(t, frame.NewLoop())
	bounds := graphmodel.Rect{MinX: -100, MinY: -50, MaxX: 100, MaxY: 50}

	if !c.FitToBounds(bounds, 0.1, false) {
		t.Fatal("FitToBounds returned false")
	}
	tr := c.Transform()

	// min(800, 600) / (200 * 1.1)
	wantScale := 600.0 / 220.0
	if !near(tr.Scale, wantScale) {
		t.Errorf("Scale = %v, want %v", tr.Scale, wantScale)
	}
	center := tr.ToScreen(bounds.Center())
	if !near(center.X, 400) || !near(center.Y, 300) {
		t.Errorf("bounds center maps to %+v, want viewport center", center)
	}
}

func TestFitToBoundsDegenerate(t *testing.T) {
	c := newController(t, frame.NewLoop())
	before := c.Transform()

	cases := map[string]graphmodel.Rect{
		"empty":     graphmodel.EmptyRect(),
		"zero size": {MinX: 5, MinY: 5, MaxX: 5, MaxY: 5},
		"nan":       {MinX: math.NaN(), MaxX: 1, MaxY: 1},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			if c.FitToBounds(r, 0.1, false) {
				t.Error("degenerate bounds should be a no-op")
			}
			if c.Transform() != before {
				t.Errorf("transform changed to %+v", c.Transform())
			}
		})
	}
}

func TestScaleIsClamped(t *testing.T) {
	c := newController(t, frame.NewLoop())
	cfg := c.Config()

	// tiny bounds would need a huge scale
	c.FitToBounds(graphmodel.Rect{MaxX: 0.001, MaxY: 0.001}, 0, false)
	if c.Transform().Scale != cfg.MaxScale {
		t.Errorf("Scale = %v, want clamp to %v", c.Transform().Scale, cfg.MaxScale)
	}

	for i := 0; i < 200; i++ {
		c.ZoomOut()
	}
	if c.Transform().Scale != cfg.MinScale {
		t.Errorf("Scale = %v, want clamp to %v", c.Transform().Scale, cfg.MinScale)
	}

	c.SetTransform(Transform{Scale: 1e9})
	if c.Transform().Scale != cfg.MaxScale {
		t.Errorf("SetTransform did not clamp: %v", c.Transform().Scale)
	}
	c.SetTransform(Transform{Scale: math.NaN()})
	if !c.Transform().IsValid() {
		t.Error("invalid transform accepted")
	}
}

func TestCenterOn(t *testing.T) {
	c := newController(t, frame.NewLoop())
	p := graphmodel.Point{X: 42, Y: -17}

	if !c.CenterOn(p, 3, false) {
		t.Fatal("CenterOn returned false")
	}
	s := c.Transform().ToScreen(p)
	if !near(s.X, 400) || !near(s.Y, 300) || c.Transform().Scale != 3 {
		t.Errorf("after CenterOn: screen %+v scale %v", s, c.Transform().Scale)
	}

	c.CenterOn(graphmodel.Point{}, 0, false)
	if c.Transform().Scale != 3 {
		t.Error("zero target scale should keep the current scale")
	}
}

func TestPanBy(t *testing.T) {
	c := newController(t, frame.NewLoop())
	c.PanBy(15, -5)
	tr := c.Transform()
	if tr.TranslateX != 15 || tr.TranslateY != -5 {
		t.Errorf("PanBy → %+v", tr)
	}
	c.PanBy(math.NaN(), 1)
	if c.Transform() != tr {
		t.Error("NaN pan should be ignored")
	}
}

func TestAnimatedFit(t *testing.T) {
	loop := frame.NewLoop()
	c := newController(t, loop)
	var changes int
	c.OnChange(func(Transform) { changes++ })

	bounds := graphmodel.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}
	c.FitToBounds(bounds, 0, true)
	if !c.Animating() {
		t.Fatal("expected an animation in flight")
	}

	now := time.Unix(0, 0)
	for i := 0; i < 60 && c.Animating(); i++ {
		now = now.Add(16 * time.Millisecond)
		loop.Tick(now)
	}
	if c.Animating() {
		t.Fatal("animation did not finish")
	}
	if !near(c.Transform().Scale, 0.6) {
		t.Errorf("final Scale = %v, want 0.6", c.Transform().Scale)
	}
	if changes < 2 {
		t.Errorf("expected intermediate frames, got %d changes", changes)
	}
}

func TestNewAnimationSupersedes(t *testing.T) {
	loop := frame.NewLoop()
	c := newController(t, loop)

	c.CenterOn(graphmodel.Point{X: 1000, Y: 1000}, 1, true)
	c.CenterOn(graphmodel.Point{X: -50, Y: 20}, 2, true)
	if loop.Pending() != 1 {
		t.Fatalf("Pending() = %d, want a single animation frame", loop.Pending())
	}

	now := time.Unix(0, 0)
	for i := 0; i < 60; i++ {
		now = now.Add(16 * time.Millisecond)
		loop.Tick(now)
	}
	s := c.Transform().ToScreen(graphmodel.Point{X: -50, Y: 20})
	if !near(s.X, 400) || !near(s.Y, 300) {
		t.Errorf("second target not centered: %+v", s)
	}
}

func TestPanCancelsAnimation(t *testing.T) {
	loop := frame.NewLoop()
	c := newController(t, loop)
	c.CenterOn(graphmodel.Point{X: 500, Y: 500}, 2, true)
	c.PanBy(1, 1)
	if c.Animating() || loop.Pending() != 0 {
		t.Error("user pan should cancel the animation")
	}
}

func TestZoomInvariantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("the layout point under the cursor stays under it", prop.ForAll(
		func(scale, tx, ty, sx, sy, factor float64) bool {
			c, _ := New(frame.NewLoop(), DefaultConfig(), Options{})
			c.SetViewport(Viewport{Width: 1000, Height: 1000})
			c.SetTransform(Transform{Scale: scale, TranslateX: tx, TranslateY: ty})

			screen := graphmodel.Point{X: sx, Y: sy}
			before := c.Transform().ToLayout(screen)
			c.ZoomAt(screen, factor)
			after := c.Transform().ToScreen(before)

			return math.Abs(after.X-sx) < 1e-6 && math.Abs(after.Y-sy) < 1e-6
		},
		gen.Float64Range(0.05, 10),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 1000),
		gen.Float64Range(0.1, 10),
	))

	properties.Property("fitted bounds lie inside the viewport", prop.ForAll(
		func(x, y, w, h, pad float64) bool {
			c, _ := New(frame.NewLoop(), DefaultConfig(), Options{})
			c.SetViewport(Viewport{Width: 800, Height: 600})
			r := graphmodel.Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
			if !c.FitToBounds(r, pad, false) {
				return false
			}
			tr := c.Transform()
			lo := tr.ToScreen(graphmodel.Point{X: r.MinX, Y: r.MinY})
			hi := tr.ToScreen(graphmodel.Point{X: r.MaxX, Y: r.MaxY})
			const slack = 1e-6
			return lo.X >= -slack && lo.Y >= -slack && hi.X <= 800+slack && hi.Y <= 600+slack
		},
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(1, 2e4),
		gen.Float64Range(1, 2e4),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}
