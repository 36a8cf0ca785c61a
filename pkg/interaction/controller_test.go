package interaction

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/render"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

type fakeLayout struct {
	starts, pauses, resumes int
}

func (f *fakeLayout) Start() bool { f.starts++; return true }
func (f *fakeLayout) Pause()      { f.pauses++ }
func (f *fakeLayout) Resume()     { f.resumes++ }

type harness struct {
	ctl    *Controller
	model  *graphmodel.Model
	cam    *camera.Controller
	view   *viewstate.State
	layout *fakeLayout
	loop   *frame.Loop
}

// newHarness places a at the origin and b at (100, 0), both radius 10,
// under an identity camera.
func newHarness(t *testing.T) *harness {
	t.Helper()
	m := graphmodel.FromSnapshot(graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{
			{ID: "person:a", Label: "A", Count: 1},
			{ID: "person:b", Label: "B", Count: 1},
		},
		Edges: []graphmodel.SnapshotEdge{{Source: "person:a", Target: "person:b", Weight: 1}},
	}, graphmodel.Options{})
	m.ApplySizing(10, 10)
	m.SetPosition("person:a", graphmodel.Point{X: 0, Y: 0})
	m.SetPosition("person:b", graphmodel.Point{X: 100, Y: 0})

	loop := frame.NewLoop()
	cam, err := camera.New(loop, camera.DefaultConfig(), camera.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cam.SetViewport(camera.Viewport{Width: 400, Height: 400})

	h := &harness{model: m, cam: cam, view: viewstate.New(), layout: &fakeLayout{}, loop: loop}
	h.ctl, err = New(Deps{Model: m, Camera: cam, View: h.view, Layout: h.layout}, DefaultConfig(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func pt(x, y float64) graphmodel.Point { return graphmodel.Point{X: x, Y: y} }

func (h *harness) click(p graphmodel.Point) {
	h.ctl.PointerDown(p)
	h.ctl.PointerUp(p)
}

func (h *harness) settle() {
	now := time.Unix(0, 0)
	for i := 0; i < 100 && h.loop.Pending() > 0; i++ {
		now = now.Add(50 * time.Millisecond)
		h.loop.Tick(now)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{}, DefaultConfig(), Options{}); !errors.Is(err, ErrMissingCollaborator) {
		t.Errorf("New(empty deps) = %v", err)
	}
}

func TestClickSelectsAndClears(t *testing.T) {
	h := newHarness(t)

	h.click(pt(3, 2))
	if h.view.Selected() != "person:a" {
		t.Fatalf("selected %q after clicking a", h.view.Selected())
	}

	h.ctl.PointerDown(pt(100, 0))
	h.ctl.PointerMove(pt(102, 1))
	h.ctl.PointerUp(pt(102, 1))
	if h.view.Selected() != "person:b" {
		t.Errorf("movement under the threshold should still click, selected %q", h.view.Selected())
	}

	h.click(pt(250, 250))
	if h.view.Selected() != "" {
		t.Errorf("background click should clear, selected %q", h.view.Selected())
	}
	if h.ctl.State() != Idle {
		t.Errorf("state = %v after click", h.ctl.State())
	}
}

func TestBackgroundDragPans(t *testing.T) {
	h := newHarness(t)
	h.view.Select("person:a")

	h.ctl.PointerDown(pt(200, 200))
	h.ctl.PointerMove(pt(210, 205))
	if h.ctl.State() != DraggingCamera {
		t.Fatalf("state = %v, want dragging camera", h.ctl.State())
	}
	h.ctl.PointerMove(pt(220, 205))
	h.ctl.PointerUp(pt(220, 205))

	tr := h.cam.Transform()
	if tr.TranslateX != 20 || tr.TranslateY != 5 {
		t.Errorf("translate = (%v, %v), want (20, 5)", tr.TranslateX, tr.TranslateY)
	}
	if h.view.Selected() != "person:a" {
		t.Error("a drag must not change the selection")
	}
}

func TestNodeDragMovesNodeAndPausesLayout(t *testing.T) {
	h := newHarness(t)

	h.ctl.PointerDown(pt(102, 3))
	h.ctl.PointerMove(pt(150, 3))
	if h.ctl.State() != DraggingNode {
		t.Fatalf("state = %v, want dragging node", h.ctl.State())
	}
	if h.layout.pauses != 1 {
		t.Errorf("layout paused %d times", h.layout.pauses)
	}
	h.ctl.PointerMove(pt(160, 13))

	b, _ := h.model.Node("person:b")
	if b.Position.X != 158 || b.Position.Y != 10 {
		t.Errorf("b at %+v, want (158, 10) keeping the grab offset", b.Position)
	}
	if h.cam.Transform() != camera.Identity() {
		t.Error("node drag must not move the camera")
	}

	h.ctl.PointerUp(pt(160, 13))
	if h.layout.resumes != 1 {
		t.Errorf("layout resumed %d times", h.layout.resumes)
	}
	if h.view.Selected() != "" {
		t.Error("a node drag is not a click")
	}
}

func TestLeaveDuringNodeDragResumes(t *testing.T) {
	h := newHarness(t)
	h.ctl.PointerDown(pt(0, 0))
	h.ctl.PointerMove(pt(30, 0))
	h.ctl.PointerLeave()
	if h.layout.resumes != 1 || h.ctl.State() != Idle || h.view.Hovered() != "" {
		t.Errorf("leave: resumes=%d state=%v hovered=%q", h.layout.resumes, h.ctl.State(), h.view.Hovered())
	}
}

func TestHover(t *testing.T) {
	h := newHarness(t)
	h.ctl.PointerMove(pt(0, 5))
	if h.view.Hovered() != "person:a" {
		t.Errorf("hovered %q", h.view.Hovered())
	}
	h.ctl.PointerMove(pt(300, 300))
	if h.view.Hovered() != "" {
		t.Errorf("hovered %q over background", h.view.Hovered())
	}
}

func TestWheelZoomsTowardPointer(t *testing.T) {
	h := newHarness(t)
	cursor := pt(50, 70)
	before := h.cam.Transform().ToLayout(cursor)

	h.ctl.Wheel(cursor, 2)
	tr := h.cam.Transform()
	if math.Abs(tr.Scale-1.21) > 1e-9 {
		t.Errorf("scale = %v, want 1.21", tr.Scale)
	}
	after := tr.ToScreen(before)
	if math.Abs(after.X-cursor.X) > 1e-9 || math.Abs(after.Y-cursor.Y) > 1e-9 {
		t.Errorf("point under cursor moved to %+v", after)
	}

	h.ctl.Wheel(cursor, math.NaN())
	if h.cam.Transform() != tr {
		t.Error("NaN wheel delta should be ignored")
	}
}

func TestKeyActions(t *testing.T) {
	h := newHarness(t)

	if a, err := h.ctl.Key("i"); a != ActionToggleIsolation || !errors.Is(err, viewstate.ErrNoSelection) {
		t.Errorf("isolation without selection: %v, %v", a, err)
	}
	if _, err := h.ctl.Key("c"); !errors.Is(err, viewstate.ErrNoSelection) {
		t.Errorf("center without selection: %v", err)
	}

	h.view.Select("person:b")
	if _, err := h.ctl.Key("i"); err != nil || !h.view.Isolation().Active {
		t.Fatalf("isolation on: err=%v active=%v", err, h.view.Isolation().Active)
	}

	if _, err := h.ctl.Key("c"); err != nil {
		t.Fatal(err)
	}
	h.settle()
	center := h.cam.Transform().ToLayout(h.cam.Viewport().Center())
	if math.Abs(center.X-100) > 1e-6 || math.Abs(center.Y) > 1e-6 {
		t.Errorf("view centered on %+v, want b", center)
	}
	if h.cam.Transform().Scale != h.cam.Config().FocusScale {
		t.Errorf("scale = %v after center", h.cam.Transform().Scale)
	}

	if _, err := h.ctl.Key("esc"); err != nil {
		t.Fatal(err)
	}
	if h.view.Selected() != "" || h.view.Isolation().Active {
		t.Error("clearing the selection should turn isolation off")
	}

	if _, err := h.ctl.Key("r"); err != nil || h.layout.starts != 1 {
		t.Errorf("relayout: err=%v starts=%d", err, h.layout.starts)
	}

	if _, err := h.ctl.Key("f"); err != nil {
		t.Fatal(err)
	}
	h.settle()
	bounds := h.model.Bounds()
	lo := h.cam.Transform().ToScreen(graphmodel.Point{X: bounds.MinX, Y: bounds.MinY})
	hi := h.cam.Transform().ToScreen(graphmodel.Point{X: bounds.MaxX, Y: bounds.MaxY})
	if lo.X < 0 || lo.Y < 0 || hi.X > 400 || hi.Y > 400 {
		t.Errorf("fit left bounds outside the viewport: %+v %+v", lo, hi)
	}

	if a, err := h.ctl.Key("x"); a != ActionNone || err != nil {
		t.Errorf("unbound key: %v, %v", a, err)
	}
	if err := h.ctl.Perform("explode"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Perform(unknown) = %v", err)
	}
}

func TestRelayoutWithoutScheduler(t *testing.T) {
	h := newHarness(t)
	ctl, err := New(Deps{Model: h.model, Camera: h.cam, View: h.view}, DefaultConfig(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ctl.Perform(ActionRelayout); !errors.Is(err, ErrNoLayout) {
		t.Errorf("Perform(relayout) = %v", err)
	}
}

func TestHitTestFollowsSceneOrder(t *testing.T) {
	h := newHarness(t)
	h.model.SetPosition("person:b", graphmodel.Point{X: 5, Y: 0})

	pipeline, err := render.NewPipeline(render.DefaultConfig(), render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctl, err := New(Deps{Model: h.model, Camera: h.cam, View: h.view, Scenes: pipeline}, DefaultConfig(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	h.view.Select("person:a")
	pipeline.Plan(h.model, h.view, h.cam.Transform(), h.cam.Viewport())
	if id, _ := ctl.HitTest(pt(3, 0)); id != "person:a" {
		t.Errorf("hit %q, want the selected node drawn on top", id)
	}

	h.view.Select("person:b")
	pipeline.Plan(h.model, h.view, h.cam.Transform(), h.cam.Viewport())
	if id, _ := ctl.HitTest(pt(3, 0)); id != "person:b" {
		t.Errorf("hit %q after selecting b", id)
	}
}

func TestHitTestProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("hit is the topmost node containing the point", prop.ForAll(
		func(n int, scale, tx, ty, sx, sy float64) bool {
			snap := graphmodel.Snapshot{}
			for i := 0; i < n; i++ {
				snap.Nodes = append(snap.Nodes, graphmodel.SnapshotNode{ID: fmt.Sprintf("event:%d", i), Count: float64(i % 4)})
			}
			m := graphmodel.FromSnapshot(snap, graphmodel.Options{})
			m.ApplySizing(5, 25)
			for i, node := range m.Nodes() {
				m.SetPosition(node.ID, graphmodel.Point{X: float64((i * 37) % 200), Y: float64((i * 53) % 200)})
			}
			cam, _ := camera.New(frame.NewLoop(), camera.DefaultConfig(), camera.Options{})
			cam.SetViewport(camera.Viewport{Width: 500, Height: 500})
			cam.SetTransform(camera.Transform{Scale: scale, TranslateX: tx, TranslateY: ty})
			ctl, err := New(Deps{Model: m, Camera: cam, View: viewstate.New()}, DefaultConfig(), Options{})
			if err != nil {
				return false
			}

			screen := pt(sx, sy)
			at := cam.Transform().ToLayout(screen)
			want := ""
			for _, id := range ctl.hitOrder() {
				node, _ := m.Node(id)
				if graphmodel.Distance(node.Position, at) <= node.Radius {
					want = id
					break
				}
			}
			got, ok := ctl.HitTest(screen)
			return got == want && ok == (want != "")
		},
		gen.IntRange(1, 30),
		gen.Float64Range(0.1, 5),
		gen.Float64Range(-200, 200),
		gen.Float64Range(-200, 200),
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Keys["q"] = "quit"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown action binding should be rejected")
	}
	cfg = DefaultConfig()
	cfg.WheelStep = 1
	if err := cfg.Validate(); err == nil {
		t.Error("wheel step of 1 should be rejected")
	}
	if got := DefaultConfig().Bindings(ActionZoomIn); len(got) != 2 || got[0] != "+" || got[1] != "=" {
		t.Errorf("Bindings(zoom_in) = %v", got)
	}
}
