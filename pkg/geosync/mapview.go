package geosync

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Zoom limits of the host map.
const (
	MinZoom = 0.0
	MaxZoom = 22.0
)

// MapView models the host map's viewport. Every effective change is pushed
// to the registered observers.
type MapView struct {
	view      View
	observers map[int]func(View)
	nextID    int
}

// NewMapView returns a map view; the zoom is clamped.
func NewMapView(v View) *MapView {
	v.Zoom = clampZoom(v.Zoom)
	return &MapView{view: v, observers: make(map[int]func(View))}
}

// View returns the current viewport.
func (m *MapView) View() View { return m.view }

// OnChange registers fn and returns a function removing it.
func (m *MapView) OnChange(fn func(View)) (remove func()) {
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	return func() { delete(m.observers, id) }
}

// SetView replaces the viewport.
func (m *MapView) SetView(v View) {
	v.Zoom = clampZoom(v.Zoom)
	if v == m.view {
		return
	}
	m.view = v
	for i := 0; i < m.nextID; i++ {
		if fn, ok := m.observers[i]; ok {
			fn(v)
		}
	}
}

// SetCenter moves the map.
func (m *MapView) SetCenter(c graphmodel.LatLng) {
	v := m.view
	v.Center = c
	m.SetView(v)
}

// SetZoom changes the zoom level around the center.
func (m *MapView) SetZoom(z float64) {
	v := m.view
	v.Zoom = z
	m.SetView(v)
}

// Resize records a new container size.
func (m *MapView) Resize(width, height float64) {
	v := m.view
	v.Width, v.Height = width, height
	m.SetView(v)
}

// PanBy drags the map content by a pixel delta, as a mouse drag would.
func (m *MapView) PanBy(dx, dy float64) {
	p := WebMercator(m.view)
	v := m.view
	v.Center = p.Unproject(graphmodel.Point{X: v.Width/2 - dx, Y: v.Height/2 - dy})
	m.SetView(v)
}

// FitBounds centers and zooms the map so b fills the container.
func (m *MapView) FitBounds(b graphmodel.GeoBounds) {
	w := mercator{}
	x0, y0 := w.toWorld(graphmodel.LatLng{Lat: b.North, Lng: b.West})
	x1, y1 := w.toWorld(graphmodel.LatLng{Lat: b.South, Lng: b.East})
	v := m.view
	v.Center = w.fromWorld((x0+x1)/2, (y0+y1)/2)
	fx, fy := math.Abs(x1-x0), math.Abs(y1-y0)
	if fx > 0 && fy > 0 && v.Width > 0 && v.Height > 0 {
		v.Zoom = math.Log2(math.Min(v.Width/(fx*TileSize), v.Height/(fy*TileSize)))
	}
	m.SetView(v)
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
