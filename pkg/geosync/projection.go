// Package geosync places geocoded nodes at their projected map positions
// and keeps them there as the host map pans, zooms and resizes. The force
// layout never runs on a graph driven by geosync.
package geosync

import (
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

const (
	// TileSize is the pixel width of the world at zoom 0.
	TileSize = 256.0
	// MaxMercatorLat is where Web Mercator reaches a square world.
	MaxMercatorLat = 85.05112878
)

// View is the host map's viewport: the geographic center, the zoom level
// and the pixel size of the map container.
type View struct {
	Center graphmodel.LatLng `json:"center"`
	Zoom   float64           `json:"zoom"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
}

// Projection maps geographic coordinates to container pixels and back.
type Projection interface {
	Name() string
	Project(graphmodel.LatLng) graphmodel.Point
	Unproject(graphmodel.Point) graphmodel.LatLng
}

// ProjectionFactory builds a projection for a view.
type ProjectionFactory func(View) Projection

// worldProjection turns lat/lng into world fractions in [0, 1] and back.
type worldProjection interface {
	toWorld(graphmodel.LatLng) (x, y float64)
	fromWorld(x, y float64) graphmodel.LatLng
}

// viewProjection positions a world projection inside a view: the view
// center lands on the container center.
type viewProjection struct {
	name   string
	world  worldProjection
	size   float64
	cx, cy float64
	half   graphmodel.Point
}

func newViewProjection(name string, w worldProjection, v View) *viewProjection {
	cx, cy := w.toWorld(v.Center)
	return &viewProjection{
		name:  name,
		world: w,
		size:  TileSize * math.Exp2(v.Zoom),
		cx:    cx,
		cy:    cy,
		half:  graphmodel.Point{X: v.Width / 2, Y: v.Height / 2},
	}
}

func (p *viewProjection) Name() string { return p.name }

func (p *viewProjection) Project(ll graphmodel.LatLng) graphmodel.Point {
	x, y := p.world.toWorld(ll)
	return graphmodel.Point{
		X: (x-p.cx)*p.size + p.half.X,
		Y: (y-p.cy)*p.size + p.half.Y,
	}
}

func (p *viewProjection) Unproject(pt graphmodel.Point) graphmodel.LatLng {
	return p.world.fromWorld((pt.X-p.half.X)/p.size+p.cx, (pt.Y-p.half.Y)/p.size+p.cy)
}

type mercator struct{}

func (mercator) toWorld(ll graphmodel.LatLng) (float64, float64) {
	lat := math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, ll.Lat)) * math.Pi / 180
	x := (ll.Lng + 180) / 360
	y := (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2
	return x, y
}

func (mercator) fromWorld(x, y float64) graphmodel.LatLng {
	n := math.Pi * (1 - 2*y)
	return graphmodel.LatLng{
		Lat: math.Atan(math.Sinh(n)) * 180 / math.Pi,
		Lng: x*360 - 180,
	}
}

// equirect is the plate carrée: a world twice as wide as it is tall.
type equirect struct{}

func (equirect) toWorld(ll graphmodel.LatLng) (float64, float64) {
	return (ll.Lng + 180) / 360, (90 - ll.Lat) / 360
}

func (equirect) fromWorld(x, y float64) graphmodel.LatLng {
	return graphmodel.LatLng{Lat: 90 - y*360, Lng: x*360 - 180}
}

// WebMercator returns the projection slippy maps use.
func WebMercator(v View) Projection {
	return newViewProjection("web_mercator", mercator{}, v)
}

// Equirectangular returns a linear lat/lng projection.
func Equirectangular(v View) Projection {
	return newViewProjection("equirectangular", equirect{}, v)
}

// ProjectionByName resolves a configured projection name, falling back to
// Web Mercator.
func ProjectionByName(name string) ProjectionFactory {
	if name == "equirectangular" {
		return Equirectangular
	}
	return WebMercator
}
