package explorer

import (
	"math"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/geosync"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// attachMap switches to the spatial variant. Node positions are container
// pixels computed by the projection, so the camera stays at identity: pan
// and zoom gestures that move the camera are folded into the map view.
func (e *Explorer) attachMap(logger logging.Logger) error {
	sync, err := geosync.New(e.model, e.mapView, geosync.ProjectionByName(e.cfg.Geo.Projection), geosync.Options{
		Logger:  logger,
		Metrics: e.metrics,
		Redraw:  e.requestRedraw,
	})
	if err != nil {
		return err
	}
	e.geo = sync
	e.cam.OnChange(e.bridgeCamera)
	return nil
}

// requestRedraw draws the moved map on the next frame. Map changes within
// one frame share a single draw, and Frame returns that draw.
func (e *Explorer) requestRedraw() {
	if e.redrawID != 0 {
		return
	}
	e.redrawID = e.loop.Request(func(time.Time) {
		e.redrawID = 0
		scene, err := e.render()
		e.drawn = &drawResult{scene: scene, err: err}
	})
}

// bridgeCamera turns a camera move into the equivalent map move and resets
// the camera. A pure pan becomes a map pan; a zoom keeps the geographic
// point under its fixed screen point.
func (e *Explorer) bridgeCamera(t camera.Transform) {
	if e.bridging || t == camera.Identity() {
		return
	}
	e.bridging = true
	defer func() { e.bridging = false }()

	e.cam.CancelAnimation()
	if t.Scale == 1 {
		e.mapView.PanBy(t.TranslateX, t.TranslateY)
	} else {
		// fixed point of screen = p*s + translate
		anchor := graphmodel.Point{X: t.TranslateX / (1 - t.Scale), Y: t.TranslateY / (1 - t.Scale)}
		geoAnchor := e.geo.Locate(anchor)
		e.mapView.SetZoom(e.mapView.View().Zoom + math.Log2(t.Scale))
		moved := e.geo.Projection().Project(geoAnchor)
		e.mapView.PanBy(anchor.X-moved.X, anchor.Y-moved.Y)
	}
	e.cam.SetTransform(camera.Identity())
}

// fitMap fits the map to the snapshot's bounds, or to the padded extent of
// the geocoded nodes. It reports false without any geocoded node.
func (e *Explorer) fitMap() bool {
	b, ok := geosync.InitialBounds(e.geoBounds, e.model)
	if !ok {
		return false
	}
	e.mapView.FitBounds(b)
	return true
}

// ExportGeoJSON encodes the geocoded part of the graph.
func (e *Explorer) ExportGeoJSON() ([]byte, error) {
	return geosync.ExportGeoJSON(e.model)
}
