package geosync

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// FeatureCollection exports the spatial network: a Point feature per
// geocoded node and a LineString per edge whose endpoints are both
// geocoded. Coordinates are [lng, lat] as GeoJSON requires.
func FeatureCollection(m *graphmodel.Model) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range m.GeoNodes() {
		f := geojson.NewPointFeature([]float64{n.Geo.Lng, n.Geo.Lat})
		f.ID = n.ID
		f.SetProperty("kind", "node")
		f.SetProperty("label", n.Label)
		f.SetProperty("type", n.Type.String())
		f.SetProperty("count", n.Count)
		f.SetProperty("degree", n.Degree)
		fc.AddFeature(f)
	}
	for _, e := range m.Edges() {
		a, okA := m.Node(e.Source)
		b, okB := m.Node(e.Target)
		if !okA || !okB || a.Geo == nil || b.Geo == nil {
			continue
		}
		f := geojson.NewLineStringFeature([][]float64{
			{a.Geo.Lng, a.Geo.Lat},
			{b.Geo.Lng, b.Geo.Lat},
		})
		f.SetProperty("kind", "edge")
		f.SetProperty("source", e.Source)
		f.SetProperty("target", e.Target)
		f.SetProperty("weight", e.Weight)
		fc.AddFeature(f)
	}
	if b, ok := PaddedBounds(m.GeoNodes()); ok {
		fc.BoundingBox = []float64{b.West, b.South, b.East, b.North}
	}
	return fc
}

// ExportGeoJSON encodes FeatureCollection(m).
func ExportGeoJSON(m *graphmodel.Model) ([]byte, error) {
	return FeatureCollection(m).MarshalJSON()
}
