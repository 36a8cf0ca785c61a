package geosync

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	geojson "github.com/paulmach/go.geojson"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

func spatialModel() *graphmodel.Model {
	return graphmodel.FromSnapshot(graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{
			{ID: "location:ouaga", Label: "Ouagadougou", Count: 40, Coordinates: []float64{12.37, -1.52}},
			{ID: "location:bamako", Label: "Bamako", Count: 20, Coordinates: []float64{12.64, -8.0}},
			{ID: "location:lome", Label: "Lomé", Count: 5, Coordinates: []float64{6.13, 1.22}},
			{ID: "location:nowhere", Label: "Nowhere", Count: 1},
		},
		Edges: []graphmodel.SnapshotEdge{
			{Source: "location:ouaga", Target: "location:bamako", Weight: 3},
			{Source: "location:ouaga", Target: "location:nowhere", Weight: 1},
		},
	}, graphmodel.Options{})
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestProjectionCentersView(t *testing.T) {
	v := View{Center: graphmodel.LatLng{Lat: 12, Lng: -2}, Zoom: 5, Width: 800, Height: 600}
	for _, p := range []Projection{WebMercator(v), Equirectangular(v)} {
		c := p.Project(v.Center)
		if !near(c.X, 400, 1e-9) || !near(c.Y, 300, 1e-9) {
			t.Errorf("%s: center projects to %+v", p.Name(), c)
		}
		east := p.Project(graphmodel.LatLng{Lat: 12, Lng: 0})
		north := p.Project(graphmodel.LatLng{Lat: 14, Lng: -2})
		if east.X <= c.X || north.Y >= c.Y {
			t.Errorf("%s: east %+v or north %+v on the wrong side", p.Name(), east, north)
		}
	}
	if ProjectionByName("equirectangular")(v).Name() != "equirectangular" ||
		ProjectionByName("anything")(v).Name() != "web_mercator" {
		t.Error("ProjectionByName resolved the wrong projection")
	}
}

func TestProjectionRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for name, factory := range map[string]ProjectionFactory{"mercator": WebMercator, "equirect": Equirectangular} {
		factory := factory
		properties.Property(name+" unproject inverts project", prop.ForAll(
			func(lat, lng, clat, clng, zoom float64) bool {
				p := factory(View{Center: graphmodel.LatLng{Lat: clat, Lng: clng}, Zoom: zoom, Width: 1024, Height: 768})
				back := p.Unproject(p.Project(graphmodel.LatLng{Lat: lat, Lng: lng}))
				return near(back.Lat, lat, 1e-6) && near(back.Lng, lng, 1e-6)
			},
			gen.Float64Range(-80, 80),
			gen.Float64Range(-179, 179),
			gen.Float64Range(-60, 60),
			gen.Float64Range(-170, 170),
			gen.Float64Range(0, 12),
		))
	}

	properties.TestingRun(t)
}

func TestSyncFollowsMapView(t *testing.T) {
	m := spatialModel()
	mv := NewMapView(View{Center: graphmodel.LatLng{Lat: 12, Lng: -3}, Zoom: 6, Width: 800, Height: 600})
	redraws := 0
	s, err := New(m, mv, WebMercator, Options{Redraw: func() { redraws++ }})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if st := s.Stats(); st.Placed != 3 || st.Excluded != 1 {
		t.Fatalf("stats = %+v, want 3 placed / 1 excluded", st)
	}
	nowhere, _ := m.Node("location:nowhere")
	if nowhere.Seeded {
		t.Error("node without coordinates must stay unplaced")
	}

	ouaga, _ := m.Node("location:ouaga")
	want := WebMercator(mv.View()).Project(*ouaga.Geo)
	if ouaga.Position != want {
		t.Errorf("ouaga at %+v, want %+v", ouaga.Position, want)
	}

	before := ouaga.Position
	mv.PanBy(50, -20)
	if !near(ouaga.Position.X-before.X, 50, 1e-6) || !near(ouaga.Position.Y-before.Y, -20, 1e-6) {
		t.Errorf("pan moved ouaga by (%v, %v), want (50, -20)",
			ouaga.Position.X-before.X, ouaga.Position.Y-before.Y)
	}

	zoomedFrom := ouaga.Position
	mv.SetZoom(mv.View().Zoom + 1)
	c := mv.View()
	center := graphmodel.Point{X: c.Width / 2, Y: c.Height / 2}
	if !near(ouaga.Position.X-center.X, 2*(zoomedFrom.X-center.X), 1e-6) {
		t.Error("one zoom level should double distances from the center")
	}

	mv.Resize(1000, 600)
	if redraws != 4 {
		t.Errorf("redraws = %d, want one per change plus the initial sync", redraws)
	}

	loc := s.Locate(ouaga.Position)
	if !near(loc.Lat, 12.37, 1e-6) || !near(loc.Lng, -1.52, 1e-6) {
		t.Errorf("Locate = %+v", loc)
	}

	s.Close()
	mv.SetZoom(2)
	if redraws != 4 {
		t.Error("closed sync should not follow the map")
	}
}

func TestNewRejectsNil(t *testing.T) {
	if _, err := New(nil, NewMapView(View{}), nil, Options{}); err != ErrMissingCollaborator {
		t.Errorf("New(nil model) = %v", err)
	}
}

func TestMapViewFitBounds(t *testing.T) {
	mv := NewMapView(View{Width: 800, Height: 600})
	b, ok := PaddedBounds(spatialModel().GeoNodes())
	if !ok {
		t.Fatal("no bounds")
	}
	mv.FitBounds(b)
	p := WebMercator(mv.View())
	nw := p.Project(graphmodel.LatLng{Lat: b.North, Lng: b.West})
	se := p.Project(graphmodel.LatLng{Lat: b.South, Lng: b.East})
	const eps = 1e-6
	if nw.X < -eps || nw.Y < -eps || se.X > 800+eps || se.Y > 600+eps {
		t.Errorf("fitted bounds project to %+v .. %+v", nw, se)
	}
	if !near(se.X-nw.X, 800, 1e-6) && !near(se.Y-nw.Y, 600, 1e-6) {
		t.Error("fit should fill one axis")
	}
}

func TestPaddedBounds(t *testing.T) {
	b, ok := PaddedBounds(spatialModel().GeoNodes())
	if !ok {
		t.Fatal("no bounds")
	}
	latSpan := 12.64 - 6.13
	if !near(b.North, 12.64+latSpan*0.1, 1e-9) || !near(b.South, 6.13-latSpan*0.1, 1e-9) {
		t.Errorf("lat bounds %+v", b)
	}

	single := graphmodel.FromSnapshot(graphmodel.Snapshot{Nodes: []graphmodel.SnapshotNode{
		{ID: "location:x", Coordinates: []float64{5, 5}},
	}}, graphmodel.Options{})
	b, _ = PaddedBounds(single.GeoNodes())
	if !near(b.North, 5.1, 1e-12) || !near(b.South, 4.9, 1e-12) || !near(b.East, 5.1, 1e-12) || !near(b.West, 4.9, 1e-12) {
		t.Errorf("degenerate bounds padded to %+v, want 0.1 degrees", b)
	}

	if _, ok := PaddedBounds(nil); ok {
		t.Error("no geocoded nodes should report !ok")
	}

	given := &graphmodel.GeoBounds{North: 1, South: 0, East: 1, West: 0}
	if got, _ := InitialBounds(given, single); got != *given {
		t.Error("snapshot bounds should win")
	}
}

func TestExportGeoJSON(t *testing.T) {
	raw, err := ExportGeoJSON(spatialModel())
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		t.Fatalf("output is not a feature collection: %v", err)
	}
	points, lines := 0, 0
	for _, f := range fc.Features {
		switch {
		case f.Geometry.IsPoint():
			points++
			if f.PropertyMustString("kind") != "node" {
				t.Errorf("point feature kind %v", f.Properties["kind"])
			}
		case f.Geometry.IsLineString():
			lines++
			if f.PropertyMustFloat64("weight") != 3 {
				t.Errorf("edge weight %v", f.Properties["weight"])
			}
		}
	}
	if points != 3 || lines != 1 {
		t.Errorf("%d points / %d lines, want 3 / 1", points, lines)
	}
	if len(fc.BoundingBox) != 4 {
		t.Errorf("bbox = %v", fc.BoundingBox)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil || generic["type"] != "FeatureCollection" {
		t.Errorf("type = %v, err = %v", generic["type"], err)
	}
}
