package geosync

import (
	"errors"
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// ErrMissingCollaborator is returned by New when the model or map is nil.
var ErrMissingCollaborator = errors.New("geosync: missing model or map view")

// Options carries optional collaborators. Redraw runs after every resync.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Redraw  func()
}

// Stats counts the outcome of the last resync.
type Stats struct {
	Placed   int `json:"placed"`
	Excluded int `json:"excluded"`
}

// Sync keeps geocoded node positions equal to their projected map position.
type Sync struct {
	model   *graphmodel.Model
	view    *MapView
	factory ProjectionFactory
	logger  logging.Logger
	metrics *metrics.Registry
	redraw  func()

	proj   Projection
	stats  Stats
	detach func()
}

// New places every geocoded node and subscribes to map changes.
func New(m *graphmodel.Model, view *MapView, factory ProjectionFactory, opts Options) (*Sync, error) {
	if m == nil || view == nil {
		return nil, ErrMissingCollaborator
	}
	if factory == nil {
		factory = WebMercator
	}
	s := &Sync{
		model:   m,
		view:    view,
		factory: factory,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("geosync")),
		metrics: opts.Metrics,
		redraw:  opts.Redraw,
	}
	s.detach = view.OnChange(func(View) { s.Resync() })
	s.Resync()
	return s, nil
}

// Resync reprojects every geocoded node for the current map view. Nodes
// without coordinates are left unplaced and counted as excluded.
func (s *Sync) Resync() Stats {
	s.proj = s.factory(s.view.View())
	var st Stats
	for _, n := range s.model.Nodes() {
		if n.Geo == nil {
			st.Excluded++
			continue
		}
		if s.model.SetPosition(n.ID, s.proj.Project(*n.Geo)) {
			st.Placed++
		} else {
			st.Excluded++
		}
	}
	if st.Excluded != s.stats.Excluded {
		s.logger.Info("nodes without usable coordinates excluded", logging.Count(st.Excluded))
		s.metrics.RecordDropped("no_coordinates", st.Excluded-s.stats.Excluded)
	}
	s.stats = st
	if s.redraw != nil {
		s.redraw()
	}
	return st
}

// Stats returns the counts of the last resync.
func (s *Sync) Stats() Stats { return s.stats }

// Projection returns the projection of the last resync.
func (s *Sync) Projection() Projection { return s.proj }

// Locate converts a container pixel into coordinates.
func (s *Sync) Locate(p graphmodel.Point) graphmodel.LatLng {
	return s.proj.Unproject(p)
}

// Close stops following the map view.
func (s *Sync) Close() {
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

// PaddedBounds returns the extent of the geocoded nodes grown by 10% on each
// axis, or 0.1 degrees when an axis has no extent. ok is false without any
// geocoded node.
func PaddedBounds(nodes []*graphmodel.Node) (b graphmodel.GeoBounds, ok bool) {
	b = graphmodel.GeoBounds{North: math.Inf(-1), South: math.Inf(1), East: math.Inf(-1), West: math.Inf(1)}
	for _, n := range nodes {
		if n.Geo == nil {
			continue
		}
		ok = true
		b.North = math.Max(b.North, n.Geo.Lat)
		b.South = math.Min(b.South, n.Geo.Lat)
		b.East = math.Max(b.East, n.Geo.Lng)
		b.West = math.Min(b.West, n.Geo.Lng)
	}
	if !ok {
		return graphmodel.GeoBounds{}, false
	}
	latPad := padding(b.North - b.South)
	lngPad := padding(b.East - b.West)
	b.North += latPad
	b.South -= latPad
	b.East += lngPad
	b.West -= lngPad
	return b, true
}

func padding(span float64) float64 {
	if p := span * 0.1; p != 0 {
		return p
	}
	return 0.1
}

// InitialBounds prefers the snapshot's bounds and falls back to the padded
// extent of the geocoded nodes.
func InitialBounds(snapshot *graphmodel.GeoBounds, m *graphmodel.Model) (graphmodel.GeoBounds, bool) {
	if snapshot != nil {
		return *snapshot, true
	}
	return PaddedBounds(m.GeoNodes())
}
