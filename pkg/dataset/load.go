package dataset

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// Loader fetches and decodes snapshots, recording each attempt.
type Loader struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewLoader creates a loader. Both collaborators may be nil.
func NewLoader(logger logging.Logger, reg *metrics.Registry) *Loader {
	return &Loader{
		logger:  logging.OrNop(logger).With(logging.Component("dataset")),
		metrics: reg,
	}
}

// Load fetches one snapshot from src. A snapshot without nodes is returned
// together with ErrEmptySnapshot so callers can still show the empty state.
func (l *Loader) Load(ctx context.Context, src Source) (graphmodel.Snapshot, error) {
	start := time.Now()
	snap, err := l.load(ctx, src)
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case len(snap.Nodes) == 0:
		status = "empty"
	}
	l.metrics.RecordDatasetLoad(src.Kind(), status, time.Since(start))

	if err != nil {
		l.logger.Error("snapshot load failed",
			logging.Source(src.String()),
			logging.Error(err))
		return graphmodel.Snapshot{}, err
	}
	l.logger.Info("snapshot loaded",
		logging.Source(src.String()),
		logging.Nodes(len(snap.Nodes)),
		logging.Edges(len(snap.Edges)),
		logging.Latency(time.Since(start)))
	if len(snap.Nodes) == 0 {
		return snap, ErrEmptySnapshot
	}
	return snap, nil
}

func (l *Loader) load(ctx context.Context, src Source) (graphmodel.Snapshot, error) {
	rc, err := src.Fetch(ctx)
	if err != nil {
		return graphmodel.Snapshot{}, &LoadError{Op: "open", Source: src.String(), Cause: err}
	}
	defer rc.Close()

	snap, err := Decode(rc)
	if err != nil {
		return graphmodel.Snapshot{}, &LoadError{Op: "decode", Source: src.String(), Cause: err}
	}
	return snap, nil
}

// ReportDiagnostics publishes per-reason drop counts from a model load, and
// the merged duplicate edges on their own.
func (l *Loader) ReportDiagnostics(d graphmodel.Diagnostics) {
	drops := map[string]int{
		"invalid_node":     d.InvalidNodes,
		"duplicate_node":   d.DuplicateNodes,
		"invalid_edge":     d.InvalidEdges,
		"dangling_edge":    d.DanglingEdges,
		"self_loop":        d.SelfLoops,
		"below_min_weight": d.BelowMinWeight,
		"bad_coordinates":  d.InvalidCoordinates,
	}
	for reason, n := range drops {
		l.metrics.RecordDropped(reason, n)
	}
	l.metrics.RecordMergedEdges(d.MergedEdges)
	if d.MergedEdges > 0 {
		l.logger.Info("duplicate edges merged", logging.Count(d.MergedEdges))
	}
	if d.Dropped() > 0 {
		l.logger.Warn("snapshot records dropped",
			logging.Count(d.Dropped()),
			logging.Int("dangling_edges", d.DanglingEdges),
			logging.Int("invalid_nodes", d.InvalidNodes))
	}
}
