package main

import (
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/dataset"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "graph.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	err = dataset.Encode(f, graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{
			{ID: "person:a", Label: "Alpha", Type: "person", Count: 4},
			{ID: "person:b", Label: "Beta", Type: "person", Count: 2},
			{ID: "location:c", Label: "Gamma", Type: "location", Count: 1, Coordinates: []float64{51.5, -0.12}},
		},
		Edges: []graphmodel.SnapshotEdge{
			{Source: "person:a", Target: "person:b", Weight: 3},
			{Source: "person:b", Target: "location:c", Weight: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	o := options{
		data:      writeSnapshot(t, dir),
		width:     320,
		height:    200,
		timeout:   time.Minute,
		png:       filepath.Join(dir, "out.png"),
		svg:       filepath.Join(dir, "out.svg.sz"),
		positions: filepath.Join(dir, "positions.json"),
		selectID:  "person:a",
		isolate:   true,
		highlight: "person:b, missing",
	}
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(o.png)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("png size = %v, want 320x200", b)
	}

	if info, err := os.Stat(o.svg); err != nil || info.Size() == 0 {
		t.Errorf("compressed svg not written: %v", err)
	}

	raw, err := os.ReadFile(o.positions)
	if err != nil {
		t.Fatal(err)
	}
	var pos struct {
		Nodes []struct {
			ID   string
			X, Y float64
		}
	}
	if err := json.Unmarshal(raw, &pos); err != nil {
		t.Fatalf("positions json: %v", err)
	}
	if len(pos.Nodes) != 3 {
		t.Fatalf("positions has %d nodes, want 3", len(pos.Nodes))
	}
	for _, n := range pos.Nodes {
		if n.X < 0 || n.X > 320 || n.Y < 0 || n.Y > 200 {
			t.Errorf("%s at (%v, %v) is outside the box", n.ID, n.X, n.Y)
		}
	}
}

func TestRunGeoJSON(t *testing.T) {
	dir := t.TempDir()
	o := options{
		data:    writeSnapshot(t, dir),
		width:   320,
		height:  200,
		timeout: time.Minute,
		geo:     true,
		geojson: filepath.Join(dir, "out.geojson"),
	}
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("run: %v", err)
	}
	raw, err := os.ReadFile(o.geojson)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"FeatureCollection"`) || !strings.Contains(string(raw), "location:c") {
		t.Errorf("unexpected geojson: %s", raw)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		o    options
		want string
	}{
		{"no data", options{}, "no snapshot"},
		{"isolate without select", options{data: writeSnapshot(t, dir), width: 10, height: 10, timeout: time.Minute,
			isolate: true, png: filepath.Join(dir, "x.png")}, "-isolate needs -select"},
		{"unknown highlight", options{data: writeSnapshot(t, dir), width: 10, height: 10, timeout: time.Minute,
			highlight: "nope", png: filepath.Join(dir, "y.png")}, "none of the highlighted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.o)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSizeFromEnv(t *testing.T) {
	t.Setenv("NETVIZ_TEST_WIDTH", "640")
	if got := sizeFromEnv(0, "NETVIZ_TEST_WIDTH", 100); got != 640 {
		t.Errorf("env size = %d, want 640", got)
	}
	if got := sizeFromEnv(50, "NETVIZ_TEST_WIDTH", 100); got != 50 {
		t.Errorf("flag size = %d, want 50", got)
	}
	t.Setenv("NETVIZ_TEST_WIDTH", "bogus")
	if got := sizeFromEnv(0, "NETVIZ_TEST_WIDTH", 100); got != 100 {
		t.Errorf("default size = %d, want 100", got)
	}
}
