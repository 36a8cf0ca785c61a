package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/layout"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestParseOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
layout:
  adaptive: false
  total_iterations: 120
  seeding: circular
  timeout: 5s
render:
  dim_opacity: 0.2
camera:
  max_scale: 8
interaction:
  keys:
    z: fit
graph:
  min_edge_weight: 2
ranking:
  method: degree
  top: 3
geo:
  enabled: true
  projection: equirectangular
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	def := Default()
	if cfg.Layout.TotalIterations != 120 || cfg.Layout.Seeding != layout.SeedCircular {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Layout.Timeout)
	}
	if cfg.Layout.BatchSize != def.Layout.BatchSize {
		t.Errorf("unset batch_size changed to %d", cfg.Layout.BatchSize)
	}
	if cfg.Render.DimOpacity != 0.2 || cfg.Render.DefaultOpacity != def.Render.DefaultOpacity {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Camera.MaxScale != 8 || cfg.Camera.MinScale != def.Camera.MinScale {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.Interaction.Keys["z"] != interaction.ActionFit || cfg.Interaction.Keys["f"] != interaction.ActionFit {
		t.Errorf("keys should merge with the defaults: %v", cfg.Interaction.Keys)
	}
	if cfg.Graph.MinEdgeWeight != 2 || cfg.Ranking.Top != 3 || !cfg.Geo.Enabled {
		t.Errorf("graph/ranking/geo = %+v %+v %+v", cfg.Graph, cfg.Ranking, cfg.Geo)
	}
	if cfg.LogLevel() != logging.DebugLevel {
		t.Errorf("level = %v", cfg.LogLevel())
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "layout:\n  total_iteratons: 10\n"},
		{"bad ranking", "ranking:\n  method: betweenness\n"},
		{"bad projection", "geo:\n  projection: robinson\n"},
		{"camera range", "camera:\n  min_scale: 5\n  max_scale: 1\n"},
		{"dim above default", "render:\n  dim_opacity: 0.95\n"},
		{"unknown action", "interaction:\n  keys:\n    q: explode\n"},
		{"negative weight", "graph:\n  min_edge_weight: -1\n"},
		{"bad level", "logging:\n  level: verbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Layout.Adaptive || cfg.Ranking.Method != "pagerank" {
		t.Errorf("empty file should yield defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netviz.yaml")
	if err := os.WriteFile(path, []byte("ranking:\n  top: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ranking.Top != 7 {
		t.Errorf("top = %d, want 7 from $%s", cfg.Ranking.Top, EnvConfig)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want the env override", cfg.Logging.Level)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLayoutFor(t *testing.T) {
	cfg := Default()
	cfg.Layout.Seeding = layout.SeedRadial
	cfg.Layout.Timeout = time.Second

	got := cfg.LayoutFor(5000, 40000)
	if got.Seeding != layout.SeedRadial || got.Timeout != time.Second {
		t.Errorf("host choices lost: %+v", got)
	}
	if !got.LinLogMode {
		t.Error("dense graph should switch to LinLog")
	}

	cfg.Layout.Adaptive = false
	cfg.Layout.TotalIterations = 42
	if cfg.LayoutFor(5000, 40000).TotalIterations != 42 {
		t.Error("fixed layout config should pass through")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Write(&buf); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(&buf)
	if err != nil {
		t.Fatalf("written defaults do not parse: %v\n%s", err, buf.String())
	}
	if cfg.Camera != Default().Camera || cfg.Render != Default().Render {
		t.Error("round trip changed values")
	}
}
