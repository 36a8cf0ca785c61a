// Package config loads the explorer's YAML configuration. Every section
// starts from its package defaults; a file only overrides what it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netviz/pkg/algorithms"
	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/dataset"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/layout"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/render"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "NETVIZ_CONFIG"

// EnvLogLevel overrides logging.level.
const EnvLogLevel = "NETVIZ_LOG_LEVEL"

// Layout wraps the engine parameters. With Adaptive set, the force
// parameters are derived from the graph size at load; seeding and timeout
// still come from the file.
type Layout struct {
	Adaptive      bool `yaml:"adaptive"`
	layout.Config `yaml:",inline"`
}

// Graph holds load-time graph options.
type Graph struct {
	MinEdgeWeight float64 `yaml:"min_edge_weight"`
}

// Ranking picks the always-labelled nodes.
type Ranking struct {
	Method string `yaml:"method"`
	Top    int    `yaml:"top"`
}

// Geo configures map synchronisation.
type Geo struct {
	Enabled    bool    `yaml:"enabled"`
	Projection string  `yaml:"projection"`
	Zoom       float64 `yaml:"zoom"`
}

// Logging configures the structured logger.
type Logging struct {
	Level string `yaml:"level"`
	// File receives log lines; empty means stderr.
	File string `yaml:"file"`
}

// Metrics configures the optional Prometheus endpoint.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Config is the whole file.
type Config struct {
	Layout      Layout             `yaml:"layout"`
	Render      render.Config      `yaml:"render"`
	Camera      camera.Config      `yaml:"camera"`
	Interaction interaction.Config `yaml:"interaction"`
	Graph       Graph              `yaml:"graph"`
	Ranking     Ranking            `yaml:"ranking"`
	Geo         Geo                `yaml:"geo"`
	S3          dataset.S3Config   `yaml:"s3"`
	Logging     Logging            `yaml:"logging"`
	Metrics     Metrics            `yaml:"metrics"`
}

// Default returns a configuration made of every package's defaults.
func Default() Config {
	return Config{
		Layout:      Layout{Adaptive: true, Config: layout.DefaultConfig()},
		Render:      render.DefaultConfig(),
		Camera:      camera.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
		Ranking:     Ranking{Method: string(algorithms.RankPageRank), Top: 10},
		Geo:         Geo{Projection: "web_mercator", Zoom: 2},
		Logging:     Logging{Level: "info"},
	}
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path, or returns the defaults when path is empty. An empty
// path falls back to $NETVIZ_CONFIG.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

func (c *Config) applyEnv() {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Logging.Level = strings.ToLower(lvl)
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.NewConfigValidator("netviz").
		Custom("layout", c.Layout.Config.Validate).
		Custom("render", c.Render.Validate).
		Custom("camera", c.Camera.Validate).
		Custom("interaction", c.Interaction.Validate).
		NonNegativeFloat("graph.min_edge_weight", c.Graph.MinEdgeWeight).
		OneOf("ranking.method", c.Ranking.Method, []string{
			string(algorithms.RankPageRank), string(algorithms.RankDegree), string(algorithms.RankCount),
		}).
		NonNegative("ranking.top", c.Ranking.Top).
		OneOf("geo.projection", c.Geo.Projection, []string{"web_mercator", "equirectangular"}).
		RangeFloat("geo.zoom", c.Geo.Zoom, 0, 22).
		OneOf("logging.level", c.Logging.Level, []string{"debug", "info", "warn", "error"}).
		Validate()
}

// LogLevel returns the configured level.
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// LayoutFor returns the engine parameters for a graph of the given size.
func (c Config) LayoutFor(nodes, edges int) layout.Config {
	if !c.Layout.Adaptive {
		return c.Layout.Config
	}
	adaptive := layout.Adaptive(nodes, edges)
	// seeding and timing are host choices, not size-dependent
	adaptive.Seeding = c.Layout.Seeding
	adaptive.Seed = c.Layout.Seed
	adaptive.Timeout = c.Layout.Timeout
	return adaptive
}

// Write encodes c as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
