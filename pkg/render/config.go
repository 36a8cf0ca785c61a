package render

import (
	"errors"

	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

var errDimOpacity = errors.New("must be below default_opacity")

// Config controls sizing, emphasis and level of detail.
type Config struct {
	NodeMinSize float64 `yaml:"node_min_size"`
	NodeMaxSize float64 `yaml:"node_max_size"`

	EdgeMinWidth float64 `yaml:"edge_min_width"`
	EdgeMaxWidth float64 `yaml:"edge_max_width"`
	// EdgeWidthBoost multiplies the width of edges incident to the focus.
	EdgeWidthBoost float64 `yaml:"edge_width_boost"`

	DefaultOpacity float64 `yaml:"default_opacity"`
	DimOpacity     float64 `yaml:"dim_opacity"`
	EdgeOpacity    float64 `yaml:"edge_opacity"`

	// A label is drawn when radius*scale*LabelDensity reaches
	// LabelSizeThreshold, so zooming in reveals more labels.
	LabelDensity       float64 `yaml:"label_density"`
	LabelSizeThreshold float64 `yaml:"label_size_threshold"`
	LabelSize          float64 `yaml:"label_size"`
	// ImportantLabels is how many top-ranked nodes always get a label.
	ImportantLabels int `yaml:"important_labels"`

	// EdgeHideRatio: when the camera ratio (1/scale) exceeds it, only edges
	// touching the selected, hovered or highlighted nodes are drawn.
	EdgeHideRatio float64 `yaml:"edge_hide_ratio"`
}

// DefaultConfig returns the render defaults.
func DefaultConfig() Config {
	return Config{
		NodeMinSize:        3,
		NodeMaxSize:        15,
		EdgeMinWidth:       0.5,
		EdgeMaxWidth:       4,
		EdgeWidthBoost:     1.5,
		DefaultOpacity:     0.9,
		DimOpacity:         0.15,
		EdgeOpacity:        0.6,
		LabelDensity:       1,
		LabelSizeThreshold: 12,
		LabelSize:          12,
		ImportantLabels:    10,
		EdgeHideRatio:      4,
	}
}

// Validate checks sizes, opacities and thresholds.
func (c Config) Validate() error {
	return validation.NewConfigValidator("render").
		NonNegativeFloat("node_min_size", c.NodeMinSize).
		OrderedFloat("node_min_size", c.NodeMinSize, "node_max_size", c.NodeMaxSize).
		NonNegativeFloat("edge_min_width", c.EdgeMinWidth).
		OrderedFloat("edge_min_width", c.EdgeMinWidth, "edge_max_width", c.EdgeMaxWidth).
		RangeFloat("edge_width_boost", c.EdgeWidthBoost, 1, 10).
		RangeFloat("default_opacity", c.DefaultOpacity, 0, 1).
		RangeFloat("dim_opacity", c.DimOpacity, 0, 1).
		Custom("dim_opacity", func() error {
			if c.DimOpacity >= c.DefaultOpacity {
				return errDimOpacity
			}
			return nil
		}).
		RangeFloat("edge_opacity", c.EdgeOpacity, 0, 1).
		PositiveFloat("label_density", c.LabelDensity).
		NonNegativeFloat("label_size_threshold", c.LabelSizeThreshold).
		PositiveFloat("label_size", c.LabelSize).
		NonNegative("important_labels", c.ImportantLabels).
		PositiveFloat("edge_hide_ratio", c.EdgeHideRatio).
		Validate()
}
