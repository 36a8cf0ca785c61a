package camera

import (
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// Config bounds and paces camera movement.
type Config struct {
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`
	// FitPadding is the share of the bounds added around a fit.
	FitPadding float64 `yaml:"fit_padding"`
	// FocusScale is the scale CenterOnNode uses when none is given.
	FocusScale        float64       `yaml:"focus_scale"`
	ZoomStep          float64       `yaml:"zoom_step"`
	AnimationDuration time.Duration `yaml:"animation_duration"`
}

// DefaultConfig returns the camera defaults.
func DefaultConfig() Config {
	return Config{
		MinScale:          0.01,
		MaxScale:          20,
		FitPadding:        0.1,
		FocusScale:        2,
		ZoomStep:          1.2,
		AnimationDuration: 400 * time.Millisecond,
	}
}

// Validate checks the scale range and animation settings.
func (c Config) Validate() error {
	return validation.NewConfigValidator("camera").
		PositiveFloat("min_scale", c.MinScale).
		PositiveFloat("max_scale", c.MaxScale).
		OrderedFloat("min_scale", c.MinScale, "max_scale", c.MaxScale).
		NonNegativeFloat("fit_padding", c.FitPadding).
		PositiveFloat("focus_scale", c.FocusScale).
		Custom("zoom_step", func() error {
			if !(c.ZoomStep > 1) {
				return errZoomStep
			}
			return nil
		}).
		NonNegativeDuration("animation_duration", c.AnimationDuration).
		Validate()
}
