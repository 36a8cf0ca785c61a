package interaction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

var errWheelStep = errors.New("must be greater than 1")

// Action is a keyboard-triggered command.
type Action string

const (
	ActionNone            Action = ""
	ActionFit             Action = "fit"
	ActionRelayout        Action = "relayout"
	ActionCenterSelection Action = "center_selection"
	ActionClearSelection  Action = "clear_selection"
	ActionToggleIsolation Action = "toggle_isolation"
	ActionZoomIn          Action = "zoom_in"
	ActionZoomOut         Action = "zoom_out"
)

var knownActions = []string{
	string(ActionFit),
	string(ActionRelayout),
	string(ActionCenterSelection),
	string(ActionClearSelection),
	string(ActionToggleIsolation),
	string(ActionZoomIn),
	string(ActionZoomOut),
}

// Config tunes pointer handling and the key bindings.
type Config struct {
	// DragThreshold is how far, in screen units, a press may move before it
	// turns into a drag.
	DragThreshold float64 `yaml:"drag_threshold"`
	// WheelStep is the zoom factor of one wheel notch.
	WheelStep float64 `yaml:"wheel_step"`
	// Keys maps key names to actions.
	Keys map[string]Action `yaml:"keys"`
}

// DefaultKeys returns the stock bindings.
func DefaultKeys() map[string]Action {
	return map[string]Action{
		"f":   ActionFit,
		"r":   ActionRelayout,
		"c":   ActionCenterSelection,
		"esc": ActionClearSelection,
		"i":   ActionToggleIsolation,
		"+":   ActionZoomIn,
		"=":   ActionZoomIn,
		"-":   ActionZoomOut,
	}
}

// DefaultConfig returns the interaction defaults.
func DefaultConfig() Config {
	return Config{
		DragThreshold: 4,
		WheelStep:     1.1,
		Keys:          DefaultKeys(),
	}
}

// Validate checks thresholds and that every binding names a known action.
func (c Config) Validate() error {
	v := validation.NewConfigValidator("interaction").
		NonNegativeFloat("drag_threshold", c.DragThreshold).
		Custom("wheel_step", func() error {
			if !(c.WheelStep > 1) {
				return errWheelStep
			}
			return nil
		})
	keys := make([]string, 0, len(c.Keys))
	for k := range c.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.OneOf(fmt.Sprintf("keys[%s]", k), string(c.Keys[k]), knownActions)
	}
	return v.Validate()
}

// Bindings returns the keys bound to a, sorted, for help text.
func (c Config) Bindings(a Action) []string {
	var out []string
	for k, act := range c.Keys {
		if act == a {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
