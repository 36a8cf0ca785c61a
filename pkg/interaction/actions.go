package interaction

import (
	"errors"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

var (
	// ErrNoLayout is returned for a relayout with no scheduler attached.
	ErrNoLayout = errors.New("interaction: no layout scheduler")
	// ErrUnknownAction is returned by Perform for an unbound action.
	ErrUnknownAction = errors.New("interaction: unknown action")
)

// Key runs the action bound to key. Unbound keys return ActionNone and no
// error.
func (c *Controller) Key(key string) (Action, error) {
	a, ok := c.cfg.Keys[key]
	if !ok {
		return ActionNone, nil
	}
	return a, c.Perform(a)
}

// Perform runs a. Centering and isolating need a selection and return
// viewstate.ErrNoSelection without one.
func (c *Controller) Perform(a Action) error {
	cam := c.deps.Camera
	var err error
	switch a {
	case ActionFit:
		cam.FitToBounds(c.deps.Model.FitBounds(), cam.Config().FitPadding, true)
	case ActionRelayout:
		if c.deps.Layout == nil {
			err = ErrNoLayout
		} else {
			c.deps.Layout.Start()
		}
	case ActionCenterSelection:
		n, ok := c.deps.Model.Node(c.deps.View.Selected())
		if !ok || !n.Seeded {
			err = viewstate.ErrNoSelection
			break
		}
		cam.CenterOn(n.Position, cam.Config().FocusScale, true)
	case ActionClearSelection:
		c.deps.View.ClearSelection()
	case ActionToggleIsolation:
		_, err = c.deps.View.ToggleIsolation()
	case ActionZoomIn:
		cam.ZoomIn()
	case ActionZoomOut:
		cam.ZoomOut()
	default:
		return ErrUnknownAction
	}
	c.metrics.RecordInteraction("action_" + string(a))
	if err != nil {
		c.logger.Debug("action refused", logging.Operation(string(a)), logging.Error(err))
	}
	return err
}
