package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/camera"
	"github.com/dd0wney/cluso-netviz/pkg/events"
	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// ErrSurfaceUnavailable is the cause of every failed surface.
var ErrSurfaceUnavailable = errors.New("render surface unavailable")

// SurfaceError describes a backend that could not be created or used.
type SurfaceError struct {
	Op      string
	Backend string
	Cause   error
}

// Error implements the error interface.
func (e *SurfaceError) Error() string {
	return fmt.Sprintf("%s %s surface: %v", e.Op, e.Backend, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SurfaceError) Unwrap() error {
	return e.Cause
}

// Is matches ErrSurfaceUnavailable and anything in the cause chain.
func (e *SurfaceError) Is(target error) bool {
	if target == nil {
		return false
	}
	return target == ErrSurfaceUnavailable || errors.Is(e.Cause, target)
}

// SurfaceState is the bootstrap state of a Surface.
type SurfaceState int

const (
	WaitingForContainer SurfaceState = iota
	Ready
	Initialized
	Failed
)

func (s SurfaceState) String() string {
	switch s {
	case WaitingForContainer:
		return "waiting_for_container"
	case Ready:
		return "ready"
	case Initialized:
		return "initialized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Factory creates the drawing backend once the container has a size.
type Factory func() (Canvas, error)

// SurfaceOptions carries optional collaborators.
type SurfaceOptions struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Bus     *events.Bus
}

// Surface bootstraps a Canvas on the frame loop. It waits for a non-empty
// viewport, becomes Ready, and creates the backend on the next frame. A
// factory error is terminal until Retry.
type Surface struct {
	loop    *frame.Loop
	backend string
	factory Factory
	logger  logging.Logger
	metrics *metrics.Registry
	bus     *events.Bus

	state    SurfaceState
	viewport camera.Viewport
	canvas   Canvas
	err      error
	frameID  frame.ID
	pending  bool
}

// NewSurface returns a surface waiting for its container.
func NewSurface(loop *frame.Loop, backend string, factory Factory, opts SurfaceOptions) *Surface {
	return &Surface{
		loop:    loop,
		backend: backend,
		factory: factory,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("surface"), logging.String("backend", backend)),
		metrics: opts.Metrics,
		bus:     opts.Bus,
	}
}

// State returns the bootstrap state.
func (s *Surface) State() SurfaceState { return s.state }

// Backend names the backend the factory builds.
func (s *Surface) Backend() string { return s.backend }

// Err returns the failure, nil unless Failed.
func (s *Surface) Err() error { return s.err }

// Viewport returns the container size last reported.
func (s *Surface) Viewport() camera.Viewport { return s.viewport }

// Message is the human-readable text shown in place of a failed surface.
func (s *Surface) Message() string {
	if s.state != Failed || s.err == nil {
		return ""
	}
	return fmt.Sprintf("The graph view could not be started (%v). Retry to try again.", s.err)
}

// SetViewport records the container size. A surface still waiting for its
// container schedules the next bootstrap step.
func (s *Surface) SetViewport(v camera.Viewport) {
	s.viewport = v
	if s.state == WaitingForContainer && !v.IsEmpty() {
		s.schedule()
	}
}

// Canvas returns the backend. It fails with a *SurfaceError wrapping
// ErrSurfaceUnavailable unless the surface is Initialized.
func (s *Surface) Canvas() (Canvas, error) {
	if s.state == Initialized {
		return s.canvas, nil
	}
	if s.state == Failed {
		return nil, s.err
	}
	return nil, &SurfaceError{Op: "draw", Backend: s.backend,
		Cause: fmt.Errorf("%w: state %s", ErrSurfaceUnavailable, s.state)}
}

// Retry sends a failed surface back to WaitingForContainer. It returns
// false when the surface had not failed.
func (s *Surface) Retry() bool {
	if s.state != Failed {
		return false
	}
	s.err = nil
	s.canvas = nil
	s.transition(WaitingForContainer)
	if !s.viewport.IsEmpty() {
		s.schedule()
	}
	return true
}

// Fail moves the surface to Failed, for errors found while drawing.
func (s *Surface) Fail(op string, err error) {
	if err == nil || s.state == Failed {
		return
	}
	var se *SurfaceError
	if !errors.As(err, &se) {
		se = &SurfaceError{Op: op, Backend: s.backend, Cause: fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)}
	}
	s.err = se
	s.canvas = nil
	s.metrics.RecordSurfaceError()
	s.logger.Error("render surface failed", logging.Operation(op), logging.Error(err))
	s.transition(Failed)
}

// Close cancels any pending bootstrap frame.
func (s *Surface) Close() {
	if s.pending {
		s.loop.Cancel(s.frameID)
		s.pending = false
	}
}

func (s *Surface) schedule() {
	if s.pending {
		return
	}
	s.pending = true
	s.frameID = s.loop.Request(s.onFrame)
}

func (s *Surface) onFrame(time.Time) {
	s.pending = false
	switch s.state {
	case WaitingForContainer:
		if s.viewport.IsEmpty() {
			return
		}
		s.transition(Ready)
		s.schedule()
	case Ready:
		c, err := s.factory()
		if err == nil && c == nil {
			err = errors.New("factory returned no canvas")
		}
		if err != nil {
			s.Fail("create", err)
			return
		}
		s.canvas = c
		s.transition(Initialized)
	}
}

func (s *Surface) transition(to SurfaceState) {
	if s.state == to {
		return
	}
	s.logger.Debug("surface transition",
		logging.String("from", s.state.String()), logging.String("to", to.String()))
	s.state = to
	s.bus.Publish(events.TopicSurface, events.SurfaceStateChanged{State: to.String(), Message: s.Message()})
}
