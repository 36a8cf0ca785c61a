// Package scheduler drives a layout.Engine in bounded batches, one batch per
// frame, so the host stays responsive while a layout converges.
package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netviz/pkg/events"
	"github.com/dd0wney/cluso-netviz/pkg/frame"
	"github.com/dd0wney/cluso-netviz/pkg/layout"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// State is the run state of a Scheduler.
type State int

const (
	Idle State = iota
	Running
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Phase is the part of a run a batch belongs to.
type Phase string

const (
	PhaseForce   Phase = "force"
	PhaseOverlap Phase = "overlap"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
	OutcomeTimeout   Outcome = "timeout"
)

// Progress is reported after every batch.
type Progress struct {
	RunID     string
	IsRunning bool
	Progress  float64
	Done      int
	Total     int
	Phase     Phase
}

// Result describes a finished run.
type Result struct {
	RunID      string
	Outcome    Outcome
	Iterations int
	Duration   time.Duration
	Overlap    layout.OverlapStats
}

// Options carries optional collaborators and callbacks. Callbacks run on the
// frame goroutine.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Bus     *events.Bus
	// Clock defaults to time.Now; only used for run durations.
	Clock func() time.Time

	OnProgress func(Progress)
	// OnFinish fires exactly once per run that reaches Completed.
	OnFinish func(Result)
}

// Scheduler runs the layout state machine Idle → Running → Stopped |
// Completed. Every Start and Stop bumps a run token; a frame callback
// scheduled under an older token is a no-op, so no batch runs after Stop.
type Scheduler struct {
	engine  *layout.Engine
	loop    *frame.Loop
	opts    Options
	logger  logging.Logger
	metrics *metrics.Registry

	state   State
	token   uint64
	frameID frame.ID
	paused  bool

	runID        string
	phase        Phase
	done         int
	forceTotal   int
	overlapTotal int
	overlapDone  int
	overlap      layout.OverlapStats
	started      time.Time
	firstFrame   time.Time
	finished     bool
}

// New creates an idle scheduler.
func New(engine *layout.Engine, loop *frame.Loop, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Scheduler{
		engine:  engine,
		loop:    loop,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("scheduler")),
		metrics: opts.Metrics,
	}
}

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// IsRunning reports whether a run is in progress.
func (s *Scheduler) IsRunning() bool { return s.state == Running }

// RunID identifies the current or last run.
func (s *Scheduler) RunID() string { return s.runID }

// Paused reports whether batches are held off.
func (s *Scheduler) Paused() bool { return s.paused }

// Start begins a run. It returns false without side effects while a run is
// in progress, and when the graph is empty.
func (s *Scheduler) Start() bool {
	if s.state == Running {
		return false
	}
	if s.engine.Model().IsEmpty() {
		s.logger.Debug("layout start skipped on empty graph")
		return false
	}

	cfg := s.engine.Config()
	s.token++
	s.state = Running
	s.finished = false
	s.runID = uuid.NewString()
	s.phase = PhaseForce
	s.done = 0
	s.forceTotal = cfg.TotalIterations
	s.overlapTotal = 0
	if cfg.AdjustOverlap {
		s.overlapTotal = cfg.OverlapMaxIterations
	}
	s.overlapDone = 0
	s.overlap = layout.OverlapStats{}
	s.started = s.opts.Clock()
	s.firstFrame = time.Time{}

	s.engine.Reset()
	s.engine.Seed()
	s.metrics.SetLayoutRunning(true)

	s.logger.Info("layout started",
		logging.RunID(s.runID),
		logging.Nodes(s.engine.Model().Len()),
		logging.Edges(s.engine.Model().EdgeCount()),
		logging.Iterations(s.forceTotal),
		logging.Int("batch_size", cfg.BatchSize),
		logging.Bool("approximate", s.engine.UsesApproximation()),
	)
	s.schedule()
	return true
}

// Stop ends the current run. It is a no-op unless Running.
func (s *Scheduler) Stop() {
	s.end(OutcomeStopped)
}

// Pause holds off batches until Resume. The hold does not depend on the run
// state: a run started or ended while held keeps the hold, so the node-drag
// path stays exclusive with every layout run.
func (s *Scheduler) Pause() {
	s.paused = true
}

// Resume releases the hold set by Pause.
func (s *Scheduler) Resume() {
	s.paused = false
}

// Progress returns the current progress snapshot.
func (s *Scheduler) Progress() Progress {
	total := s.forceTotal + s.overlapTotal
	p := Progress{
		RunID:     s.runID,
		IsRunning: s.state == Running,
		Done:      s.done,
		Total:     total,
		Phase:     s.phase,
	}
	switch {
	case total > 0:
		p.Progress = float64(s.done) / float64(total)
	case s.state == Completed:
		p.Progress = 1
	}
	return p
}

func (s *Scheduler) schedule() {
	token := s.token
	s.frameID = s.loop.Request(func(now time.Time) {
		s.runBatch(token, now)
	})
}

func (s *Scheduler) runBatch(token uint64, now time.Time) {
	if token != s.token || s.state != Running {
		return
	}
	if s.firstFrame.IsZero() {
		s.firstFrame = now
	}

	cfg := s.engine.Config()
	if cfg.Timeout > 0 && now.Sub(s.firstFrame) >= cfg.Timeout {
		s.end(OutcomeTimeout)
		return
	}
	if s.paused {
		s.schedule()
		return
	}

	switch s.phase {
	case PhaseForce:
		s.forceBatch(cfg)
	case PhaseOverlap:
		s.overlapBatch(cfg)
	}
	if s.done >= s.forceTotal+s.overlapTotal {
		s.end(OutcomeCompleted)
		return
	}
	s.reportProgress()
	s.schedule()
}

func (s *Scheduler) forceBatch(cfg layout.Config) {
	n := min(cfg.BatchSize, s.forceTotal-s.done)
	start := time.Now()
	stats := s.engine.Step(n)
	s.metrics.RecordLayoutBatch(string(PhaseForce), stats.Iterations, time.Since(start))

	s.done += n
	if s.done >= s.forceTotal && s.overlapTotal > 0 {
		s.phase = PhaseOverlap
	}
}

func (s *Scheduler) overlapBatch(cfg layout.Config) {
	n := min(cfg.BatchSize, s.overlapTotal-s.overlapDone)
	start := time.Now()
	stats := s.engine.AdjustOverlap(n)
	s.metrics.RecordLayoutBatch(string(PhaseOverlap), stats.Iterations, time.Since(start))

	s.overlap.Iterations += stats.Iterations
	s.overlap.Resolved += stats.Resolved
	s.overlap.Remaining = stats.Remaining

	s.overlapDone += n
	s.done += n
	if stats.Converged() {
		// nothing left to separate: skip the rest of the budget
		s.done = s.forceTotal + s.overlapTotal
		s.overlapDone = s.overlapTotal
	}
}

func (s *Scheduler) reportProgress() {
	p := s.Progress()
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
	s.opts.Bus.Publish(events.TopicLayoutProgress, events.LayoutProgress{
		RunID:     p.RunID,
		IsRunning: p.IsRunning,
		Progress:  p.Progress,
		Done:      p.Done,
		Total:     p.Total,
		Phase:     string(p.Phase),
	})
}

// end moves a Running scheduler to its terminal state. The token bump and
// the frame cancellation together guarantee no further batch runs.
func (s *Scheduler) end(outcome Outcome) {
	if s.state != Running {
		return
	}
	s.token++
	s.loop.Cancel(s.frameID)

	if outcome == OutcomeCompleted {
		s.state = Completed
	} else {
		s.state = Stopped
	}

	result := Result{
		RunID:      s.runID,
		Outcome:    outcome,
		Iterations: s.done,
		Duration:   s.opts.Clock().Sub(s.started),
		Overlap:    s.overlap,
	}

	s.metrics.SetLayoutRunning(false)
	s.metrics.RecordLayoutRun(string(outcome), result.Duration)
	s.logger.Info("layout finished",
		logging.RunID(result.RunID),
		logging.String("reason", string(outcome)),
		logging.Iterations(result.Iterations),
		logging.Duration("duration", result.Duration),
		logging.Int("overlaps_remaining", result.Overlap.Remaining),
	)

	s.reportProgress()
	s.opts.Bus.Publish(events.TopicLayoutFinished, events.LayoutFinished{
		RunID:      result.RunID,
		Outcome:    string(result.Outcome),
		Iterations: result.Iterations,
		Duration:   result.Duration,
	})

	if outcome == OutcomeCompleted && !s.finished {
		s.finished = true
		if s.opts.OnFinish != nil {
			s.opts.OnFinish(result)
		}
	}
}
