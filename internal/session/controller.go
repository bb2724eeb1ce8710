package session

import (
	"github.com/google/uuid"

	"github.com/verte-zerg/rhythmtap/internal/audio"
	"github.com/verte-zerg/rhythmtap/internal/debug"
	"github.com/verte-zerg/rhythmtap/internal/model"
)

// Clock reports monotonic time in milliseconds.
type Clock interface {
	Now() float64
}

// Scheduler arms timers on behalf of the controller. A fired timer must be
// passed back through Controller.Fire on the controller's loop.
type Scheduler interface {
	Arm(t Timer)
	CancelAll()
}

// Controller drives the state machine and executes its commands. It is not
// safe for concurrent use: every method must be called from the single loop
// that also receives timer fires.
type Controller struct {
	state     State
	clock     Clock
	sched     Scheduler
	clicker   audio.Clicker
	onFinish  func(model.ScoreSummary)
	attemptID string
}

// Options configures a Controller.
type Options struct {
	ToleranceMs float64
	OffsetMs    float64
	Clicker     audio.Clicker
	OnFinish    func(model.ScoreSummary)
}

// NewController returns an idle controller with no score selected.
func NewController(clock Clock, sched Scheduler, opts Options) *Controller {
	clicker := opts.Clicker
	if clicker == nil {
		clicker = audio.Silent{}
	}
	return &Controller{
		state:    NewState(opts.ToleranceMs, opts.OffsetMs),
		clock:    clock,
		sched:    sched,
		clicker:  clicker,
		onFinish: opts.OnFinish,
	}
}

// Dispatch stamps the event with the current clock reading and applies it.
func (c *Controller) Dispatch(ev Event) error {
	ev.At = c.clock.Now()
	prev := c.state.Phase
	next, cmds, err := Step(c.state, ev)
	if err != nil {
		debug.Log("session", "%s %s rejected: %v", c.attemptID, ev.Kind, err)
		return err
	}
	c.state = next
	if prev == model.PhaseIdle && next.Phase == model.PhaseCountIn {
		c.attemptID = uuid.NewString()
	}
	if prev != next.Phase {
		debug.Log("session", "%s %s -> %s at %.1fms", c.attemptID, prev, next.Phase, ev.At)
	}
	c.execute(cmds)
	return nil
}

func (c *Controller) execute(cmds []Command) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case CommandArmTimer:
			c.sched.Arm(cmd.Timer)
		case CommandCancelTimers:
			c.sched.CancelAll()
		case CommandClick:
			c.clicker.Click(cmd.Accent)
		case CommandFinished:
			s := *cmd.Summary
			debug.Log("session", "%s finished: %d/%d ok, %d extra, accuracy %d%%",
				c.attemptID, s.OKCount, s.TotalNotes, s.ExtraHits, s.Accuracy)
			if c.onFinish != nil {
				c.onFinish(s)
			}
		}
	}
}

// Select makes score the active score, resetting a running session.
func (c *Controller) Select(score model.RhythmScore) error {
	return c.Dispatch(Event{Kind: EventSelectScore, Score: score})
}

// Start begins the count-in. It is a no-op unless the session is idle.
func (c *Controller) Start() error {
	return c.Dispatch(Event{Kind: EventStart})
}

// Restart resets and starts again.
func (c *Controller) Restart() error {
	c.Reset()
	return c.Start()
}

// Tap records a tap while playing.
func (c *Controller) Tap() {
	_ = c.Dispatch(Event{Kind: EventTap})
}

// Stop finalizes a running session early.
func (c *Controller) Stop() {
	_ = c.Dispatch(Event{Kind: EventStop})
}

// Reset returns to idle, clearing taps and the summary.
func (c *Controller) Reset() {
	_ = c.Dispatch(Event{Kind: EventReset})
}

// Fire delivers an expired timer.
func (c *Controller) Fire(t Timer) {
	_ = c.Dispatch(Event{Kind: EventTimer, Timer: t})
}

// Dispose cancels all timers and releases the audio output.
func (c *Controller) Dispose() error {
	c.Reset()
	return c.clicker.Close()
}

// Phase returns the current phase.
func (c *Controller) Phase() model.Phase { return c.state.Phase }

// Score returns the selected score and whether one is selected.
func (c *Controller) Score() (model.RhythmScore, bool) { return c.state.Score, c.state.HasScore }

// Onsets returns the expected onsets of the selected score.
func (c *Controller) Onsets() []model.ExpectedOnset {
	return append([]model.ExpectedOnset(nil), c.state.Plan.Onsets...)
}

// Taps returns a copy of the captured tap timestamps.
func (c *Controller) Taps() []float64 { return append([]float64(nil), c.state.Taps...) }

// TapCount returns the number of taps captured this session.
func (c *Controller) TapCount() int { return c.state.TapCount }

// CountInLeft returns the count-in beats still to click.
func (c *Controller) CountInLeft() int { return c.state.CountInLeft }

// Summary returns the result of the finished session, if any.
func (c *Controller) Summary() (model.ScoreSummary, bool) {
	if c.state.Summary == nil {
		return model.ScoreSummary{}, false
	}
	return *c.state.Summary, true
}

// Elapsed returns milliseconds since playback started, or 0 when not playing.
func (c *Controller) Elapsed() float64 {
	if c.state.Phase != model.PhasePlaying {
		return 0
	}
	return c.clock.Now() - c.state.T0
}

// Progress returns playback progress in [0, 1].
func (c *Controller) Progress() float64 {
	switch c.state.Phase {
	case model.PhaseFinished:
		return 1
	case model.PhasePlaying:
		if c.state.Plan.TotalMs <= 0 {
			return 0
		}
		p := c.Elapsed() / c.state.Plan.TotalMs
		if p > 1 {
			return 1
		}
		return p
	default:
		return 0
	}
}

// BeatMs returns the beat duration of the selected score.
func (c *Controller) BeatMs() float64 { return c.state.Plan.BeatMs }
