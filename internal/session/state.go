// Package session implements the tap-along session state machine.
//
// Step is a pure transition function: it takes the current State and one
// Event and returns the next State plus the side effects (clicks, timers,
// the finished summary) as Commands. Controller executes those commands.
package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/rhythmtap/internal/model"
	"github.com/verte-zerg/rhythmtap/internal/rhythm"
	"github.com/verte-zerg/rhythmtap/internal/scoring"
)

// ErrNoScore is returned when a session is started before a score is selected.
var ErrNoScore = errors.New("no score selected")

// EventKind enumerates session inputs.
type EventKind int

const (
	EventStart EventKind = iota
	EventTap
	EventStop
	EventReset
	EventSelectScore
	EventTimer
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventTap:
		return "tap"
	case EventStop:
		return "stop"
	case EventReset:
		return "reset"
	case EventSelectScore:
		return "select"
	case EventTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Event is one input to the state machine. At is the session clock reading
// in milliseconds when the event was dequeued.
type Event struct {
	Kind  EventKind
	At    float64
	Score model.RhythmScore
	Timer Timer
}

// TimerKind identifies what an armed timer is for.
type TimerKind int

const (
	TimerCountIn TimerKind = iota
	TimerMetronome
	TimerDeadline
)

func (k TimerKind) String() string {
	switch k {
	case TimerCountIn:
		return "count-in"
	case TimerMetronome:
		return "metronome"
	case TimerDeadline:
		return "deadline"
	default:
		return "unknown"
	}
}

// Timer is a one-shot timer request. Epoch ties it to the phase that armed
// it; fires from an older epoch are ignored.
type Timer struct {
	Kind  TimerKind
	Epoch uint64
	Delay float64
}

// CommandKind enumerates side effects requested by Step.
type CommandKind int

const (
	CommandArmTimer CommandKind = iota
	CommandCancelTimers
	CommandClick
	CommandFinished
)

// Command is a side effect for the driver to execute, in order.
type Command struct {
	Kind    CommandKind
	Timer   Timer
	Accent  bool
	Summary *model.ScoreSummary
}

// State is the full session state. It is a value: Step never mutates the
// state it is given.
type State struct {
	Phase       model.Phase
	Score       model.RhythmScore
	Plan        rhythm.Plan
	HasScore    bool
	ToleranceMs float64
	OffsetMs    float64

	CountInLeft int
	Anchor      float64
	Beats       int
	T0          float64

	Taps     []float64
	TapCount int
	Summary  *model.ScoreSummary

	Finalized bool
	Epoch     uint64
}

// NewState returns an idle state with the given judgement settings.
func NewState(toleranceMs, offsetMs float64) State {
	return State{
		Phase:       model.PhaseIdle,
		ToleranceMs: toleranceMs,
		OffsetMs:    offsetMs,
	}
}

// Step applies one event. Out-of-phase events are no-ops. Only score
// selection and start can fail; on error the state is returned unchanged.
func Step(s State, ev Event) (State, []Command, error) {
	switch ev.Kind {
	case EventSelectScore:
		return selectScore(s, ev.Score)
	case EventReset:
		next, cmds := reset(s)
		return next, cmds, nil
	case EventStart:
		return start(s, ev.At)
	case EventTap:
		return tap(s, ev.At), nil, nil
	case EventStop:
		if s.Phase != model.PhaseCountIn && s.Phase != model.PhasePlaying {
			return s, nil, nil
		}
		next, cmds := finalize(s)
		return next, cmds, nil
	case EventTimer:
		next, cmds := fire(s, ev.Timer, ev.At)
		return next, cmds, nil
	default:
		return s, nil, fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

func selectScore(s State, score model.RhythmScore) (State, []Command, error) {
	plan, err := rhythm.Prepare(score)
	if err != nil {
		return s, nil, err
	}
	var cmds []Command
	if s.Phase != model.PhaseIdle {
		s, cmds = reset(s)
	}
	s.Score = score
	s.Plan = plan
	s.HasScore = true
	return s, cmds, nil
}

func reset(s State) (State, []Command) {
	s.Phase = model.PhaseIdle
	s.Epoch++
	s.CountInLeft = 0
	s.Anchor = 0
	s.Beats = 0
	s.T0 = 0
	s.Taps = nil
	s.TapCount = 0
	s.Summary = nil
	s.Finalized = false
	return s, []Command{{Kind: CommandCancelTimers}}
}

func start(s State, at float64) (State, []Command, error) {
	if s.Phase != model.PhaseIdle {
		return s, nil, nil
	}
	if !s.HasScore {
		return s, nil, ErrNoScore
	}
	s.Phase = model.PhaseCountIn
	s.Epoch++
	s.Finalized = false
	s.CountInLeft = s.Score.TimeSignature.Numerator - 1
	s.Anchor = at
	s.Beats = 1
	return s, []Command{
		{Kind: CommandClick, Accent: true},
		{Kind: CommandArmTimer, Timer: s.nextBeat(TimerCountIn, at)},
	}, nil
}

func tap(s State, at float64) State {
	if s.Phase != model.PhasePlaying {
		return s
	}
	s.Taps = append(s.Taps[:len(s.Taps):len(s.Taps)], at-s.T0)
	s.TapCount++
	return s
}

func fire(s State, t Timer, at float64) (State, []Command) {
	if t.Epoch != s.Epoch {
		return s, nil
	}
	switch {
	case s.Phase == model.PhaseCountIn && t.Kind == TimerCountIn:
		if s.CountInLeft > 0 {
			s.CountInLeft--
			s.Beats++
			return s, []Command{
				{Kind: CommandClick, Accent: true},
				{Kind: CommandArmTimer, Timer: s.nextBeat(TimerCountIn, at)},
			}
		}
		return beginPlaying(s, at)
	case s.Phase == model.PhasePlaying && t.Kind == TimerMetronome:
		s.Beats++
		return s, []Command{
			{Kind: CommandClick},
			{Kind: CommandArmTimer, Timer: s.nextBeat(TimerMetronome, at)},
		}
	case s.Phase == model.PhasePlaying && t.Kind == TimerDeadline:
		return finalize(s)
	default:
		return s, nil
	}
}

func beginPlaying(s State, at float64) (State, []Command) {
	s.Phase = model.PhasePlaying
	s.Epoch++
	s.T0 = at
	s.Anchor = at
	s.Beats = 1
	return s, []Command{
		{Kind: CommandCancelTimers},
		{Kind: CommandClick},
		{Kind: CommandArmTimer, Timer: s.nextBeat(TimerMetronome, at)},
		{Kind: CommandArmTimer, Timer: Timer{
			Kind:  TimerDeadline,
			Epoch: s.Epoch,
			Delay: s.Plan.TotalMs + s.Plan.BeatMs,
		}},
	}
}

// nextBeat schedules the next click relative to the phase anchor so that
// late timer fires do not accumulate drift.
func (s State) nextBeat(kind TimerKind, at float64) Timer {
	due := s.Anchor + float64(s.Beats)*s.Plan.BeatMs
	return Timer{Kind: kind, Epoch: s.Epoch, Delay: math.Max(0, due-at)}
}

func finalize(s State) (State, []Command) {
	if s.Finalized {
		return s, nil
	}
	s.Finalized = true
	s.Phase = model.PhaseFinished
	s.Epoch++

	taps := make([]float64, len(s.Taps))
	for i, t := range s.Taps {
		taps[i] = t - s.OffsetMs
	}
	summary := scoring.EvaluateAttempt(s.Plan.Onsets, taps, s.ToleranceMs)
	s.Summary = &summary
	return s, []Command{
		{Kind: CommandCancelTimers},
		{Kind: CommandFinished, Summary: s.Summary},
	}
}
