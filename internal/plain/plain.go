// Package plain runs a practice session on the raw keyboard without the
// full-screen interface.
package plain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/verte-zerg/rhythmtap/internal/audio"
	"github.com/verte-zerg/rhythmtap/internal/debug"
	"github.com/verte-zerg/rhythmtap/internal/model"
	"github.com/verte-zerg/rhythmtap/internal/notation"
	"github.com/verte-zerg/rhythmtap/internal/report"
	"github.com/verte-zerg/rhythmtap/internal/session"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

type action int

const (
	actionNone action = iota
	actionTap
	actionStart
	actionStop
	actionReset
	actionQuit
)

type tapSet struct {
	space  bool
	runes  map[rune]bool
	labels []string
}

func newTapSet(keys []string) tapSet {
	set := tapSet{runes: map[rune]bool{}}
	for _, k := range keys {
		if k == "space" || k == " " {
			if !set.space {
				set.labels = append(set.labels, "space")
			}
			set.space = true
			continue
		}
		if r := []rune(k); len(r) == 1 && !set.runes[r[0]] {
			set.runes[r[0]] = true
			set.labels = append(set.labels, k)
		}
	}
	if !set.space && len(set.runes) == 0 {
		set.space = true
		set.labels = []string{"space"}
	}
	return set
}

// label lists the tap keys in configured order, e.g. "space/j".
func (s tapSet) label() string {
	return strings.Join(s.labels, "/")
}

func (s tapSet) matches(ev keyboard.KeyEvent) bool {
	if ev.Key == keyboard.KeySpace {
		return s.space
	}
	return ev.Key == 0 && s.runes[ev.Rune]
}

func keyAction(ev keyboard.KeyEvent, taps tapSet, playing bool) action {
	if playing && taps.matches(ev) {
		return actionTap
	}
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return actionQuit
	case keyboard.KeyEnter:
		return actionStart
	}
	switch ev.Rune {
	case 's':
		return actionStart
	case 'x':
		return actionStop
	case 'r':
		return actionReset
	case 'q':
		return actionQuit
	}
	return actionNone
}

// Runner owns one controller and prints progress line by line.
type Runner struct {
	ctrl *session.Controller
	out  io.Writer
	taps tapSet
	last model.Phase
}

// NewRunner builds a runner for score. sched must deliver fired timers to
// the timers channel passed to Loop.
func NewRunner(cfg model.Config, score model.RhythmScore, clock session.Clock, sched session.Scheduler, clicker audio.Clicker, out io.Writer) (*Runner, error) {
	r := &Runner{
		out:  &crlfWriter{w: out},
		taps: newTapSet(cfg.TapKeys),
	}
	r.ctrl = session.NewController(clock, sched, session.Options{
		ToleranceMs: cfg.ToleranceMs,
		OffsetMs:    cfg.OffsetMs,
		Clicker:     clicker,
		OnFinish:    r.printResult,
	})
	if err := r.ctrl.Select(score); err != nil {
		return nil, fmt.Errorf("failed to select score: %w", err)
	}
	return r, nil
}

// Run opens the keyboard and loops until the user quits or ctx ends.
func Run(ctx context.Context, cfg model.Config, score model.RhythmScore, clicker audio.Clicker, out io.Writer) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotTerminal
	}
	keys, err := keyboard.GetKeys(64)
	if err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			debug.Log("plain", "failed to close keyboard: %v", err)
		}
	}()

	sched := session.NewChannelScheduler()
	defer sched.Close()
	r, err := NewRunner(cfg, score, session.NewMonotonicClock(), sched, clicker, out)
	if err != nil {
		return err
	}
	return r.Loop(ctx, keys, sched.C)
}

// Loop is the single event loop: every controller call happens here.
func (r *Runner) Loop(ctx context.Context, keys <-chan keyboard.KeyEvent, timers <-chan session.Timer) error {
	defer func() {
		if err := r.ctrl.Dispose(); err != nil {
			debug.Log("plain", "failed to close audio: %v", err)
		}
	}()
	r.printIntro()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-timers:
			r.ctrl.Fire(t)
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return fmt.Errorf("failed to read key: %w", ev.Err)
			}
			if r.handle(keyAction(ev, r.taps, r.ctrl.Phase() == model.PhasePlaying)) {
				return nil
			}
		}
		r.printPhase()
	}
}

func (r *Runner) handle(a action) bool {
	switch a {
	case actionTap:
		r.ctrl.Tap()
	case actionStart:
		var err error
		if r.ctrl.Phase() == model.PhaseFinished {
			err = r.ctrl.Restart()
		} else {
			err = r.ctrl.Start()
		}
		if err != nil {
			r.printf("%v\n", err)
		}
	case actionStop:
		r.ctrl.Stop()
	case actionReset:
		r.ctrl.Reset()
	case actionQuit:
		return true
	}
	return false
}

func (r *Runner) printIntro() {
	score, _ := r.ctrl.Score()
	r.printf("%s  %g BPM %d/%d\n", score.Title, score.TempoBPM, score.TimeSignature.Numerator, score.TimeSignature.Denominator)
	r.printf("%s\n", notation.Render(score, false, nil))
	r.printf("enter/s start  %s tap  x stop  r reset  q quit\n", r.taps.label())
}

func (r *Runner) printPhase() {
	phase := r.ctrl.Phase()
	if phase == r.last {
		return
	}
	r.last = phase
	switch phase {
	case model.PhaseCountIn:
		r.printf("count-in...\n")
	case model.PhasePlaying:
		r.printf("go!\n")
	case model.PhaseIdle:
		r.printf("ready\n")
	}
}

func (r *Runner) printResult(s model.ScoreSummary) {
	var buf bytes.Buffer
	if err := report.Write(&buf, s, 0); err != nil {
		debug.Log("plain", "failed to render report: %v", err)
		return
	}
	r.printf("%s", buf.String())
	r.printf("press enter to go again, q to quit\n")
}

func (r *Runner) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		// Best-effort output.
		_ = err
	}
}

// crlfWriter emits CRLF line endings, which raw mode needs.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
