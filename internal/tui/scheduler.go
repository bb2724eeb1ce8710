package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/rhythmtap/internal/session"
)

type timerMsg session.Timer

type frameMsg time.Time

const frameInterval = 50 * time.Millisecond

// tickScheduler turns armed timers into tea.Tick commands. Ticks already
// handed to Bubble Tea cannot be cancelled; the session ignores them by
// epoch once they arrive.
type tickScheduler struct {
	pending []tea.Cmd
}

func (s *tickScheduler) Arm(t session.Timer) {
	s.pending = append(s.pending, tea.Tick(session.DelayDuration(t), func(time.Time) tea.Msg {
		return timerMsg(t)
	}))
}

func (s *tickScheduler) CancelAll() {
	s.pending = nil
}

// drain returns the commands armed since the last call.
func (s *tickScheduler) drain() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
