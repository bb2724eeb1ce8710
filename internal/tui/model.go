// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/rhythmtap/internal/audio"
	"github.com/verte-zerg/rhythmtap/internal/debug"
	"github.com/verte-zerg/rhythmtap/internal/model"
	"github.com/verte-zerg/rhythmtap/internal/notation"
	"github.com/verte-zerg/rhythmtap/internal/report"
	"github.com/verte-zerg/rhythmtap/internal/session"
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	config model.Config
	scores []model.RhythmScore
	index  int

	ctrl    *session.Controller
	ticks   *tickScheduler
	framing bool

	keys keyMap
	help help.Model

	width  int
	height int
	status string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

// NewModel constructs a practice TUI over scores, starting on cfg.ScoreID
// when present.
func NewModel(cfg model.Config, scores []model.RhythmScore, clicker audio.Clicker) (*Model, error) {
	return newModel(cfg, scores, session.NewMonotonicClock(), &tickScheduler{}, clicker)
}

func newModel(cfg model.Config, scores []model.RhythmScore, clock session.Clock, sched session.Scheduler, clicker audio.Clicker) (*Model, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores to practice")
	}
	m := &Model{
		config: cfg,
		scores: scores,
		keys:   newKeyMap(cfg.TapKeys),
		help:   help.New(),
	}
	if ts, ok := sched.(*tickScheduler); ok {
		m.ticks = ts
	}
	m.ctrl = session.NewController(clock, sched, session.Options{
		ToleranceMs: cfg.ToleranceMs,
		OffsetMs:    cfg.OffsetMs,
		Clicker:     clicker,
	})
	for i, s := range scores {
		if s.ID == cfg.ScoreID {
			m.index = i
			break
		}
	}
	if err := m.ctrl.Select(scores[m.index]); err != nil {
		return nil, fmt.Errorf("failed to select score: %w", err)
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if err := m.ctrl.Dispose(); err != nil {
				debug.Log("tui", "failed to close audio: %v", err)
			}
			return m, tea.Quit
		}
		m.handleKey(msg)
		return m, m.flush()
	case timerMsg:
		m.ctrl.Fire(session.Timer(msg))
		return m, m.flush()
	case frameMsg:
		if m.active() {
			return m, frameTick()
		}
		m.framing = false
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	phase := m.ctrl.Phase()
	switch {
	case phase == model.PhasePlaying && key.Matches(msg, m.keys.Tap):
		m.ctrl.Tap()
	case key.Matches(msg, m.keys.Start):
		m.status = ""
		var err error
		if phase == model.PhaseFinished {
			err = m.ctrl.Restart()
		} else {
			err = m.ctrl.Start()
		}
		if err != nil {
			m.status = err.Error()
		}
	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
	case key.Matches(msg, m.keys.Next):
		m.selectOffset(1)
	case key.Matches(msg, m.keys.Prev):
		m.selectOffset(-1)
	}
}

func (m *Model) selectOffset(delta int) {
	n := len(m.scores)
	idx := ((m.index+delta)%n + n) % n
	if err := m.ctrl.Select(m.scores[idx]); err != nil {
		m.status = err.Error()
		return
	}
	m.index = idx
	m.status = ""
}

// flush hands newly armed timers to Bubble Tea and keeps the frame loop
// running while a session is active.
func (m *Model) flush() tea.Cmd {
	var cmds []tea.Cmd
	if m.ticks != nil {
		cmds = m.ticks.drain()
		if m.active() && !m.framing {
			m.framing = true
			cmds = append(cmds, frameTick())
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) active() bool {
	phase := m.ctrl.Phase()
	return phase == model.PhaseCountIn || phase == model.PhasePlaying
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	if m.width == 0 {
		contentWidth = 0
	} else if contentWidth < 1 {
		contentWidth = 1
	}
	content := m.renderContent(contentWidth)
	if m.width == 0 || m.height == 0 {
		return content
	}
	content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	footer := m.renderFooter()
	helpLine := m.help.View(m.keys)
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpRow := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return body + "\n" + footerLine + "\n" + helpRow
}

func (m *Model) renderContent(width int) string {
	score, ok := m.ctrl.Score()
	if !ok {
		return ""
	}
	var statuses map[int]model.Status
	summary, finished := m.ctrl.Summary()
	if finished {
		statuses = summary.StatusMap()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(score.Title))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %g BPM · %d/%d", score.TempoBPM, score.TimeSignature.Numerator, score.TimeSignature.Denominator)))
	b.WriteString("\n")
	if score.Description != "" {
		b.WriteString(dimStyle.Render(score.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(notation.RenderWidth(score, m.config.Beaming, statuses, width))
	b.WriteString("\n\n")

	switch m.ctrl.Phase() {
	case model.PhaseIdle:
		b.WriteString(dimStyle.Render(fmt.Sprintf("Press %s to start. Tap along after the count-in.", m.keys.Start.Help().Key)))
	case model.PhaseCountIn:
		b.WriteString(accentStyle.Render("Count-in ") + countInDots(score.TimeSignature.Numerator, m.ctrl.CountInLeft()))
	case model.PhasePlaying:
		b.WriteString(progressBar(m.ctrl.Progress(), barWidth(width)))
	case model.PhaseFinished:
		var out strings.Builder
		if err := report.WriteSummary(&out, summary); err != nil {
			debug.Log("tui", "failed to render summary: %v", err)
		}
		b.WriteString(strings.TrimRight(out.String(), "\n"))
		if summary.OKCount > 0 {
			b.WriteString("\n\n")
			b.WriteString(report.OffsetStrip(summary, report.StripWidthFor(width), false))
		}
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Phase %s", m.ctrl.Phase()),
		fmt.Sprintf("Taps %d", m.ctrl.TapCount()),
		fmt.Sprintf("Progress %d%%", int(m.ctrl.Progress()*100)),
		fmt.Sprintf("Score %d/%d", m.index+1, len(m.scores)),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func countInDots(beats, left int) string {
	done := beats - left
	var b strings.Builder
	for i := 0; i < beats; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i < done {
			b.WriteString(accentStyle.Render("●"))
		} else {
			b.WriteString(dimStyle.Render("○"))
		}
	}
	return b.String()
}

func barWidth(width int) int {
	if width <= 0 {
		return 40
	}
	return width
}

func progressBar(p float64, width int) string {
	filled := int(p * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
