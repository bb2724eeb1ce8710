// Package notation renders rhythm scores as styled terminal text.
package notation

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	ngStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	restStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

const (
	barLine = "|"
	beam    = "‿"
)

var noteGlyphs = map[string]string{
	"w":  "𝅝",
	"h":  "𝅗𝅥",
	"q":  "♩",
	"8":  "♪",
	"16": "♬",
	"32": "♬",
}

// Glyph returns the display text for a duration code such as "q.", "8"
// or "rq".
func Glyph(code string) string {
	rest := strings.HasPrefix(code, "r")
	code = strings.TrimPrefix(code, "r")
	dotted := strings.HasSuffix(code, ".")
	code = strings.TrimSuffix(code, ".")
	var g string
	if rest {
		g = "𝄽"
		if code != "q" {
			g = "-" + code
		}
	} else if v, ok := noteGlyphs[code]; ok {
		g = v
	} else {
		g = "?" + code
	}
	if dotted {
		g += "."
	}
	return g
}

// Render draws the score on one line. statuses maps note index (rests
// excluded) to its judgement; missing entries are drawn as pending.
func Render(score model.RhythmScore, beaming bool, statuses map[int]model.Status) string {
	return RenderWidth(score, beaming, statuses, 0)
}

// RenderWidth is Render wrapped to width cells. Lines break at bar lines
// or spaces where possible. width <= 0 disables wrapping.
func RenderWidth(score model.RhythmScore, beaming bool, statuses map[int]model.Status, width int) string {
	return wrapTokens(buildTokens(score, beaming, statuses), width)
}

type token struct {
	s       string
	width   int
	isSpace bool
}

func styled(style lipgloss.Style, text string) token {
	return token{s: style.Render(text), width: runewidth.StringWidth(text)}
}

func space() token {
	return token{s: " ", width: 1, isSpace: true}
}

func buildTokens(score model.RhythmScore, beaming bool, statuses map[int]model.Status) []token {
	values := score.Notation.Values
	barBeats := float64(score.TimeSignature.Numerator)
	group := beamGroupBeats(score.TimeSignature)

	out := make([]token, 0, len(score.Events)*2)
	noteIdx := 0
	prevBeamed := false
	prevGroup := -1.0
	for i, ev := range score.Events {
		code := ""
		if i < len(values) {
			code = values[i]
		}
		if i > 0 {
			if barBeats > 0 && isMultiple(ev.Beat, barBeats) {
				out = append(out, space(), styled(barStyle, barLine), space())
				prevBeamed = false
			} else {
				curGroup := math.Floor(ev.Beat / group)
				if beaming && prevBeamed && beamable(code, ev.IsRest) && curGroup == prevGroup {
					out = append(out, styled(pendingStyle, beam))
				} else {
					out = append(out, space())
				}
			}
		}

		style := pendingStyle
		if ev.IsRest {
			style = restStyle
		} else {
			switch statuses[noteIdx] {
			case model.StatusOK:
				style = okStyle
			case model.StatusNG:
				style = ngStyle
			}
			noteIdx++
		}
		text := Glyph(code)
		if code == "" {
			text = "?"
		}
		out = append(out, styled(style, text))
		prevBeamed = beamable(code, ev.IsRest)
		prevGroup = math.Floor(ev.Beat / group)
	}
	out = append(out, space(), styled(barStyle, barLine+barLine))
	return out
}

// beamGroupBeats is the span within which short notes are beamed: one
// quarter note, or a dotted quarter in compound eighth-note meters.
func beamGroupBeats(ts model.TimeSignature) float64 {
	if ts.Denominator == 8 && ts.Numerator%3 == 0 {
		return 3
	}
	if ts.Denominator <= 0 {
		return 1
	}
	return float64(ts.Denominator) / 4
}

func beamable(code string, rest bool) bool {
	if rest {
		return false
	}
	switch strings.TrimSuffix(code, ".") {
	case "8", "16", "32":
		return true
	}
	return false
}

func isMultiple(beat, bar float64) bool {
	q := beat / bar
	return math.Abs(q-math.Round(q)) < 1e-9
}

func renderTokens(tokens []token) string {
	var b strings.Builder
	for _, item := range tokens {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapTokens(tokens []token, width int) string {
	if width <= 0 {
		return renderTokens(tokens)
	}
	var out strings.Builder
	line := make([]token, 0, len(tokens))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(tokens); {
		item := tokens[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderTokens(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out.WriteString(renderTokens(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]token{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderTokens(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderTokens(line))
	return out.String()
}

func lineWidthOf(line []token) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []token) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
