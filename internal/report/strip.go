package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

const (
	minStripWidth       = 11
	maxStripWidth       = 81
	terminalWidthBackup = 80
	stripEmpty          = '·'
	stripCenter         = '|'
	stripHit            = 'o'
	stripStack          = '*'
	colorEarly          = "\x1b[36m"
	colorLate           = "\x1b[33m"
	colorReset          = "\x1b[0m"
)

// StripWidthFor computes an odd strip width that fits the terminal, so the
// zero-offset column sits exactly in the middle.
func StripWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	width := totalWidth - 2
	if width > maxStripWidth {
		width = maxStripWidth
	}
	if width < minStripWidth {
		width = minStripWidth
	}
	if width%2 == 0 {
		width--
	}
	return width
}

// OffsetStrip draws each on-time note's signed offset on a line spanning
// -tolerance to +tolerance. Early hits land left of the centre marker.
// Widths below the minimum are widened to it.
func OffsetStrip(s model.ScoreSummary, width int, color bool) string {
	width = max(width, minStripWidth)
	cells := make([]rune, width)
	counts := make([]int, width)
	for i := range cells {
		cells[i] = stripEmpty
	}
	mid := width / 2
	cells[mid] = stripCenter
	for _, nr := range s.NoteResults {
		if nr.ActualMs == nil {
			continue
		}
		col := offsetColumn(*nr.ActualMs-nr.ExpectedMs, s.ToleranceMs, width)
		counts[col]++
		if counts[col] > 1 {
			cells[col] = stripStack
		} else {
			cells[col] = stripHit
		}
	}

	var b strings.Builder
	for i, r := range cells {
		if !color || counts[i] == 0 || i == mid {
			b.WriteRune(r)
			continue
		}
		code := colorLate
		if i < mid {
			code = colorEarly
		}
		b.WriteString(code)
		b.WriteRune(r)
		b.WriteString(colorReset)
	}
	return b.String()
}

func offsetColumn(offset, tolerance float64, width int) int {
	mid := width / 2
	if !(tolerance > 0) {
		return mid
	}
	col := mid + int(math.Round(offset/tolerance*float64(mid)))
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return col
}

func stripAxis(tolerance float64, width int) string {
	left := "-" + formatMs(tolerance) + "ms"
	right := "+" + formatMs(tolerance) + "ms"
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// WriteOffsetStrip writes the strip with its axis labels.
func WriteOffsetStrip(w io.Writer, s model.ScoreSummary, width int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	width = StripWidthFor(width)
	color := shouldUseColor(w)
	if _, err := fmt.Fprintln(w, "Timing (early ← → late)"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, OffsetStrip(s, width, color)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, stripAxis(s.ToleranceMs, width)); err != nil {
		return err
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
