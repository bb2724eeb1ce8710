// Package report formats attempt results as plain text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

// column describes one table column over rows of type T. Numeric columns
// are right-aligned.
type column[T any] struct {
	title   string
	numeric bool
	value   func(T) string
}

// renderColumns lays rows out under the column titles, padding by display
// width so the status glyphs and ± signs line up.
func renderColumns[T any](cols []column[T], rows []T) []string {
	cells := make([][]string, 0, len(rows)+1)
	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = c.title
	}
	cells = append(cells, head)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = c.value(row)
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, 0, len(cells))
	for _, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteString("  ")
			}
			if cols[i].numeric {
				b.WriteString(runewidth.FillLeft(cell, widths[i]))
			} else {
				b.WriteString(runewidth.FillRight(cell, widths[i]))
			}
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

var noteColumns = []column[model.NoteResult]{
	{title: "#", numeric: true, value: func(nr model.NoteResult) string { return strconv.Itoa(nr.Index + 1) }},
	{title: "Beat", numeric: true, value: func(nr model.NoteResult) string { return formatBeat(nr.Beat) }},
	{title: "Expected", numeric: true, value: func(nr model.NoteResult) string { return formatMs(nr.ExpectedMs) }},
	{title: "Actual", numeric: true, value: func(nr model.NoteResult) string {
		if nr.ActualMs == nil {
			return "-"
		}
		return formatMs(*nr.ActualMs)
	}},
	{title: "Offset", numeric: true, value: func(nr model.NoteResult) string {
		if nr.ActualMs == nil {
			return "-"
		}
		return formatSignedMs(*nr.ActualMs - nr.ExpectedMs)
	}},
	{title: "Status", value: func(nr model.NoteResult) string { return string(nr.Status) }},
}

type numberedOnset struct {
	n     int
	onset model.ExpectedOnset
}

var onsetColumns = []column[numberedOnset]{
	{title: "#", numeric: true, value: func(o numberedOnset) string { return strconv.Itoa(o.n) }},
	{title: "Beat", numeric: true, value: func(o numberedOnset) string { return formatBeat(o.onset.Beat) }},
	{title: "Onset ms", numeric: true, value: func(o numberedOnset) string { return formatMs(o.onset.OnsetMs) }},
}

// WriteSummary prints the headline numbers and the comment.
func WriteSummary(w io.Writer, s model.ScoreSummary) error {
	lines := []string{
		fmt.Sprintf("Accuracy %d%%  (%d/%d on time)", s.Accuracy, s.OKCount, s.TotalNotes),
		fmt.Sprintf("Missed %d  Extra hits %d  Tolerance ±%sms", s.NGCount, s.ExtraHits, formatMs(s.ToleranceMs)),
	}
	if s.OKCount > 0 {
		lines = append(lines, fmt.Sprintf("Mean offset %sms", formatSignedMs(s.MeanOffsetMs())))
	}
	lines = append(lines, s.Comment)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// NoteLines formats the per-note results as an aligned table.
func NoteLines(s model.ScoreSummary) []string {
	return renderColumns(noteColumns, s.NoteResults)
}

// OnsetLines formats expected onsets for score previews.
func OnsetLines(onsets []model.ExpectedOnset) []string {
	rows := make([]numberedOnset, len(onsets))
	for i, o := range onsets {
		rows[i] = numberedOnset{n: i + 1, onset: o}
	}
	return renderColumns(onsetColumns, rows)
}

// Write prints the summary, the note table and the offset strip. width
// <= 0 uses the terminal width.
func Write(w io.Writer, s model.ScoreSummary, width int) error {
	if err := WriteSummary(w, s); err != nil {
		return err
	}
	if len(s.NoteResults) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, line := range NoteLines(s) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if s.OKCount == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return WriteOffsetStrip(w, s, width)
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatSignedMs(v float64) string {
	if v >= 0 {
		return "+" + formatMs(v)
	}
	return formatMs(v)
}

func formatBeat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
