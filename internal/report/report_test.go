package report

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

func ptr(v float64) *float64 { return &v }

func sampleSummary() model.ScoreSummary {
	return model.ScoreSummary{
		OKCount:     2,
		NGCount:     1,
		ExtraHits:   1,
		TotalNotes:  3,
		Accuracy:    67,
		ToleranceMs: 80,
		Comment:     "Not bad. Keep practicing to tighten your timing.",
		NoteResults: []model.NoteResult{
			{Index: 0, Beat: 0, ExpectedMs: 0, ActualMs: ptr(-20), Status: model.StatusOK},
			{Index: 1, Beat: 1, ExpectedMs: 500, ActualMs: ptr(540), Status: model.StatusOK},
			{Index: 2, Beat: 1.5, ExpectedMs: 750, Status: model.StatusNG},
		},
	}
}

func TestRenderColumnsAligns(t *testing.T) {
	type row struct {
		note   int
		offset string
		status string
	}
	cols := []column[row]{
		{title: "Note", numeric: true, value: func(r row) string { return strconv.Itoa(r.note) }},
		{title: "Offset", numeric: true, value: func(r row) string { return r.offset }},
		{title: "Status", value: func(r row) string { return r.status }},
	}

	lines := renderColumns(cols, []row{{1, "+12.5", "OK"}, {10, "-3.0", "NG"}})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Note  Offset  Status" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "   1   +12.5  OK" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "  10    -3.0  NG" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestNoteLinesMissedRowUsesDashes(t *testing.T) {
	lines := NoteLines(sampleSummary())
	if lines[0] != "#  Beat  Expected  Actual  Offset  Status" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if got := strings.Count(lines[3], " - "); got != 2 {
		t.Fatalf("expected dashes for actual and offset, got %q", lines[3])
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleSummary()); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Accuracy 67%", "(2/3 on time)", "Missed 1", "Extra hits 1", "±80.0ms", "Mean offset +10.0ms", "Not bad."} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}

func TestWriteSummaryOmitsOffsetWithoutHits(t *testing.T) {
	var buf bytes.Buffer
	s := model.ScoreSummary{TotalNotes: 2, NGCount: 2, Comment: "Keep going!"}
	if err := WriteSummary(&buf, s); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if strings.Contains(buf.String(), "Mean offset") {
		t.Fatalf("expected no mean offset line: %s", buf.String())
	}
}

func TestNoteLines(t *testing.T) {
	lines := NoteLines(sampleSummary())
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "-20.0") || !strings.HasSuffix(lines[1], "OK") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "+40.0") {
		t.Fatalf("expected late offset in second row: %q", lines[2])
	}
	if !strings.Contains(lines[3], "1.5") || !strings.HasSuffix(lines[3], "NG") {
		t.Fatalf("unexpected missed row: %q", lines[3])
	}
}

func TestOnsetLines(t *testing.T) {
	lines := OnsetLines([]model.ExpectedOnset{{Beat: 0, OnsetMs: 0}, {Beat: 0.5, OnsetMs: 250}})
	if len(lines) != 3 || !strings.HasSuffix(lines[2], "250.0") {
		t.Fatalf("unexpected onset lines: %q", lines)
	}
}

func TestOffsetStrip(t *testing.T) {
	s := model.ScoreSummary{
		ToleranceMs: 80,
		NoteResults: []model.NoteResult{
			{ExpectedMs: 0, ActualMs: ptr(80)},
			{ExpectedMs: 500, ActualMs: ptr(460)},
			{ExpectedMs: 1000, ActualMs: ptr(960)},
			{ExpectedMs: 1500},
		},
	}
	if got := OffsetStrip(s, 11, false); got != "··*··|····o" {
		t.Fatalf("unexpected strip: %q", got)
	}
}

func TestOffsetStripZeroTolerance(t *testing.T) {
	s := model.ScoreSummary{NoteResults: []model.NoteResult{{ExpectedMs: 0, ActualMs: ptr(0)}}}
	if got := OffsetStrip(s, 11, false); got != "·····o·····" {
		t.Fatalf("unexpected strip: %q", got)
	}
}

func TestOffsetStripClampsWidth(t *testing.T) {
	for _, width := range []int{-3, 0, 4} {
		got := OffsetStrip(sampleSummary(), width, false)
		if n := len([]rune(got)); n != minStripWidth {
			t.Fatalf("width %d: expected %d cells, got %d (%q)", width, minStripWidth, n, got)
		}
	}
}

func TestStripWidthFor(t *testing.T) {
	if got := StripWidthFor(80); got != 77 {
		t.Fatalf("expected 77, got %d", got)
	}
	if got := StripWidthFor(0); got != 77 {
		t.Fatalf("expected fallback width 77, got %d", got)
	}
	if got := StripWidthFor(5); got != minStripWidth {
		t.Fatalf("expected min width %d, got %d", minStripWidth, got)
	}
	if got := StripWidthFor(200); got != maxStripWidth {
		t.Fatalf("expected max width %d, got %d", maxStripWidth, got)
	}
}

func TestWriteSkipsStripWithoutHits(t *testing.T) {
	var buf bytes.Buffer
	s := sampleSummary()
	if err := Write(&buf, s, 40); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "Timing") {
		t.Fatalf("expected strip in report")
	}
	buf.Reset()
	s.OKCount = 0
	if err := Write(&buf, s, 40); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.Contains(buf.String(), "Timing") {
		t.Fatalf("expected no strip without hits")
	}
}
