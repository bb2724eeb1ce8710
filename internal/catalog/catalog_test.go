package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/rhythmtap/internal/model"
	"github.com/verte-zerg/rhythmtap/internal/rhythm"
)

func TestCatalogScoresAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All() {
		if seen[s.ID] {
			t.Fatalf("duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		if err := rhythm.Validate(s); err != nil {
			t.Fatalf("score %q invalid: %v", s.ID, err)
		}
		if len(s.Notation.Values) != len(s.Events) {
			t.Fatalf("score %q: notation has %d values for %d events", s.ID, len(s.Notation.Values), len(s.Events))
		}
		last := s.Events[len(s.Events)-1]
		bars := (last.Beat + last.DurationBeats) / float64(s.TimeSignature.Numerator)
		if math.Abs(bars-math.Round(bars)) > 1e-9 {
			t.Fatalf("score %q does not fill whole bars (%v bars)", s.ID, bars)
		}
	}
	if !seen[DefaultID] {
		t.Fatalf("default score %q missing", DefaultID)
	}
}

func TestParsePattern(t *testing.T) {
	events, codes, err := ParsePattern("q 8 | r8 h", 4)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.RhythmEvent{
		{Beat: 0, DurationBeats: 1},
		{Beat: 1, DurationBeats: 0.5},
		{Beat: 1.5, DurationBeats: 0.5, IsRest: true},
		{Beat: 2, DurationBeats: 2},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: expected %+v, got %+v", i, want[i], events[i])
		}
	}
	if len(codes) != 4 || codes[2] != "r8" {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestParsePatternEighthDenominator(t *testing.T) {
	events, _, err := ParsePattern("q 8", 8)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if events[0].DurationBeats != 2 || events[1].Beat != 2 {
		t.Fatalf("expected quarter to span two eighth beats, got %+v", events)
	}
}

func TestParsePatternErrors(t *testing.T) {
	if _, _, err := ParsePattern("q x", 4); err == nil {
		t.Fatalf("expected error for unknown duration")
	}
	if _, _, err := ParsePattern(" | ", 4); err == nil {
		t.Fatalf("expected error for empty pattern")
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("waltz"); err != nil {
		t.Fatalf("expected waltz, got %v", err)
	}
	if _, err := Lookup("polka"); !errors.Is(err, ErrUnknownScore) {
		t.Fatalf("expected ErrUnknownScore, got %v", err)
	}
}

func TestNextWraps(t *testing.T) {
	ids := IDs()
	if got := Next(ids[len(ids)-1], 1).ID; got != ids[0] {
		t.Fatalf("expected wrap to %q, got %q", ids[0], got)
	}
	if got := Next(ids[0], -1).ID; got != ids[len(ids)-1] {
		t.Fatalf("expected wrap to %q, got %q", ids[len(ids)-1], got)
	}
}
