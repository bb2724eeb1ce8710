// Package catalog holds the built-in rhythm scores.
package catalog

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

// noteValues maps a duration code to its length as a fraction of a whole note.
var noteValues = map[string]float64{
	"w":   1,
	"h.":  0.75,
	"h":   0.5,
	"q.":  0.375,
	"q":   0.25,
	"8.":  0.1875,
	"8":   0.125,
	"16":  0.0625,
	"32":  0.03125,
	"w.":  1.5,
	"16.": 0.09375,
}

// ValueBeats returns the length of a duration code (without rest prefix)
// in beats of the given denominator.
func ValueBeats(code string, denominator int) (float64, bool) {
	frac, ok := noteValues[code]
	if !ok {
		return 0, false
	}
	return frac * float64(denominator), true
}

// ParsePattern reads a space-separated list of duration codes such as
// "q 8 8 | rq h." into contiguous events. An "r" prefix marks a rest and
// "|" bar lines are ignored. The returned codes are kept for notation.
func ParsePattern(pattern string, denominator int) ([]model.RhythmEvent, []string, error) {
	var events []model.RhythmEvent
	var codes []string
	beat := 0.0
	for _, tok := range strings.Fields(pattern) {
		if tok == "|" {
			continue
		}
		rest := strings.HasPrefix(tok, "r")
		code := strings.TrimPrefix(tok, "r")
		length, ok := ValueBeats(code, denominator)
		if !ok {
			return nil, nil, fmt.Errorf("unknown duration %q", tok)
		}
		events = append(events, model.RhythmEvent{Beat: beat, DurationBeats: length, IsRest: rest})
		codes = append(codes, tok)
		beat += length
	}
	if len(events) == 0 {
		return nil, nil, fmt.Errorf("pattern is empty")
	}
	return events, codes, nil
}

// Build assembles a score from a pattern.
func Build(id, title, description string, bpm float64, sig model.TimeSignature, pattern string) (model.RhythmScore, error) {
	events, codes, err := ParsePattern(pattern, sig.Denominator)
	if err != nil {
		return model.RhythmScore{}, fmt.Errorf("score %q: %w", id, err)
	}
	return model.RhythmScore{
		ID:            id,
		Title:         title,
		Description:   description,
		TempoBPM:      bpm,
		TimeSignature: sig,
		Events:        events,
		Notation:      model.Notation{Values: codes},
	}, nil
}

func mustBuild(id, title, description string, bpm float64, sig model.TimeSignature, pattern string) model.RhythmScore {
	score, err := Build(id, title, description, bpm, sig, pattern)
	if err != nil {
		panic(err)
	}
	return score
}
