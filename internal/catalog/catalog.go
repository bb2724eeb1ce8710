package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

// DefaultID is the score selected when none is configured.
const DefaultID = "quarter-basics"

// ErrUnknownScore is returned for ids not in the catalog.
var ErrUnknownScore = errors.New("unknown score")

var (
	fourFour  = model.TimeSignature{Numerator: 4, Denominator: 4}
	threeFour = model.TimeSignature{Numerator: 3, Denominator: 4}
	twoFour   = model.TimeSignature{Numerator: 2, Denominator: 4}
	sixEight  = model.TimeSignature{Numerator: 6, Denominator: 8}
)

var scores = []model.RhythmScore{
	mustBuild("quarter-basics", "Quarter Basics", "Steady quarter notes across two bars.",
		80, fourFour, "q q q q | q q q q"),
	mustBuild("eighth-pairs", "Eighth Pairs", "Quarters mixed with pairs of eighths.",
		80, fourFour, "8 8 q 8 8 q | q 8 8 h"),
	mustBuild("rest-stops", "Rest Stops", "Hold still through the quarter rests.",
		90, fourFour, "q rq q rq | q q rh"),
	mustBuild("syncopation", "Off-Beat Push", "Notes that land between the beats.",
		90, fourFour, "8 q 8 q q | 8 q 8 h"),
	mustBuild("dotted-quarters", "Dotted Quarters", "Long-short figures with dotted quarters.",
		72, fourFour, "q. 8 q. 8 | q. 8 h"),
	mustBuild("sixteenth-run", "Sixteenth Run", "Subdivide the beat into four.",
		70, twoFour, "16 16 16 16 8 8 | 16 16 8 q"),
	mustBuild("waltz", "Waltz", "Three beats to the bar.",
		100, threeFour, "h q | q q q | h."),
	mustBuild("six-eight", "Six Eight Lilt", "Compound meter felt in two.",
		120, sixEight, "q 8 q 8 | 8 8 8 q."),
}

// All returns every score in catalog order.
func All() []model.RhythmScore {
	out := make([]model.RhythmScore, len(scores))
	copy(out, scores)
	return out
}

// IDs returns the score ids in catalog order.
func IDs() []string {
	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = s.ID
	}
	return ids
}

// ByID looks up a score.
func ByID(id string) (model.RhythmScore, bool) {
	for _, s := range scores {
		if s.ID == id {
			return s, true
		}
	}
	return model.RhythmScore{}, false
}

// Lookup is ByID returning ErrUnknownScore with the available ids.
func Lookup(id string) (model.RhythmScore, error) {
	if s, ok := ByID(id); ok {
		return s, nil
	}
	return model.RhythmScore{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownScore, id, strings.Join(IDs(), ", "))
}

// Next returns the score after id, wrapping around. delta may be negative.
func Next(id string, delta int) model.RhythmScore {
	idx := 0
	for i, s := range scores {
		if s.ID == id {
			idx = i
			break
		}
	}
	n := len(scores)
	return scores[((idx+delta)%n+n)%n]
}
