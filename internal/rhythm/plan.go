package rhythm

import "github.com/verte-zerg/rhythmtap/internal/model"

// Plan holds the values derived from one score. It is rebuilt whenever the
// selected score changes.
type Plan struct {
	ScoreID string
	BeatMs  float64
	TotalMs float64
	Onsets  []model.ExpectedOnset
}

// Prepare validates the score and derives its plan.
func Prepare(score model.RhythmScore) (Plan, error) {
	if err := Validate(score); err != nil {
		return Plan{}, err
	}
	beatMs, err := BeatDurationMs(score)
	if err != nil {
		return Plan{}, err
	}
	total, err := TotalDurationMs(score)
	if err != nil {
		return Plan{}, err
	}
	onsets, err := DeriveOnsets(score)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		ScoreID: score.ID,
		BeatMs:  beatMs,
		TotalMs: total,
		Onsets:  onsets,
	}, nil
}
