// Package rhythm derives expected tap times from a rhythm score.
package rhythm

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

var (
	ErrInvalidTempo         = errors.New("tempo must be a positive number")
	ErrInvalidTimeSignature = errors.New("invalid time signature")
	ErrEmptyScore           = errors.New("score has no events")
	ErrInvalidEvent         = errors.New("invalid event")
	ErrUnorderedEvents      = errors.New("events are not in beat order")
)

// BeatDurationMs returns the length of one beat unit in milliseconds: a
// quarter note at the score tempo scaled to the signature denominator.
func BeatDurationMs(score model.RhythmScore) (float64, error) {
	if !validTempo(score.TempoBPM) {
		return 0, fmt.Errorf("score %q: %w (got %v)", score.ID, ErrInvalidTempo, score.TempoBPM)
	}
	if err := validateSignature(score.TimeSignature); err != nil {
		return 0, fmt.Errorf("score %q: %w", score.ID, err)
	}
	return 60000 / score.TempoBPM * (4 / float64(score.TimeSignature.Denominator)), nil
}

// DeriveOnsets returns one expected onset per non-rest event, in event order.
func DeriveOnsets(score model.RhythmScore) ([]model.ExpectedOnset, error) {
	beatMs, err := BeatDurationMs(score)
	if err != nil {
		return nil, err
	}
	onsets := make([]model.ExpectedOnset, 0, len(score.Events))
	for _, ev := range score.Events {
		if ev.IsRest {
			continue
		}
		onsets = append(onsets, model.ExpectedOnset{
			Beat:    ev.Beat,
			OnsetMs: ev.Beat * beatMs,
		})
	}
	return onsets, nil
}

// TotalDurationMs returns the nominal playback length: the end of the last
// event.
func TotalDurationMs(score model.RhythmScore) (float64, error) {
	beatMs, err := BeatDurationMs(score)
	if err != nil {
		return 0, err
	}
	if len(score.Events) == 0 {
		return 0, fmt.Errorf("score %q: %w", score.ID, ErrEmptyScore)
	}
	last := score.Events[len(score.Events)-1]
	return (last.Beat + last.DurationBeats) * beatMs, nil
}

// Validate checks tempo, signature and event ordering.
func Validate(score model.RhythmScore) error {
	if _, err := BeatDurationMs(score); err != nil {
		return err
	}
	if len(score.Events) == 0 {
		return fmt.Errorf("score %q: %w", score.ID, ErrEmptyScore)
	}
	prev := 0.0
	for i, ev := range score.Events {
		if ev.Beat < 0 || math.IsNaN(ev.Beat) || math.IsInf(ev.Beat, 0) {
			return fmt.Errorf("score %q event %d: %w: beat %v", score.ID, i, ErrInvalidEvent, ev.Beat)
		}
		if !(ev.DurationBeats > 0) || math.IsInf(ev.DurationBeats, 0) {
			return fmt.Errorf("score %q event %d: %w: duration %v", score.ID, i, ErrInvalidEvent, ev.DurationBeats)
		}
		if ev.Beat < prev {
			return fmt.Errorf("score %q event %d: %w", score.ID, i, ErrUnorderedEvents)
		}
		prev = ev.Beat
	}
	return nil
}

func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 0)
}

func validateSignature(ts model.TimeSignature) error {
	if ts.Numerator < 1 {
		return fmt.Errorf("%w: numerator %d", ErrInvalidTimeSignature, ts.Numerator)
	}
	switch ts.Denominator {
	case 1, 2, 4, 8, 16, 32, 64:
		return nil
	default:
		return fmt.Errorf("%w: denominator %d", ErrInvalidTimeSignature, ts.Denominator)
	}
}
