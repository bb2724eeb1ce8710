// Package scoring judges a tap attempt against expected onsets.
package scoring

import (
	"math"
	"sort"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

// EvaluateAttempt matches taps to expected onsets greedily in onset order.
// Each onset takes the closest unclaimed tap; equal distances go to the
// earlier tap. A match within toleranceMs (inclusive) is OK and consumes the
// tap. Unclaimed taps are counted as extra hits. Inputs are not modified.
func EvaluateAttempt(expected []model.ExpectedOnset, taps []float64, toleranceMs float64) model.ScoreSummary {
	if !(toleranceMs > 0) {
		toleranceMs = 0
	}

	onsets := make([]model.ExpectedOnset, len(expected))
	copy(onsets, expected)
	sort.SliceStable(onsets, func(i, j int) bool {
		return onsets[i].OnsetMs < onsets[j].OnsetMs
	})

	pool := make([]float64, 0, len(taps))
	for _, tap := range taps {
		if math.IsNaN(tap) {
			continue
		}
		pool = append(pool, tap)
	}
	sort.Float64s(pool)
	claimed := make([]bool, len(pool))

	summary := model.ScoreSummary{
		TotalNotes:  len(onsets),
		ToleranceMs: toleranceMs,
		NoteResults: make([]model.NoteResult, 0, len(onsets)),
	}

	for i, onset := range onsets {
		best := -1
		bestDiff := math.Inf(1)
		for j, tap := range pool {
			if claimed[j] {
				continue
			}
			if diff := math.Abs(tap - onset.OnsetMs); diff < bestDiff {
				best = j
				bestDiff = diff
			}
		}

		result := model.NoteResult{
			Index:      i,
			Beat:       onset.Beat,
			ExpectedMs: onset.OnsetMs,
			Status:     model.StatusNG,
		}
		if best >= 0 && bestDiff <= toleranceMs {
			claimed[best] = true
			actual := pool[best]
			result.ActualMs = &actual
			result.Status = model.StatusOK
			summary.OKCount++
		} else {
			summary.NGCount++
		}
		summary.NoteResults = append(summary.NoteResults, result)
	}

	for _, c := range claimed {
		if !c {
			summary.ExtraHits++
		}
	}
	summary.Accuracy = Accuracy(summary.OKCount, summary.TotalNotes)
	summary.Comment = Comment(summary.Accuracy, summary.ExtraHits)
	return summary
}

// Accuracy returns the rounded OK percentage, 0 when there are no notes.
func Accuracy(ok, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(ok) / float64(total) * 100))
}

const (
	CommentPerfect = "Perfect! Every note was right on time."
	CommentGood    = "Great job! Just a few notes slipped."
	CommentFair    = "Not bad. Keep practicing to tighten your timing."
	CommentRetry   = "Keep going! Try listening closely to the click."
)

// Comment picks the feedback line for an attempt.
func Comment(accuracy, extraHits int) string {
	switch {
	case accuracy == 100 && extraHits == 0:
		return CommentPerfect
	case accuracy >= 80:
		return CommentGood
	case accuracy >= 60:
		return CommentFair
	default:
		return CommentRetry
	}
}
