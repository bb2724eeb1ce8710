// Package model defines shared data structures.
package model

// Config defines practice settings.
type Config struct {
	ScoreID     string
	ToleranceMs float64
	TapKeys     []string
	Beaming     bool
	Mute        bool
	OffsetMs    float64
	Volume      float64
	RandomSeed  int64
}

// TimeSignature is a meter such as 3/4 or 6/8.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// RhythmEvent is one scheduled note or rest. Beat is the 0-based offset
// from the start of the score in units of the signature's denominator.
type RhythmEvent struct {
	Beat          float64
	DurationBeats float64
	IsRest        bool
}

// Notation carries the glyph values used by the renderer, one per event.
type Notation struct {
	Values []string
}

// RhythmScore is an immutable rhythmic pattern from the catalog.
type RhythmScore struct {
	ID            string
	Title         string
	Description   string
	TempoBPM      float64
	TimeSignature TimeSignature
	Events        []RhythmEvent
	Notation      Notation
}

// ExpectedOnset is the expected tap time for a non-rest event, measured
// from the start of playback (count-in excluded).
type ExpectedOnset struct {
	Beat    float64
	OnsetMs float64
}

// Status is the judgement for one expected note.
type Status string

const (
	StatusOK Status = "OK"
	StatusNG Status = "NG"
)

// NoteResult is the judgement of a single expected onset.
type NoteResult struct {
	Index      int
	Beat       float64
	ExpectedMs float64
	ActualMs   *float64
	Status     Status
}

// ScoreSummary aggregates the judgement of one finished attempt.
type ScoreSummary struct {
	OKCount     int
	NGCount     int
	ExtraHits   int
	TotalNotes  int
	Accuracy    int
	ToleranceMs float64
	NoteResults []NoteResult
	Comment     string
}

// StatusMap indexes note statuses by expected-onset position.
func (s ScoreSummary) StatusMap() map[int]Status {
	out := make(map[int]Status, len(s.NoteResults))
	for _, r := range s.NoteResults {
		out[r.Index] = r.Status
	}
	return out
}

// MeanOffsetMs is the mean signed offset (actual - expected) over matched
// notes. Negative values mean the user was early.
func (s ScoreSummary) MeanOffsetMs() float64 {
	var sum float64
	var n int
	for _, r := range s.NoteResults {
		if r.ActualMs == nil {
			continue
		}
		sum += *r.ActualMs - r.ExpectedMs
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Phase is the session state machine phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountIn
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountIn:
		return "count-in"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}
