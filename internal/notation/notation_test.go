package notation

import (
	"strings"
	"testing"

	"github.com/verte-zerg/rhythmtap/internal/model"
)

func testScore(codes ...string) model.RhythmScore {
	beats := map[string]float64{"q": 1, "rq": 1, "8": 0.5, "h": 2}
	events := make([]model.RhythmEvent, 0, len(codes))
	at := 0.0
	for _, c := range codes {
		events = append(events, model.RhythmEvent{Beat: at, DurationBeats: beats[c], IsRest: strings.HasPrefix(c, "r")})
		at += beats[c]
	}
	return model.RhythmScore{
		ID:            "t",
		TempoBPM:      60,
		TimeSignature: model.TimeSignature{Numerator: 4, Denominator: 4},
		Events:        events,
		Notation:      model.Notation{Values: codes},
	}
}

func TestBuildTokensStatusColours(t *testing.T) {
	score := testScore("q", "q", "rq", "q", "q")
	statuses := map[int]model.Status{0: model.StatusOK, 1: model.StatusNG, 3: model.StatusOK}

	tokens := buildTokens(score, false, statuses)
	if len(tokens) != 13 {
		t.Fatalf("expected 13 tokens, got %d", len(tokens))
	}
	if tokens[0].s != okStyle.Render("♩") {
		t.Fatalf("expected OK style for first note")
	}
	if tokens[2].s != ngStyle.Render("♩") {
		t.Fatalf("expected NG style for second note")
	}
	if tokens[4].s != restStyle.Render("𝄽") {
		t.Fatalf("expected rest style for rest")
	}
	if tokens[6].s != pendingStyle.Render("♩") {
		t.Fatalf("expected pending style for unjudged note")
	}
	if tokens[8].s != barStyle.Render("|") {
		t.Fatalf("expected bar line before the second measure")
	}
	if tokens[10].s != okStyle.Render("♩") {
		t.Fatalf("expected rests to be skipped in note indexing")
	}
	if tokens[12].s != barStyle.Render("||") {
		t.Fatalf("expected closing double bar")
	}
}

func TestBuildTokensBeaming(t *testing.T) {
	score := testScore("8", "8", "q", "8", "8", "q")

	beamed := buildTokens(score, true, nil)
	if beamed[1].s != pendingStyle.Render(beam) {
		t.Fatalf("expected beam between eighths in the same beat")
	}
	if !beamed[3].isSpace {
		t.Fatalf("expected space before the quarter")
	}

	plain := buildTokens(score, false, nil)
	if !plain[1].isSpace {
		t.Fatalf("expected space between eighths without beaming")
	}
}

func TestBuildTokensNoBeamAcrossBeats(t *testing.T) {
	score := testScore("q", "8", "8", "8", "8", "q")
	tokens := buildTokens(score, true, nil)
	// q sp 8 ‿ 8 sp 8 ‿ 8 sp q
	if tokens[3].s != pendingStyle.Render(beam) || !tokens[5].isSpace || tokens[7].s != pendingStyle.Render(beam) {
		t.Fatalf("expected beams to restart on each beat")
	}
}

func TestGlyph(t *testing.T) {
	cases := map[string]string{
		"q":  "♩",
		"q.": "♩.",
		"8":  "♪",
		"rq": "𝄽",
		"r8": "-8",
		"zz": "?zz",
	}
	for in, want := range cases {
		if got := Glyph(in); got != want {
			t.Fatalf("glyph %q: expected %q, got %q", in, want, got)
		}
	}
}

func TestWrapTokens(t *testing.T) {
	plain := func(s string) token { return token{s: s, width: len(s)} }
	tokens := []token{plain("ab"), space(), plain("cd"), space(), plain("ef")}

	if got := wrapTokens(tokens, 0); got != "ab cd ef" {
		t.Fatalf("expected unwrapped output, got %q", got)
	}
	if got := wrapTokens(tokens, 5); got != "ab cd\nef" {
		t.Fatalf("expected wrap at space, got %q", got)
	}
	if got := wrapTokens([]token{plain("abcdef")}, 3); got != "abcdef" {
		t.Fatalf("expected oversize token kept whole, got %q", got)
	}
}

func TestRenderDoesNotWrapByDefault(t *testing.T) {
	out := Render(testScore("q", "q", "q", "q", "q", "q", "q", "q"), false, nil)
	if strings.Contains(out, "\n") {
		t.Fatalf("expected single line, got %q", out)
	}
}
