// Package generator builds random practice patterns.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/rhythmtap/internal/catalog"
	"github.com/verte-zerg/rhythmtap/internal/model"
)

// figure is a one- or two-beat cell of a 4/4 bar.
type figure struct {
	pattern string
	beats   int
	weight  float64
}

var figures = []figure{
	{pattern: "q", beats: 1, weight: 4},
	{pattern: "8 8", beats: 1, weight: 3},
	{pattern: "rq", beats: 1, weight: 1},
	{pattern: "16 16 8", beats: 1, weight: 1},
	{pattern: "h", beats: 2, weight: 2},
	{pattern: "q. 8", beats: 2, weight: 2},
	{pattern: "8 q 8", beats: 2, weight: 1},
}

var tempos = []float64{72, 80, 90, 100}

// Generator produces randomized rhythm scores.
type Generator struct {
	rnd  *rand.Rand
	seed int64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is fully determined by seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), seed: seed}
}

// Pattern fills bars of 4/4 with weighted random figures. The first figure
// always sounds so every pattern has at least one onset.
func (g *Generator) Pattern(bars int) string {
	if bars < 1 {
		bars = 1
	}
	parts := make([]string, 0, bars*4)
	for bar := 0; bar < bars; bar++ {
		if bar > 0 {
			parts = append(parts, "|")
		}
		left := 4
		for left > 0 {
			f := g.pick(left, bar == 0 && left == 4)
			parts = append(parts, f.pattern)
			left -= f.beats
		}
	}
	return strings.Join(parts, " ")
}

// Score builds a two-bar score at a random tempo.
func (g *Generator) Score() (model.RhythmScore, error) {
	bpm := tempos[g.rnd.Intn(len(tempos))]
	return catalog.Build(
		fmt.Sprintf("random-%d", g.seed),
		"Random Pattern",
		fmt.Sprintf("Generated from seed %d.", g.seed),
		bpm,
		model.TimeSignature{Numerator: 4, Denominator: 4},
		g.Pattern(2),
	)
}

func (g *Generator) pick(maxBeats int, mustSound bool) figure {
	total := 0.0
	for _, f := range figures {
		if fits(f, maxBeats, mustSound) {
			total += f.weight
		}
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	var last figure
	for _, f := range figures {
		if !fits(f, maxBeats, mustSound) {
			continue
		}
		acc += f.weight
		last = f
		if r <= acc {
			return f
		}
	}
	return last
}

func fits(f figure, maxBeats int, mustSound bool) bool {
	if f.beats > maxBeats {
		return false
	}
	return !mustSound || !strings.HasPrefix(f.pattern, "r")
}
