// Package audio plays metronome clicks.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// ErrAudioUnavailable is returned when the output device cannot be opened.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// Clicker emits a short percussive tone. Click must not block.
type Clicker interface {
	Click(accent bool)
	Close() error
}

// Silent is a Clicker that does nothing.
type Silent struct{}

// Click implements Clicker.
func (Silent) Click(bool) {}

// Close implements Clicker.
func (Silent) Close() error { return nil }

const (
	sampleRate     = beep.SampleRate(44100)
	clickLength    = 60 * time.Millisecond
	accentFreq     = 1760.0
	normalFreq     = 880.0
	decayPerSecond = 60.0
)

// The beep speaker is process-global. device tracks which Speaker owns it
// so a stale Speaker cannot close an output opened by a newer one.
var (
	deviceMu    sync.Mutex
	device      *Speaker
	clearOutput = speaker.Clear
	closeOutput = speaker.Close
)

// Speaker plays clicks through the default output device. Only one
// Speaker owns the device at a time; NewSpeaker after Close reopens it.
type Speaker struct {
	mu     sync.Mutex
	closed bool
	accent []float64
	normal []float64
	volume float64
}

// NewSpeaker opens the output device. Volume is clamped to [0, 1].
func NewSpeaker(volume float64) (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/60)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	volume = math.Max(0, math.Min(1, volume))
	s := &Speaker{
		accent: renderClick(accentFreq, volume),
		normal: renderClick(normalFreq, volume),
		volume: volume,
	}
	deviceMu.Lock()
	if device != nil {
		device.markClosed()
	}
	device = s
	deviceMu.Unlock()
	return s, nil
}

// Click implements Clicker.
func (s *Speaker) Click(accent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.volume == 0 {
		return
	}
	pcm := s.normal
	if accent {
		pcm = s.accent
	}
	speaker.Play(pcmStreamer(pcm))
}

// Close stops any playing clicks and releases the output device. Further
// clicks are dropped. Close is idempotent.
func (s *Speaker) Close() error {
	if !s.markClosed() {
		return nil
	}
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if device != s {
		return nil
	}
	device = nil
	clearOutput()
	closeOutput()
	return nil
}

// markClosed reports whether this call closed s.
func (s *Speaker) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// renderClick pre-renders a sine burst with an exponential decay.
func renderClick(freq, volume float64) []float64 {
	n := sampleRate.N(clickLength)
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = volume * math.Exp(-decayPerSecond*t) * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func pcmStreamer(pcm []float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(pcm) {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < len(pcm) {
			samples[n][0] = pcm[pos]
			samples[n][1] = pcm[pos]
			n++
			pos++
		}
		return n, true
	})
}
