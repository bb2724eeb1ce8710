package audio

import (
	"math"
	"testing"
)

func TestRenderClickDecays(t *testing.T) {
	pcm := renderClick(normalFreq, 1)
	if len(pcm) != sampleRate.N(clickLength) {
		t.Fatalf("expected %d samples, got %d", sampleRate.N(clickLength), len(pcm))
	}
	head := peak(pcm[:len(pcm)/4])
	tail := peak(pcm[3*len(pcm)/4:])
	if head <= tail {
		t.Fatalf("expected decaying envelope, head %.3f tail %.3f", head, tail)
	}
	if head > 1 {
		t.Fatalf("expected samples within [-1, 1], got peak %.3f", head)
	}
}

func TestPCMStreamerDrains(t *testing.T) {
	pcm := []float64{0.1, 0.2, 0.3}
	s := pcmStreamer(pcm)
	buf := make([][2]float64, 2)

	n, ok := s.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("expected 2 samples, got %d (%v)", n, ok)
	}
	if buf[1][0] != 0.2 || buf[1][1] != 0.2 {
		t.Fatalf("expected both channels to carry the sample, got %v", buf[1])
	}
	n, ok = s.Stream(buf)
	if n != 1 || !ok {
		t.Fatalf("expected 1 sample, got %d (%v)", n, ok)
	}
	if n, ok = s.Stream(buf); n != 0 || ok {
		t.Fatalf("expected drained streamer, got %d (%v)", n, ok)
	}
}

func TestSilentClicker(t *testing.T) {
	var c Clicker = Silent{}
	c.Click(true)
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func stubOutput(t *testing.T) (clears, closes *int) {
	t.Helper()
	clears, closes = new(int), new(int)
	prevClear, prevClose := clearOutput, closeOutput
	clearOutput = func() { *clears++ }
	closeOutput = func() { *closes++ }
	t.Cleanup(func() {
		clearOutput, closeOutput = prevClear, prevClose
		device = nil
	})
	return clears, closes
}

func TestSpeakerCloseReleasesDeviceOnce(t *testing.T) {
	clears, closes := stubOutput(t)
	s := &Speaker{volume: 1}
	device = s

	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if *clears != 1 || *closes != 1 {
		t.Fatalf("expected one clear and one close, got %d and %d", *clears, *closes)
	}
	if device != nil {
		t.Fatalf("expected device to be released")
	}
}

func TestStaleSpeakerCloseKeepsNewerDevice(t *testing.T) {
	_, closes := stubOutput(t)
	old := &Speaker{volume: 1}
	current := &Speaker{volume: 1}
	device = current

	if err := old.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if *closes != 0 || device != current {
		t.Fatalf("expected stale close to leave the device open")
	}
	if err := current.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if *closes != 1 {
		t.Fatalf("expected owner close to release the device, got %d", *closes)
	}
}

func peak(samples []float64) float64 {
	maxVal := 0.0
	for _, v := range samples {
		maxVal = math.Max(maxVal, math.Abs(v))
	}
	return maxVal
}
