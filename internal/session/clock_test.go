package session

import (
	"testing"
	"time"
)

func TestChannelSchedulerDropsFiredTimers(t *testing.T) {
	s := NewChannelScheduler()
	defer s.Close()

	const beats = 200
	for i := 0; i < beats; i++ {
		s.Arm(Timer{Kind: TimerMetronome, Delay: 0})
	}
	timeout := time.After(5 * time.Second)
	for i := 0; i < beats; i++ {
		select {
		case <-s.C:
		case <-timeout:
			t.Fatalf("only %d of %d timers delivered", i, beats)
		}
	}
	if got := s.liveCount(); got != 0 {
		t.Fatalf("expected fired timers to be released, %d retained", got)
	}
}

func TestChannelSchedulerCancelAll(t *testing.T) {
	s := NewChannelScheduler()
	defer s.Close()

	s.Arm(Timer{Kind: TimerMetronome, Delay: 60_000})
	s.Arm(Timer{Kind: TimerDeadline, Delay: 60_000})
	if got := s.liveCount(); got != 2 {
		t.Fatalf("expected 2 live timers, got %d", got)
	}
	s.CancelAll()
	if got := s.liveCount(); got != 0 {
		t.Fatalf("expected no live timers after cancel, got %d", got)
	}
	select {
	case tm := <-s.C:
		t.Fatalf("unexpected delivery after cancel: %v", tm.Kind)
	default:
	}
}
