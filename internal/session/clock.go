package session

import (
	"sort"
	"sync"
	"time"
)

// MonotonicClock measures milliseconds since its creation using the
// monotonic clock reading of time.Time.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock starting at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now implements Clock.
func (c *MonotonicClock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// DelayDuration converts a timer delay to a time.Duration.
func DelayDuration(t Timer) time.Duration {
	return time.Duration(t.Delay * float64(time.Millisecond))
}

// ChannelScheduler arms real timers and delivers fired timers on C, for a
// select loop that owns the controller. Only unfired timers are retained.
type ChannelScheduler struct {
	C    <-chan Timer
	c    chan Timer
	done chan struct{}

	mu     sync.Mutex
	nextID uint64
	live   map[uint64]*time.Timer
}

// NewChannelScheduler returns a scheduler with a buffered delivery channel.
func NewChannelScheduler() *ChannelScheduler {
	c := make(chan Timer, 16)
	return &ChannelScheduler{C: c, c: c, done: make(chan struct{}), live: map[uint64]*time.Timer{}}
}

// Arm implements Scheduler.
func (s *ChannelScheduler) Arm(t Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.live[id] = time.AfterFunc(DelayDuration(t), func() {
		s.mu.Lock()
		delete(s.live, id)
		s.mu.Unlock()
		select {
		case s.c <- t:
		case <-s.done:
		}
	})
}

// CancelAll implements Scheduler. Timers that already fired may still be
// queued on C; the controller drops them by epoch.
func (s *ChannelScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.live {
		t.Stop()
		delete(s.live, id)
	}
}

func (s *ChannelScheduler) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close stops all timers and unblocks pending deliveries.
func (s *ChannelScheduler) Close() {
	s.CancelAll()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// FakeClock is a manually advanced Clock for tests and replays.
type FakeClock struct {
	now float64
}

// Now implements Clock.
func (c *FakeClock) Now() float64 { return c.now }

// Set moves the clock to ms.
func (c *FakeClock) Set(ms float64) { c.now = ms }

type pendingTimer struct {
	due   float64
	seq   int
	timer Timer
}

// ManualScheduler collects armed timers and fires them when a FakeClock is
// advanced past their due time.
type ManualScheduler struct {
	clock   *FakeClock
	pending []pendingTimer
	seq     int
}

// NewManualScheduler returns a scheduler bound to clock.
func NewManualScheduler(clock *FakeClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

// Arm implements Scheduler.
func (s *ManualScheduler) Arm(t Timer) {
	s.seq++
	s.pending = append(s.pending, pendingTimer{due: s.clock.Now() + t.Delay, seq: s.seq, timer: t})
}

// CancelAll implements Scheduler.
func (s *ManualScheduler) CancelAll() {
	s.pending = nil
}

// Pending returns the number of armed timers.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// AdvanceTo fires, in due order, every timer due at or before ms, moving
// the clock to each due time first. Timers armed while firing are honoured.
func (s *ManualScheduler) AdvanceTo(ms float64, fire func(Timer)) {
	for {
		if len(s.pending) == 0 {
			break
		}
		sort.SliceStable(s.pending, func(i, j int) bool {
			if s.pending[i].due == s.pending[j].due {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].due < s.pending[j].due
		})
		next := s.pending[0]
		if next.due > ms {
			break
		}
		s.pending = s.pending[1:]
		s.clock.Set(next.due)
		fire(next.timer)
	}
	if s.clock.Now() < ms {
		s.clock.Set(ms)
	}
}
