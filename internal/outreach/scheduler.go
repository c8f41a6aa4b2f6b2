package outreach

import (
	"sync"
	"time"
)

// CancelFunc stops a pending callback. Calling it after the callback fired is
// a no-op.
type CancelFunc func()

// Scheduler runs callbacks after a delay. The manager uses it for send
// timeouts and simulated provider progress; tests substitute a manual one.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

// TimerScheduler schedules callbacks on real timers.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler holds callbacks until Advance moves its virtual clock past
// their deadline. It exists for deterministic lifecycle tests.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending map[int]manualEntry
}

type manualEntry struct {
	at time.Duration
	fn func()
}

// NewManualScheduler constructs a ManualScheduler with an empty queue.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[int]manualEntry)}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.pending[id] = manualEntry{at: s.now + d, fn: fn}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, id)
	}
}

// Advance moves the virtual clock forward and fires every callback whose
// deadline has passed, in deadline order. Callbacks run without the lock held
// so they may schedule further work.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	now := s.now
	s.mu.Unlock()

	for {
		fn := s.popDue(now)
		if fn == nil {
			return
		}
		fn()
	}
}

// Pending returns the number of callbacks not yet fired or cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *ManualScheduler) popDue(now time.Duration) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	bestID := -1
	for id, e := range s.pending {
		if e.at > now {
			continue
		}
		if bestID == -1 || e.at < s.pending[bestID].at || (e.at == s.pending[bestID].at && id < bestID) {
			bestID = id
		}
	}
	if bestID == -1 {
		return nil
	}
	fn := s.pending[bestID].fn
	delete(s.pending, bestID)
	return fn
}
