// Package throttle provides keyed debouncing: scheduling under an id replaces
// whatever is pending under that id.
package throttle

import (
	"sync"
	"time"
)

type pending struct {
	timer *time.Timer
	seq   uint64
}

type Scheduler struct {
	mu      sync.Mutex
	pending map[string]pending
	seq     uint64
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[string]pending),
	}
}

// Debounce runs fn after delay unless another Debounce or Cancel for id comes
// first. fn runs on a timer goroutine; callers hand work back to their own loop.
func (s *Scheduler) Debounce(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}

	s.seq++
	seq := s.seq
	timer := time.AfterFunc(delay, func() {
		s.mu.Lock()
		p, ok := s.pending[id]
		if !ok || p.seq != seq {
			// Replaced or cancelled after the timer fired.
			s.mu.Unlock()
			return
		}
		delete(s.pending, id)
		s.mu.Unlock()

		fn()
	})
	s.pending[id] = pending{timer: timer, seq: seq}
}

// Cancel drops the pending call for id, if any. It reports whether one was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.pending, id)
	return true
}

func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Stop cancels everything pending and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}
