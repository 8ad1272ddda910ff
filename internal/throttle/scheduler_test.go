package throttle

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_LastCallWins(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		n := i
		s.Debounce("region", 20*time.Millisecond, func() {
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
			close(done)
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}

	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 4 {
		t.Errorf("expected only the last call to run, got %v", got)
	}
}

func TestScheduler_IdsAreIndependent(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int64
	var wg sync.WaitGroup
	wg.Add(2)
	s.Debounce("a", 5*time.Millisecond, func() { fired.Add(1); wg.Done() })
	s.Debounce("b", 5*time.Millisecond, func() { fired.Add(1); wg.Done() })
	wg.Wait()

	if fired.Load() != 2 {
		t.Errorf("expected both ids to fire, got %d", fired.Load())
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Debounce("unfold", 20*time.Millisecond, func() { fired.Store(true) })

	if !s.Pending("unfold") {
		t.Fatal("expected pending call")
	}
	if !s.Cancel("unfold") {
		t.Error("expected Cancel to report a pending call")
	}
	if s.Cancel("unfold") {
		t.Error("second Cancel should find nothing")
	}

	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled call fired")
	}
}

func TestScheduler_StopRejectsNewWork(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Bool
	s.Debounce("x", 10*time.Millisecond, func() { fired.Store(true) })
	s.Stop()
	s.Debounce("y", time.Millisecond, func() { fired.Store(true) })

	time.Sleep(30 * time.Millisecond)
	if fired.Load() {
		t.Error("no call should run after Stop")
	}
}
