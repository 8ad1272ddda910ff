package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, path string) error {
		processed.Add(1)
		return nil
	}

	pool := NewPool("test", 2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit("thumb.jpg")
	}

	time.Sleep(50 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, n int) error {
		processed.Add(1)
		return nil
	}

	pool := NewPool("test", 4, 100, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 100; i++ {
		go func(n int) {
			pool.Submit(n)
		}(i)
	}

	time.Sleep(100 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 100 {
		t.Errorf("expected 100 jobs processed, got %d", processed.Load())
	}
}

func TestPool_TrySubmitDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	processor := func(ctx context.Context, n int) error {
		<-release
		return nil
	}

	// Not started: nothing drains the buffer.
	pool := NewPool("test", 1, 2, processor)

	if !pool.TrySubmit(1) || !pool.TrySubmit(2) {
		t.Fatal("expected buffered submissions to succeed")
	}
	if pool.TrySubmit(3) {
		t.Error("expected submission to a full queue to be dropped")
	}

	close(release)
	pool.Start(context.Background())
	pool.Stop()

	if pool.TrySubmit(4) || pool.Submit(5) {
		t.Error("expected submissions after Stop to be rejected")
	}
	pool.Stop()
}

func TestPool_ProcessorErrorsDoNotStopWorkers(t *testing.T) {
	var calls atomic.Int64
	processor := func(ctx context.Context, n int) error {
		calls.Add(1)
		return errors.New("fetch failed")
	}

	pool := NewPool("test", 1, 10, processor)
	pool.Start(context.Background())
	for i := 0; i < 3; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestPool_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, n int) error {
		time.Sleep(10 * time.Millisecond)
		processed.Add(1)
		return nil
	}

	pool := NewPool("test", 2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(i)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}
