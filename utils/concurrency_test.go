package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestActionGuardRefusesSecondTrigger(t *testing.T) {
	g := NewActionGuard()

	if !g.TryAcquire("analysis") {
		t.Fatal("first TryAcquire should succeed")
	}
	if g.TryAcquire("analysis") {
		t.Error("second TryAcquire of a busy action should fail")
	}
	if !g.TryAcquire("search") {
		t.Error("a different action should not be blocked")
	}

	g.Release("analysis")
	if g.Busy("analysis") {
		t.Error("analysis should be idle after Release")
	}
	if !g.TryAcquire("analysis") {
		t.Error("TryAcquire after Release should succeed")
	}
}

func TestActionGuardConcurrency(t *testing.T) {
	g := NewActionGuard()
	var acquired int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if g.TryAcquire("collect") {
				atomic.AddInt64(&acquired, 1)
			}
		})
	}
	pool.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly 1 successful acquire, got %d", acquired)
	}
}

func TestWorkerPoolRunsJobsConcurrently(t *testing.T) {
	pool := NewWorkerPool(2, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	release := make(chan struct{})
	var finished int64

	for i := 0; i < 2; i++ {
		pool.Submit(func() {
			wg.Done()
			<-release
			atomic.AddInt64(&finished, 1)
		})
	}

	// Both jobs must be running at once for wg to reach zero.
	wg.Wait()
	close(release)
	pool.Wait()

	if finished != 2 {
		t.Errorf("finished: got %d, want 2", finished)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Logger:      NewDiscardLogger(),
		ShouldRetry: func(err error) bool { return !errors.Is(err, permanent) },
	}

	err := r.Do(context.Background(), "fetch", func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewDiscardLogger()}

	err := r.Do(context.Background(), "fetch", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryWrapsAfterExhaustion(t *testing.T) {
	cause := errors.New("timeout")
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewDiscardLogger()}

	err := r.Do(context.Background(), "stats", func() error { return cause })
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestRetryStopsWaitingWhenCancelled(t *testing.T) {
	cause := errors.New("connection refused")
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Minute, Logger: NewDiscardLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "stats", func() error {
			calls++
			return cause
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) || !errors.Is(err, cause) {
			t.Errorf("error: got %v, want it to wrap context.Canceled and the cause", err)
		}
		if calls != 1 {
			t.Errorf("calls: got %d, want 1", calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do kept sleeping after cancellation")
	}
}
