package utils

import (
	"sync"
	"time"
)

// WorkerPool manages a pool of goroutines with optional rate limiting.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
// A rate limit of zero disables spacing between jobs.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastRequest: time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	if wp.rateLimitMs <= 0 {
		return
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastRequest)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastRequest = time.Now()
}

// ActionGuard tracks which named user actions are currently in flight so a
// second trigger of the same action can be refused while the first runs.
type ActionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewActionGuard creates an empty ActionGuard.
func NewActionGuard() *ActionGuard {
	return &ActionGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire returns true if the action was idle and is now marked busy,
// false if it is already running.
func (g *ActionGuard) TryAcquire(action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[action]; busy {
		return false
	}
	g.inFlight[action] = struct{}{}
	return true
}

// Release marks the action idle again.
func (g *ActionGuard) Release(action string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, action)
}

// Busy reports whether the action is currently in flight.
func (g *ActionGuard) Busy(action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[action]
	return busy
}
