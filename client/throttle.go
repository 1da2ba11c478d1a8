package client

import (
	"context"
	"sync"
	"time"
)

// Throttle is the interface for rate limiting strategies.
type Throttle interface {
	// Acquire blocks until a request slot is available.
	Acquire(ctx context.Context) error
	// Remaining returns the number of requests that can start immediately.
	Remaining() int
	// Reset clears the throttle state.
	Reset()
}

// TokenBucket allows bursts of up to burst requests, refilled at rate
// requests per second.
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket throttle.
// rate is the number of requests per second, burst is the maximum burst size.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	if rate <= 0 {
		rate = 1
	}
	return &TokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

// Acquire blocks until a token is available or the context is cancelled.
func (tb *TokenBucket) Acquire(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		// Time until the next whole token
		wait := time.Duration((1 - tb.tokens) / tb.refillRate * float64(time.Second))
		tb.mu.Unlock()

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining returns the number of whole tokens in the bucket.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return int(tb.tokens)
}

// Reset refills the bucket.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens = tb.maxTokens
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefill = now
}

// SlidingWindow allows at most limit requests in any window-long interval.
type SlidingWindow struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	timestamps []time.Time
}

// NewSlidingWindow creates a sliding window throttle. Non-positive arguments
// default to 100 requests per 10 seconds.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &SlidingWindow{
		limit:      limit,
		window:     window,
		timestamps: make([]time.Time, 0, limit),
	}
}

// Acquire waits until a request slot is available.
func (t *SlidingWindow) Acquire(ctx context.Context) error {
	for {
		t.mu.Lock()
		now := time.Now()
		t.prune(now)

		if len(t.timestamps) < t.limit {
			t.timestamps = append(t.timestamps, now)
			t.mu.Unlock()
			return nil
		}

		// Wait until the oldest request leaves the window
		wait := t.timestamps[0].Add(t.window).Sub(now)
		t.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining returns the number of free slots in the current window.
func (t *SlidingWindow) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune(time.Now())
	return max(0, t.limit-len(t.timestamps))
}

// Reset clears the throttle state.
func (t *SlidingWindow) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timestamps = t.timestamps[:0]
}

// prune drops timestamps outside the window (must be called with lock held).
func (t *SlidingWindow) prune(now time.Time) {
	start := now.Add(-t.window)
	kept := t.timestamps[:0]
	for _, ts := range t.timestamps {
		if ts.After(start) {
			kept = append(kept, ts)
		}
	}
	t.timestamps = kept
}

// NoOpThrottle never blocks. It is the default.
type NoOpThrottle struct{}

// NewNoOpThrottle creates a no-op throttle.
func NewNoOpThrottle() *NoOpThrottle {
	return &NoOpThrottle{}
}

// Acquire returns immediately.
func (NoOpThrottle) Acquire(ctx context.Context) error {
	return ctx.Err()
}

// Remaining always returns a large number.
func (NoOpThrottle) Remaining() int {
	return 1000000
}

// Reset does nothing.
func (NoOpThrottle) Reset() {}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
