// Package ratelimit provides a fixed-window request limiter. It is injected
// into the transport layer so the analysis pipeline itself stays free of
// shared mutable state.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter grants up to quota requests per key within each window. The clock
// is supplied by the caller, which keeps the limiter trivially testable.
type Limiter struct {
	mu      sync.Mutex
	quota   int
	window  time.Duration
	buckets map[string]*bucket
}

type bucket struct {
	count      int
	windowOpen time.Time
}

// NewLimiter constructs a limiter with the given per-window quota.
func NewLimiter(quota int, window time.Duration) *Limiter {
	if quota <= 0 {
		quota = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		quota:   quota,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether a request under key may proceed at the given instant.
// The window resets lazily on the first request after expiry.
func (l *Limiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowOpen) > l.window {
		l.buckets[key] = &bucket{count: 1, windowOpen: now}
		return true
	}

	b.count++
	return b.count <= l.quota
}
