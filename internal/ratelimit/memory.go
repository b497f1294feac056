package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	start int64
	hits  int
}

// MemoryLimiter is a fixed-window in-process rate limiter. It is the
// fallback backend when Redis is disabled or unreachable.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryLimiter constructs an empty MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket)}
}

// Allow counts the request against the window containing now.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	start := windowStart(now)
	reset := windowReset(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || b.start != start {
		b = &bucket{start: start}
		l.buckets[key] = b
	}
	if b.hits >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	b.hits++
	return Result{Allowed: true, Remaining: limit - b.hits, Reset: reset}, nil
}
