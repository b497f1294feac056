package ratelimit

import (
	"context"
	"strconv"
	"time"
)

// windowSeconds is the fixed window size applied by every backend.
const windowSeconds = 60

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool      // Whether the request may proceed.
	Remaining int       // Requests left in the current window.
	Reset     time.Time // When the current window closes.
}

// Limiter provides fixed-window rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// AdminKey builds the limiter key for an authenticated admin.
func AdminKey(adminID uint64) string {
	return "admin:" + strconv.FormatUint(adminID, 10)
}

// windowStart truncates now to the beginning of its window.
func windowStart(now time.Time) int64 {
	return now.Unix() - now.Unix()%windowSeconds
}

// windowReset reports when the window containing now closes.
func windowReset(now time.Time) time.Time {
	return time.Unix(windowStart(now)+windowSeconds, 0).UTC()
}
