package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var incrWindowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return hits
`)

// RedisLimiter is a fixed-window rate limiter shared across instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter using the given key prefix.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: strings.TrimSpace(prefix)}
}

// Allow counts the request against the window containing now.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	reset := windowReset(now)

	// Keys expire one extra window after their own so clock skew between
	// instances never resurrects a closed window.
	res, errEval := incrWindowScript.Run(ctx, l.client,
		[]string{l.windowKey(key, windowStart(now))}, windowSeconds*2).Result()
	if errEval != nil {
		return Result{}, fmt.Errorf("rate limit redis: %w", errEval)
	}
	hits, ok := res.(int64)
	if !ok {
		return Result{}, fmt.Errorf("rate limit redis: unexpected script result %T", res)
	}
	if hits > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := limit - int(hits)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) windowKey(key string, start int64) string {
	k := key + ":" + strconv.FormatInt(start, 10)
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}
