package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// breakerCooldown pauses Redis attempts after a failure so every request does
// not pay a connection timeout while Redis is down.
const breakerCooldown = 30 * time.Second

// SettingsProvider supplies the latest settings snapshot.
type SettingsProvider func() SettingsConfig

// Manager picks a limiter backend per request: Redis when enabled and
// healthy, the in-process limiter otherwise.
type Manager struct {
	provider SettingsProvider
	nowFn    func() time.Time
	memory   Limiter

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	redisAddr    string
	redisDB      int
	breakerUntil time.Time
}

// NewManager constructs a Manager; nil arguments get defaults.
func NewManager(provider SettingsProvider, nowFn func() time.Time) *Manager {
	if provider == nil {
		provider = LoadSettingsConfig
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Manager{
		provider: provider,
		nowFn:    nowFn,
		memory:   NewMemoryLimiter(),
	}
}

// Allow checks the request against the configured limit. A zero limit in
// settings disables limiting entirely.
func (m *Manager) Allow(ctx context.Context, key string) (Result, error) {
	if m == nil || key == "" {
		return Result{Allowed: true}, nil
	}
	cfg := m.provider()
	if cfg.Limit <= 0 {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()

	if cfg.RedisEnabled {
		if result, ok := m.tryRedis(ctx, key, cfg, now); ok {
			return result, nil
		}
	}
	return m.memory.Allow(ctx, key, cfg.Limit, now)
}

func (m *Manager) tryRedis(ctx context.Context, key string, cfg SettingsConfig, now time.Time) (Result, bool) {
	m.mu.Lock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		m.mu.Unlock()
		return Result{}, false
	}
	m.breakerUntil = time.Time{}
	limiter, errConnect := m.ensureRedisLocked(ctx, cfg)
	m.mu.Unlock()

	if errConnect != nil {
		m.tripBreaker(errConnect, now)
		return Result{}, false
	}

	result, errAllow := limiter.Allow(ctx, key, cfg.Limit, now)
	if errAllow != nil {
		m.tripBreaker(errAllow, now)
		return Result{}, false
	}
	return result, true
}

// ensureRedisLocked reuses the cached client while the address stays the
// same and reconnects when settings change. Callers hold m.mu.
func (m *Manager) ensureRedisLocked(ctx context.Context, cfg SettingsConfig) (*RedisLimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis: address not configured")
	}
	if m.redisLimiter != nil && m.redisAddr == addr && m.redisDB == cfg.RedisDB {
		return m.redisLimiter, nil
	}
	if m.redisLimiter != nil {
		_ = m.redisLimiter.client.Close()
		m.redisLimiter = nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}

	m.redisLimiter = NewRedisLimiter(client, cfg.RedisPrefix)
	m.redisAddr = addr
	m.redisDB = cfg.RedisDB
	return m.redisLimiter, nil
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(breakerCooldown)
	log.WithError(err).Warn("rate limit: redis unavailable, using in-process limiter")
}
