package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, time.June, 1, 8, 0, 30, 0, time.UTC)
	key := AdminKey(1)

	for i := 0; i < 3; i++ {
		result, errAllow := limiter.Allow(context.Background(), key, 3, now)
		if errAllow != nil {
			t.Fatalf("allow: %v", errAllow)
		}
		if !result.Allowed {
			t.Fatalf("request %d unexpectedly denied", i)
		}
		if result.Remaining != 3-(i+1) {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 3-(i+1), result.Remaining)
		}
	}

	result, errAllow := limiter.Allow(context.Background(), key, 3, now)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatalf("expected denial over limit")
	}
	if !result.Reset.After(now) {
		t.Fatalf("expected reset in the future, got %v", result.Reset)
	}
}

func TestMemoryLimiter_NewWindowResets(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, time.June, 1, 8, 0, 59, 0, time.UTC)
	key := AdminKey(1)

	if result, _ := limiter.Allow(context.Background(), key, 1, now); !result.Allowed {
		t.Fatalf("first request denied")
	}
	if result, _ := limiter.Allow(context.Background(), key, 1, now); result.Allowed {
		t.Fatalf("second request in same window allowed")
	}

	next := now.Add(time.Second)
	if result, _ := limiter.Allow(context.Background(), key, 1, next); !result.Allowed {
		t.Fatalf("expected fresh window to allow")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()
	for i := 0; i < 100; i++ {
		result, errAllow := limiter.Allow(context.Background(), "k", 0, time.Now())
		if errAllow != nil || !result.Allowed {
			t.Fatalf("expected zero limit to disable throttling")
		}
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Now()

	if result, _ := limiter.Allow(context.Background(), AdminKey(1), 1, now); !result.Allowed {
		t.Fatalf("first key denied")
	}
	if result, _ := limiter.Allow(context.Background(), AdminKey(2), 1, now); !result.Allowed {
		t.Fatalf("second key throttled by first key's usage")
	}
}

func TestManager_FallsBackToMemory(t *testing.T) {
	cfg := SettingsConfig{Limit: 2, RedisEnabled: false}
	fixed := time.Date(2026, time.June, 1, 8, 0, 30, 0, time.UTC)
	manager := NewManager(func() SettingsConfig { return cfg }, func() time.Time { return fixed })

	key := AdminKey(7)
	for i := 0; i < 2; i++ {
		result, errAllow := manager.Allow(context.Background(), key)
		if errAllow != nil || !result.Allowed {
			t.Fatalf("request %d: expected allow, got %v %v", i, result, errAllow)
		}
	}
	result, errAllow := manager.Allow(context.Background(), key)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatalf("expected denial over limit")
	}
}

func TestManager_ZeroLimitDisables(t *testing.T) {
	manager := NewManager(func() SettingsConfig { return SettingsConfig{Limit: 0} }, nil)
	for i := 0; i < 10; i++ {
		result, errAllow := manager.Allow(context.Background(), AdminKey(1))
		if errAllow != nil || !result.Allowed {
			t.Fatalf("expected zero limit to disable throttling")
		}
	}
}
