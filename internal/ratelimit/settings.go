package ratelimit

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	internalsettings "github.com/JiBrAN123456/Company-subscription-service/internal/settings"
)

// SettingsConfig is a snapshot of the rate limit settings kept in DB config.
type SettingsConfig struct {
	Limit         int    // Requests per minute, 0 disables limiting.
	RedisEnabled  bool   // Whether to use the shared Redis backend.
	RedisAddr     string // Redis host:port.
	RedisPassword string // Redis auth password.
	RedisDB       int    // Redis logical database.
	RedisPrefix   string // Key prefix for limiter windows.
}

// LoadSettingsConfig reads the current rate limit settings from DB config,
// falling back to defaults for missing or malformed values.
func LoadSettingsConfig() SettingsConfig {
	cfg := SettingsConfig{
		Limit:       internalsettings.DefaultRateLimit,
		RedisPrefix: internalsettings.DefaultRateLimitRedisPrefix,
	}

	if v, ok := settingInt(internalsettings.RateLimitKey); ok {
		cfg.Limit = v
	}
	if v, ok := settingBool(internalsettings.RateLimitRedisEnabledKey); ok {
		cfg.RedisEnabled = v
	}
	if v, ok := settingString(internalsettings.RateLimitRedisAddrKey); ok {
		cfg.RedisAddr = v
	}
	if v, ok := settingString(internalsettings.RateLimitRedisPasswordKey); ok {
		cfg.RedisPassword = v
	}
	if v, ok := settingInt(internalsettings.RateLimitRedisDBKey); ok {
		cfg.RedisDB = v
	}
	if v, ok := settingString(internalsettings.RateLimitRedisPrefixKey); ok && v != "" {
		cfg.RedisPrefix = v
	}
	return cfg
}

func settingString(key string) (string, bool) {
	raw, ok := internalsettings.DBConfigValue(key)
	if !ok {
		return "", false
	}
	raw = json.RawMessage(bytes.TrimSpace(raw))
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func settingInt(key string) (int, bool) {
	raw, ok := internalsettings.DBConfigValue(key)
	if !ok {
		return 0, false
	}
	raw = json.RawMessage(bytes.TrimSpace(raw))
	var n int
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		parsed, errParse := strconv.Atoi(strings.TrimSpace(s))
		if errParse != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func settingBool(key string) (bool, bool) {
	raw, ok := internalsettings.DBConfigValue(key)
	if !ok {
		return false, false
	}
	raw = json.RawMessage(bytes.TrimSpace(raw))
	var b bool
	if errUnmarshal := json.Unmarshal(raw, &b); errUnmarshal == nil {
		return b, true
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
	}
	return false, false
}
