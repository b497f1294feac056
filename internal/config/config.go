package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvStripeAPIKey = "STRIPE_API_KEY"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// SMTPConfig holds outbound email settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// StripeConfig holds card gateway settings.
type StripeConfig struct {
	APIKey   string `yaml:"api-key"`
	Currency string `yaml:"currency"`
}

// NotifierConfig holds expiry notifier settings.
type NotifierConfig struct {
	Schedule string `yaml:"schedule"`
	BaseURL  string `yaml:"base-url"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// LoadSMTPConfig loads outbound email settings from the YAML config file.
func LoadSMTPConfig(configPath string) (SMTPConfig, error) {
	// fileConfig maps the YAML fields needed for SMTP settings.
	type fileConfig struct {
		SMTP SMTPConfig `yaml:"smtp"`
	}

	var result SMTPConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.SMTP
		}
	}

	if password := strings.TrimSpace(os.Getenv(EnvSMTPPassword)); password != "" {
		result.Password = password
	}
	if result.Port <= 0 {
		result.Port = 587
	}
	return result, nil
}

// LoadStripeConfig loads card gateway settings from the YAML config file.
func LoadStripeConfig(configPath string) (StripeConfig, error) {
	// fileConfig maps the YAML fields needed for gateway settings.
	type fileConfig struct {
		Stripe StripeConfig `yaml:"stripe"`
	}

	var result StripeConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Stripe
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvStripeAPIKey)); key != "" {
		result.APIKey = key
	}
	if strings.TrimSpace(result.Currency) == "" {
		result.Currency = "usd"
	}
	return result, nil
}

// defaultNotifierSchedule runs the expiry scan once per day at 08:00 UTC.
const defaultNotifierSchedule = "0 8 * * *"

// LoadNotifierConfig loads expiry notifier settings from the YAML config file.
func LoadNotifierConfig(configPath string) (NotifierConfig, error) {
	// fileConfig maps the YAML fields needed for notifier settings.
	type fileConfig struct {
		Notifier NotifierConfig `yaml:"notifier"`
	}

	var result NotifierConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Notifier
		}
	}

	if strings.TrimSpace(result.Schedule) == "" {
		result.Schedule = defaultNotifierSchedule
	}
	return result, nil
}
