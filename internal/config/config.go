// Package config loads and validates runtime configuration at startup.
// Values come from an optional TOML file, then environment variables, which
// win. Fail-fast: an invalid value aborts startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all runtime configuration for the jobboard service. It is
// built once and handed to every component; nothing reads the environment
// after Load returns.
type Config struct {
	Port        string `toml:"port" validate:"required,numeric"`
	GRPCPort    string `toml:"grpc_port" validate:"omitempty,numeric"`
	Env         string `toml:"env" validate:"oneof=development production test"`
	LogLevel    string `toml:"log_level" validate:"oneof=debug info warn error"`
	DatabaseURL string `toml:"database_url"`
	RedisURL    string `toml:"redis_url"`
	JWTSecret   string `toml:"jwt_secret"`

	ProviderTimeoutSeconds int `toml:"provider_timeout_seconds" validate:"min=1,max=120"`
	ProviderRetryDelayMS   int `toml:"provider_retry_delay_ms" validate:"min=0,max=10000"`
	ProviderRatePerSecond  int `toml:"provider_rate_per_second" validate:"min=1"`
	CacheTTLMinutes        int `toml:"cache_ttl_minutes" validate:"min=0"`

	Warm      WarmConfig      `toml:"warm"`
	Adzuna    AdzunaConfig    `toml:"adzuna"`
	Jooble    JoobleConfig    `toml:"jooble"`
	USAJobs   USAJobsConfig   `toml:"usajobs"`
	Careerjet CareerjetConfig `toml:"careerjet"`
}

// WarmConfig drives the cache warm-up scheduler.
type WarmConfig struct {
	Schedule string   `toml:"schedule"` // cron spec, e.g. "@every 1h"
	Queries  []string `toml:"queries"`
}

// AdzunaConfig holds credentials for the Adzuna aggregator API.
type AdzunaConfig struct {
	AppID   string `toml:"app_id"`
	AppKey  string `toml:"app_key"`
	Country string `toml:"country" validate:"omitempty,len=2,lowercase"` // e.g. "us", "gb"
}

// JoobleConfig holds credentials for the Jooble API.
type JoobleConfig struct {
	APIKey string `toml:"api_key"`
}

// USAJobsConfig holds credentials for the USAJOBS government API. The API
// expects the registered e-mail address as User-Agent.
type USAJobsConfig struct {
	APIKey    string `toml:"api_key"`
	UserAgent string `toml:"user_agent" validate:"omitempty,email"`
}

// CareerjetConfig holds the Careerjet affiliate id.
type CareerjetConfig struct {
	AffiliateID string `toml:"affiliate_id"`
	Locale      string `toml:"locale"`
}

// ProviderTimeout is the per-provider deadline for one search call.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// RetryDelay is the pause before the single retry of a transient failure.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.ProviderRetryDelayMS) * time.Millisecond
}

// CacheTTL is how long a search response stays cached. Zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() Config {
	return Config{
		Port:                   "8083",
		GRPCPort:               "9093",
		Env:                    "development",
		LogLevel:               "info",
		ProviderTimeoutSeconds: 10,
		ProviderRetryDelayMS:   500,
		ProviderRatePerSecond:  5,
		CacheTTLMinutes:        10,
		Warm:                   WarmConfig{Schedule: "@every 1h"},
		Adzuna:                 AdzunaConfig{Country: "us"},
		Careerjet:              CareerjetConfig{Locale: "en_US"},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnv overlays environment variables on cfg. lookup is os.LookupEnv
// outside of tests.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
		return nil
	}

	str("JOBBOARD_PORT", &cfg.Port)
	str("APP_ENV", &cfg.Env)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_URL", &cfg.RedisURL)
	str("JWT_SECRET", &cfg.JWTSecret)

	// An explicitly empty JOBBOARD_GRPC_PORT disables the gRPC listener.
	if v, ok := lookup("JOBBOARD_GRPC_PORT"); ok {
		cfg.GRPCPort = v
	}

	for key, dst := range map[string]*int{
		"PROVIDER_TIMEOUT_SECONDS": &cfg.ProviderTimeoutSeconds,
		"PROVIDER_RETRY_DELAY_MS":  &cfg.ProviderRetryDelayMS,
		"PROVIDER_RATE_PER_SECOND": &cfg.ProviderRatePerSecond,
		"CACHE_TTL_MINUTES":        &cfg.CacheTTLMinutes,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	str("WARM_SCHEDULE", &cfg.Warm.Schedule)
	if v, ok := lookup("WARM_QUERIES"); ok && v != "" {
		cfg.Warm.Queries = splitList(v)
	}

	str("ADZUNA_APP_ID", &cfg.Adzuna.AppID)
	str("ADZUNA_APP_KEY", &cfg.Adzuna.AppKey)
	str("ADZUNA_COUNTRY", &cfg.Adzuna.Country)
	str("JOOBLE_API_KEY", &cfg.Jooble.APIKey)
	str("USAJOBS_API_KEY", &cfg.USAJobs.APIKey)
	str("USAJOBS_USER_AGENT", &cfg.USAJobs.UserAgent)
	str("CAREERJET_AFFILIATE_ID", &cfg.Careerjet.AffiliateID)
	str("CAREERJET_LOCALE", &cfg.Careerjet.Locale)
	return nil
}

// splitList splits a ';'-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
