package client

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for knobs not set by the environment or the caller.
const (
	DefaultTimeout         = 15 * time.Second
	DefaultRefreshPath     = "/api/auth/refresh-token"
	DefaultRefreshTimeout  = 10 * time.Second
	DefaultRefreshCooldown = 5 * time.Second
	DefaultRefreshBuffer   = 2 * time.Minute
	DefaultRefreshLowWater = 5 * time.Minute
	DefaultMinInterval     = 30 * time.Second
)

// Config carries everything the transport needs that must not be hardcoded:
// where the backend lives, how long requests may take, and the refresh
// tuning. Zero fields are filled with defaults by NewClient.
type Config struct {
	// BaseURL prefixes every relative request path.
	BaseURL string

	// Timeout bounds a single request attempt.
	Timeout time.Duration

	// RetryDelay is the base backoff; attempt n waits RetryDelay << n.
	RetryDelay time.Duration

	// RefreshPath is the token refresh endpoint, relative to BaseURL.
	RefreshPath string
	// RefreshTimeout bounds the refresh call.
	RefreshTimeout time.Duration
	// RefreshCooldown is the minimum interval between refresh attempts.
	RefreshCooldown time.Duration

	// RefreshBuffer is how long before expiry the scheduler refreshes.
	RefreshBuffer time.Duration
	// RefreshLowWater forces an immediate refresh on wake when less than
	// this much validity remains.
	RefreshLowWater time.Duration
	// SchedulerMinInterval is the floor for scheduler timers.
	SchedulerMinInterval time.Duration
}

// DefaultConfig returns a config pointing at baseURL with all defaults.
func DefaultConfig(baseURL string) Config {
	cfg := Config{BaseURL: baseURL}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.RefreshPath == "" {
		c.RefreshPath = DefaultRefreshPath
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = DefaultRefreshTimeout
	}
	if c.RefreshCooldown <= 0 {
		c.RefreshCooldown = DefaultRefreshCooldown
	}
	if c.RefreshBuffer <= 0 {
		c.RefreshBuffer = DefaultRefreshBuffer
	}
	if c.RefreshLowWater <= 0 {
		c.RefreshLowWater = DefaultRefreshLowWater
	}
	if c.SchedulerMinInterval <= 0 {
		c.SchedulerMinInterval = DefaultMinInterval
	}
}

// FromEnv builds a Config from the environment, loading a .env file first if
// one exists. SKILLSWAP_API_URL is required; the rest fall back to defaults.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:     os.Getenv("SKILLSWAP_API_URL"),
		RefreshPath: getEnv("SKILLSWAP_REFRESH_PATH", DefaultRefreshPath),
	}
	cfg.Timeout = getEnvDuration("SKILLSWAP_TIMEOUT", DefaultTimeout)
	cfg.RetryDelay = getEnvDuration("SKILLSWAP_RETRY_DELAY", DefaultRetryDelay)
	cfg.RefreshTimeout = getEnvDuration("SKILLSWAP_REFRESH_TIMEOUT", DefaultRefreshTimeout)
	cfg.RefreshCooldown = getEnvDuration("SKILLSWAP_REFRESH_COOLDOWN", DefaultRefreshCooldown)
	cfg.RefreshBuffer = getEnvDuration("SKILLSWAP_REFRESH_BUFFER", DefaultRefreshBuffer)
	cfg.RefreshLowWater = getEnvDuration("SKILLSWAP_REFRESH_LOW_WATER", DefaultRefreshLowWater)
	cfg.SchedulerMinInterval = getEnvDuration("SKILLSWAP_SCHEDULER_MIN_INTERVAL", DefaultMinInterval)
	cfg.applyDefaults()

	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return Config{}, fmt.Errorf("invalid SKILLSWAP_API_URL: %w", err)
	}
	return cfg, nil
}

// ValidateBaseURL checks that the base URL is usable before any request is
// built from it.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("URL must include a host")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a duration value ("10s", "2m") or a bare number of
// seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
