package client

import (
	"testing"
	"time"
)

func TestValidateBaseURL(t *testing.T) {
	valid := []string{
		"http://localhost:5000",
		"https://api.skillswap.example",
		"https://api.skillswap.example/base",
	}
	for _, u := range valid {
		if err := ValidateBaseURL(u); err != nil {
			t.Errorf("Expected %q to be valid, got: %v", u, err)
		}
	}

	invalid := []string{
		"",
		"localhost:5000",
		"ftp://example.com",
		"http://",
	}
	for _, u := range invalid {
		if err := ValidateBaseURL(u); err == nil {
			t.Errorf("Expected %q to be rejected", u)
		}
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:5000"}
	cfg.applyDefaults()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.RefreshPath != DefaultRefreshPath {
		t.Errorf("Expected default refresh path, got %s", cfg.RefreshPath)
	}
	if cfg.RefreshBuffer != DefaultRefreshBuffer {
		t.Errorf("Expected default refresh buffer, got %v", cfg.RefreshBuffer)
	}

	// Explicit values are never overwritten
	cfg = Config{BaseURL: "http://localhost:5000", Timeout: 3 * time.Second}
	cfg.applyDefaults()
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Expected explicit timeout to stick, got %v", cfg.Timeout)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SKILLSWAP_API_URL", "https://api.skillswap.example")
	t.Setenv("SKILLSWAP_TIMEOUT", "5s")
	t.Setenv("SKILLSWAP_REFRESH_BUFFER", "90") // bare seconds
	t.Setenv("SKILLSWAP_REFRESH_TIMEOUT", "4s")
	t.Setenv("SKILLSWAP_REFRESH_LOW_WATER", "3m")
	t.Setenv("SKILLSWAP_SCHEDULER_MIN_INTERVAL", "45s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.BaseURL != "https://api.skillswap.example" {
		t.Errorf("Unexpected base URL: %s", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.Timeout)
	}
	if cfg.RefreshBuffer != 90*time.Second {
		t.Errorf("Expected 90s refresh buffer, got %v", cfg.RefreshBuffer)
	}
	if cfg.RefreshTimeout != 4*time.Second {
		t.Errorf("Expected 4s refresh timeout, got %v", cfg.RefreshTimeout)
	}
	if cfg.RefreshLowWater != 3*time.Minute {
		t.Errorf("Expected 3m low-water mark, got %v", cfg.RefreshLowWater)
	}
	if cfg.SchedulerMinInterval != 45*time.Second {
		t.Errorf("Expected 45s scheduler interval, got %v", cfg.SchedulerMinInterval)
	}
}

func TestFromEnv_MissingURL(t *testing.T) {
	t.Setenv("SKILLSWAP_API_URL", "")

	if _, err := FromEnv(); err == nil {
		t.Error("Expected FromEnv to fail without SKILLSWAP_API_URL")
	}
}
