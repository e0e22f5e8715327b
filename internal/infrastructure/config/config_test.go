package config_test

import (
	"testing"
	"time"

	"github.com/finvault/ledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_CURRENCY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.BaseCurrency != "USD" {
		t.Fatalf("expected default base currency USD, got %s", cfg.BaseCurrency)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.CircularMaxHops != 5 || !cfg.CircularExcludeTreasury {
		t.Fatalf("expected default circular funding policy, got hops=%d treasury=%v",
			cfg.CircularMaxHops, cfg.CircularExcludeTreasury)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("BASE_CURRENCY", "EUR")
	t.Setenv("FX_CACHE_TTL", "2m")
	t.Setenv("CIRCULAR_MAX_HOPS", "8")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.BaseCurrency != "EUR" {
		t.Fatalf("expected base currency override, got %s", cfg.BaseCurrency)
	}

	if cfg.FxCacheTTL != 2*time.Minute || cfg.CircularMaxHops != 8 {
		t.Fatalf("expected fx/circular overrides, got ttl=%s hops=%d", cfg.FxCacheTTL, cfg.CircularMaxHops)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
