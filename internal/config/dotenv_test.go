package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.RoundSeconds != 60 {
		t.Fatalf("expected 60 second rounds, got %d", cfg.RoundSeconds)
	}
	if cfg.RoundDuration() != time.Minute {
		t.Fatalf("expected 1m round duration, got %s", cfg.RoundDuration())
	}
	if cfg.SessionRetention() != 24*time.Hour {
		t.Fatalf("expected 24h retention, got %s", cfg.SessionRetention())
	}
	if cfg.StaleDisconnected() != 24*time.Hour {
		t.Fatalf("expected 24h stale cutoff, got %s", cfg.StaleDisconnected())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ROUND_SECONDS", "15")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "30")
	t.Setenv("SESSION_RETENTION_HOURS", "not-a-number")

	cfg := Load()
	if cfg.RoundSeconds != 15 {
		t.Fatalf("expected override 15, got %d", cfg.RoundSeconds)
	}
	if cfg.SweepIntervalSeconds != 30 {
		t.Fatalf("expected override 30, got %d", cfg.SweepIntervalSeconds)
	}
	if cfg.SessionRetentionHours != 24 {
		t.Fatalf("expected invalid override ignored, got %d", cfg.SessionRetentionHours)
	}
}
