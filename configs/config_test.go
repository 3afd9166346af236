package configs

import (
	"testing"
	"time"
)

func TestLoadConfigSweepInterval(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL_MINUTES", "5")

	cfg := LoadConfig()
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("expected 5m sweep interval, got %v", cfg.SweepInterval)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL_MINUTES", "")
	t.Setenv("GENERAL_MAX_LOANS", "")

	cfg := LoadConfig()
	if cfg.SweepInterval != 60*time.Minute {
		t.Errorf("expected 60m default sweep interval, got %v", cfg.SweepInterval)
	}
	if cfg.GeneralMaxLoans != 2 {
		t.Errorf("expected default general loan cap 2, got %d", cfg.GeneralMaxLoans)
	}
}
