package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("FOOTBALL_DATA_TOKEN", "fd-token")
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("FOOTBALL_DATA_TOKEN", "fd-token")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without TELEGRAM_BOT_TOKEN")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("FOOTBALL_DATA_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without FOOTBALL_DATA_TOKEN")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UsePostgres() {
		t.Error("expected file store by default")
	}
	if cfg.StorePath != "subscriptions.json" {
		t.Errorf("unexpected store path %s", cfg.StorePath)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("unexpected poll interval %v", cfg.PollInterval)
	}
	if cfg.MatchPacing != 7*time.Second {
		t.Errorf("unexpected match pacing %v", cfg.MatchPacing)
	}
	if cfg.IsProduction() {
		t.Error("default environment must not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/matchwatch")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.UsePostgres() {
		t.Error("expected Postgres store with DATABASE_URL set")
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("unexpected poll interval %v", cfg.PollInterval)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
}

func TestCompetitionName(t *testing.T) {
	if got := CompetitionName("PL"); got != "Premier League" {
		t.Errorf("unexpected name %s", got)
	}
	if got := CompetitionName("XX"); got != "XX" {
		t.Errorf("expected code fallback, got %s", got)
	}
}
