// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/bot and cmd/matchctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Competition registry — the competitions exposed by the /today menu
// --------------------------------------------------------------------------

type Competition struct {
	Code string
	Name string
}

// Competitions lists the supported competitions in menu order.
var Competitions = []Competition{
	{Code: "PL", Name: "Premier League"},
	{Code: "PD", Name: "La Liga"},
	{Code: "SA", Name: "Serie A"},
	{Code: "BL1", Name: "Bundesliga"},
	{Code: "FL1", Name: "Ligue 1"},
	{Code: "CL", Name: "Champions League"},
}

// CompetitionName returns the display name for a competition code,
// falling back to the code itself.
func CompetitionName(code string) string {
	for _, c := range Competitions {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Credentials
	TelegramBotToken  string
	FootballDataToken string

	// Storage: Postgres when DatabaseURL is set, JSON file otherwise
	DatabaseURL    string
	StorePath      string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Polling
	PollInterval time.Duration // between full cycles
	IdleInterval time.Duration // when nothing is tracked
	MatchPacing  time.Duration // between per-match provider fetches
	ProviderRPM  int           // provider rate limit, requests per minute
	MenuMatches  int           // cap on matches shown per competition menu

	// Ops API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// Only the two provider credentials are required.
func Load() (*Config, error) {
	tgToken := envOr("TELEGRAM_BOT_TOKEN", "")
	if tgToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be set")
	}
	fdToken := envOr("FOOTBALL_DATA_TOKEN", "")
	if fdToken == "" {
		return nil, fmt.Errorf("FOOTBALL_DATA_TOKEN must be set")
	}

	return &Config{
		TelegramBotToken:  tgToken,
		FootballDataToken: fdToken,

		DatabaseURL:    envOr("DATABASE_URL", ""),
		StorePath:      envOr("STORE_PATH", "subscriptions.json"),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		PollInterval: envDuration("POLL_INTERVAL", 30*time.Second),
		IdleInterval: envDuration("IDLE_INTERVAL", 10*time.Second),
		MatchPacing:  envDuration("MATCH_PACING", 7*time.Second),
		ProviderRPM:  envInt("FOOTBALL_DATA_RPM", 10),
		MenuMatches:  envInt("MENU_MATCHES", 20),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8090)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsePostgres reports whether the Postgres store should back subscriptions.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
