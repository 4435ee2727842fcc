// Package db provides a pgxpool-based connection pool with prepared
// statement registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kxbet/matchwatch/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// EnsureSchema creates the subscription tables when missing. Idempotent;
// run once at startup.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS subscriptions (
			subscriber_id TEXT NOT NULL,
			match_id      TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (subscriber_id, match_id)
		)`,
		`CREATE TABLE IF NOT EXISTS match_records (
			match_id      TEXT PRIMARY KEY,
			last_status   TEXT NOT NULL DEFAULT '',
			home_goals    INT,
			away_goals    INT,
			sent_start    BOOLEAN NOT NULL DEFAULT FALSE,
			sent_halftime BOOLEAN NOT NULL DEFAULT FALSE,
			sent_fulltime BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_match
			ON subscriptions (match_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the subscription
// store uses. Prepared statements eliminate parse overhead on every poll.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Subscription reads
		"tracked_match_ids": "SELECT DISTINCT match_id FROM subscriptions ORDER BY match_id",
		"tracked_by":        "SELECT match_id FROM subscriptions WHERE subscriber_id = $1 ORDER BY created_at",
		"subscribers_of":    "SELECT subscriber_id FROM subscriptions WHERE match_id = $1 ORDER BY subscriber_id",
		"load_subscriptions": "SELECT subscriber_id, match_id FROM subscriptions " +
			"ORDER BY subscriber_id, created_at",

		// Record reads
		"record_get": "SELECT last_status, home_goals, away_goals, sent_start, sent_halftime, sent_fulltime " +
			"FROM match_records WHERE match_id = $1",
		"load_records": "SELECT match_id, last_status, home_goals, away_goals, sent_start, sent_halftime, sent_fulltime " +
			"FROM match_records",

		// Record writes. Sent flags are monotonic: OR with the stored
		// value so a stale writer can never unmark a delivered alert.
		"record_upsert": `
			INSERT INTO match_records (match_id, last_status, home_goals, away_goals, sent_start, sent_halftime, sent_fulltime, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (match_id) DO UPDATE SET
				last_status   = EXCLUDED.last_status,
				home_goals    = COALESCE(EXCLUDED.home_goals, match_records.home_goals),
				away_goals    = COALESCE(EXCLUDED.away_goals, match_records.away_goals),
				sent_start    = match_records.sent_start OR EXCLUDED.sent_start,
				sent_halftime = match_records.sent_halftime OR EXCLUDED.sent_halftime,
				sent_fulltime = match_records.sent_fulltime OR EXCLUDED.sent_fulltime,
				updated_at    = NOW()`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
