package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kxbet/matchwatch/internal/alert"
	"github.com/kxbet/matchwatch/internal/db"
	"github.com/kxbet/matchwatch/internal/footballdata"
)

// PostgresStore persists the state in two tables (subscriptions,
// match_records). Transactions provide the atomic-replacement guarantee the
// file store gets from rename; row-level conflict handling keeps the sent
// flags monotonic.
type PostgresStore struct {
	pool *db.Pool
}

// NewPostgresStore creates a store backed by an existing pool. The pool's
// prepared statements and schema must already be registered.
func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context) (*State, error) {
	state := NewState()

	rows, err := p.pool.Query(ctx, "load_subscriptions")
	if err != nil {
		return nil, storageErr("load subscriptions", err)
	}
	defer rows.Close()
	for rows.Next() {
		var subscriberID, matchID string
		if err := rows.Scan(&subscriberID, &matchID); err != nil {
			return nil, storageErr("scan subscription", err)
		}
		state.Subscribers[subscriberID] = append(state.Subscribers[subscriberID], matchID)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load subscriptions", err)
	}

	recRows, err := p.pool.Query(ctx, "load_records")
	if err != nil {
		return nil, storageErr("load records", err)
	}
	defer recRows.Close()
	for recRows.Next() {
		var matchID string
		rec, err := scanRecord(recRows, &matchID)
		if err != nil {
			return nil, storageErr("scan record", err)
		}
		state.Matches[matchID] = rec
	}
	if err := recRows.Err(); err != nil {
		return nil, storageErr("load records", err)
	}

	return state, nil
}

func (p *PostgresStore) Save(ctx context.Context, state *State) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin save", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM subscriptions"); err != nil {
		return storageErr("clear subscriptions", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM match_records"); err != nil {
		return storageErr("clear records", err)
	}

	for subscriberID, followed := range state.Subscribers {
		for _, matchID := range followed {
			if _, err := tx.Exec(ctx,
				"INSERT INTO subscriptions (subscriber_id, match_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				subscriberID, matchID); err != nil {
				return storageErr("insert subscription", err)
			}
		}
	}
	for matchID, rec := range state.Matches {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_records (match_id, last_status, home_goals, away_goals, sent_start, sent_halftime, sent_fulltime)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			matchID, string(rec.LastStatus), rec.LastFullTime.Home, rec.LastFullTime.Away,
			rec.WasSent(alert.KindStart), rec.WasSent(alert.KindHalftime), rec.WasSent(alert.KindFulltime)); err != nil {
			return storageErr("insert record", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit save", err)
	}
	return nil
}

func (p *PostgresStore) ToggleTracking(ctx context.Context, subscriberID, matchID string) (bool, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return false, storageErr("begin toggle", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"DELETE FROM subscriptions WHERE subscriber_id = $1 AND match_id = $2",
		subscriberID, matchID)
	if err != nil {
		return false, storageErr("toggle delete", err)
	}

	tracking := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx,
			"INSERT INTO subscriptions (subscriber_id, match_id) VALUES ($1, $2)",
			subscriberID, matchID); err != nil {
			return false, storageErr("toggle insert", err)
		}
		tracking = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storageErr("commit toggle", err)
	}
	return tracking, nil
}

func (p *PostgresStore) TrackedMatchIDs(ctx context.Context) ([]string, error) {
	return p.stringColumn(ctx, "tracked_match_ids")
}

func (p *PostgresStore) TrackedBy(ctx context.Context, subscriberID string) ([]string, error) {
	return p.stringColumn(ctx, "tracked_by", subscriberID)
}

func (p *PostgresStore) SubscribersOf(ctx context.Context, matchID string) ([]string, error) {
	return p.stringColumn(ctx, "subscribers_of", matchID)
}

func (p *PostgresStore) Record(ctx context.Context, matchID string) (alert.MatchRecord, error) {
	rows, err := p.pool.Query(ctx, "record_get", matchID)
	if err != nil {
		return alert.MatchRecord{}, storageErr("get record", err)
	}
	defer rows.Close()

	if !rows.Next() {
		// Never observed — lazily default.
		return alert.MatchRecord{}, rows.Err()
	}
	rec, err := scanRecord(rows, nil)
	if err != nil {
		return alert.MatchRecord{}, storageErr("scan record", err)
	}
	return rec, rows.Err()
}

func (p *PostgresStore) PutRecord(ctx context.Context, matchID string, record alert.MatchRecord) error {
	_, err := p.pool.Exec(ctx, "record_upsert",
		matchID, string(record.LastStatus),
		record.LastFullTime.Home, record.LastFullTime.Away,
		record.WasSent(alert.KindStart), record.WasSent(alert.KindHalftime), record.WasSent(alert.KindFulltime))
	if err != nil {
		return storageErr("upsert record", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func (p *PostgresStore) stringColumn(ctx context.Context, stmt string, args ...any) ([]string, error) {
	rows, err := p.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, storageErr(stmt, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageErr(stmt, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// scanRecord reads a match_records row. When matchID is non-nil the row is
// expected to lead with the match_id column.
func scanRecord(rows pgx.Rows, matchID *string) (alert.MatchRecord, error) {
	var (
		lastStatus                            string
		homeGoals, awayGoals                  *int
		sentStart, sentHalftime, sentFulltime bool
	)
	dest := []any{&lastStatus, &homeGoals, &awayGoals, &sentStart, &sentHalftime, &sentFulltime}
	if matchID != nil {
		dest = append([]any{matchID}, dest...)
	}
	if err := rows.Scan(dest...); err != nil {
		return alert.MatchRecord{}, err
	}

	rec := alert.MatchRecord{
		LastStatus:   footballdata.Status(lastStatus),
		LastFullTime: footballdata.Score{Home: homeGoals, Away: awayGoals},
		Sent:         make(map[alert.Kind]bool),
	}
	if sentStart {
		rec.Sent[alert.KindStart] = true
	}
	if sentHalftime {
		rec.Sent[alert.KindHalftime] = true
	}
	if sentFulltime {
		rec.Sent[alert.KindFulltime] = true
	}
	return rec, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
