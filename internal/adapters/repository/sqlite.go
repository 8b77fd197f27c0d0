package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/syaroho/internal/domain/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is a RatingRepository backed by a SQLite database.
// It uses WAL mode and a single connection.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// OpenSQLite creates or opens the database at path and applies the schema.
// It is safe to call on an existing database.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := applyOptions(opts)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, loc: o.loc}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadRatings implements RatingRepository.
func (s *SQLiteStore) LoadRatings(ctx context.Context, day time.Time) (model.RatingStore, error) {
	key := dayKey(day, s.loc)
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM rating_snapshots WHERE day = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", key, err)
	}
	store := model.RatingStore{}
	if err := json.Unmarshal([]byte(payload), &store); err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %w", ErrInvalidArchive, key, err)
	}
	return store, nil
}

// SaveRatings implements RatingRepository.
func (s *SQLiteStore) SaveRatings(ctx context.Context, day time.Time, store model.RatingStore) error {
	if store == nil {
		store = model.RatingStore{}
	}
	payload, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rating_snapshots (day, payload, players, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			payload = excluded.payload,
			players = excluded.players,
			created_at = excluded.created_at`,
		dayKey(day, s.loc), string(payload), len(store), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestRatingsDay implements RatingRepository.
func (s *SQLiteStore) LatestRatingsDay(ctx context.Context, before time.Time) (time.Time, error) {
	var key sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(day) FROM rating_snapshots WHERE day < ?`, dayKey(before, s.loc)).Scan(&key)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest snapshot: %w", err)
	}
	if !key.Valid {
		return time.Time{}, ErrNotFound
	}
	return parseDayKey(key.String, s.loc)
}

// SaveResults implements RatingRepository. Results of the day are replaced.
func (s *SQLiteStore) SaveResults(ctx context.Context, day time.Time, results []model.DailyResult) error {
	key := dayKey(day, s.loc)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_results WHERE day = ?`, key); err != nil {
		return fmt.Errorf("clear results %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO result_days (day) VALUES (?)`, key); err != nil {
		return fmt.Errorf("mark results %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_results (
			day, position, screen_name, rank, rank_normal, perf, time, score,
			status_id, inner_rate, new_inner_rate, rating, change
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx,
			key, i, r.Handle, r.Rank, r.RankNormal, r.Perf, r.Time, r.Score,
			r.ID, r.InnerRate, r.NewInnerRate, r.Rating, r.Change,
		); err != nil {
			return fmt.Errorf("insert result %s/%s: %w", key, r.Handle, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results %s: %w", key, err)
	}
	return nil
}

// LoadResults implements RatingRepository.
func (s *SQLiteStore) LoadResults(ctx context.Context, day time.Time) ([]model.DailyResult, error) {
	key := dayKey(day, s.loc)
	var marked int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM result_days WHERE day = ?`, key).Scan(&marked)
	if err != nil {
		return nil, fmt.Errorf("query result day %s: %w", key, err)
	}
	if marked == 0 {
		return nil, fmt.Errorf("%w: results %s", ErrNotFound, key)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT screen_name, rank, rank_normal, perf, time, score,
		       status_id, inner_rate, new_inner_rate, rating, change
		FROM daily_results WHERE day = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("query results %s: %w", key, err)
	}
	defer rows.Close()

	results := []model.DailyResult{}
	for rows.Next() {
		var r model.DailyResult
		if err := rows.Scan(&r.Handle, &r.Rank, &r.RankNormal, &r.Perf, &r.Time, &r.Score,
			&r.ID, &r.InnerRate, &r.NewInnerRate, &r.Rating, &r.Change); err != nil {
			return nil, fmt.Errorf("scan result %s: %w", key, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results %s: %w", key, err)
	}
	return results, nil
}
