// Package history persists the user's watch events between runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkarlsson/ytwatch/pkg/models"
)

// Store records and queries watch events.
type Store interface {
	// Add stores a batch of watch events.
	Add(ctx context.Context, events []models.WatchEvent) error
	// VideoIDs returns the distinct watched video IDs in first-recorded order.
	VideoIDs(ctx context.Context) ([]string, error)
	// Counts returns the number of watch events per video ID.
	Counts(ctx context.Context) (map[string]int64, error)
	// Total returns the total number of watch events.
	Total(ctx context.Context) (int64, error)
	// Close releases resources.
	Close() error
}

// SQLiteStore implements Store with a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS watch_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL,
	watched_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_watch_video ON watch_events(video_id);
`

// New creates a SQLiteStore and runs auto-migration.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Add stores a batch of watch events in one transaction.
func (s *SQLiteStore) Add(ctx context.Context, events []models.WatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO watch_events (video_id, watched_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		var watchedAt any
		if !ev.WatchedAt.IsZero() {
			watchedAt = ev.WatchedAt.UTC()
		}
		if _, err := stmt.ExecContext(ctx, ev.VideoID, watchedAt); err != nil {
			return fmt.Errorf("record watch event %s: %w", ev.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit watch events: %w", err)
	}
	return nil
}

// VideoIDs returns the distinct watched video IDs in first-recorded order.
func (s *SQLiteStore) VideoIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id FROM watch_events GROUP BY video_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query video ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan video id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Counts returns the number of watch events per video ID.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, COUNT(*) FROM watch_events GROUP BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Total returns the total number of watch events.
func (s *SQLiteStore) Total(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM watch_events`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total watch events: %w", err)
	}
	return total, nil
}

// FirstWatched returns the earliest recorded watch timestamp, or the
// zero time when no event carries one.
func (s *SQLiteStore) FirstWatched(ctx context.Context) (time.Time, error) {
	var first sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(watched_at) FROM watch_events WHERE watched_at IS NOT NULL`).Scan(&first)
	if err != nil {
		return time.Time{}, fmt.Errorf("first watch event: %w", err)
	}
	if !first.Valid {
		return time.Time{}, nil
	}
	return first.Time, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
