package deadletter

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists failed dispatches to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a store at path.
// The path should be a file path (e.g., "./dead_letters.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dead_letters (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			event TEXT NOT NULL,
			runner TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			position INTEGER NOT NULL,
			args BLOB,
			error TEXT NOT NULL,
			failed_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dead_letters_event
		ON dead_letters(event)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Enqueue implements Store.
func (s *SQLiteStore) Enqueue(ctx context.Context, failed *FailedDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dead_letters (id, event, runner, epoch, position, args, error, failed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, failed.ID, failed.Event, failed.Runner, int64(failed.Epoch), failed.Position,
		failed.Args, failed.Error, failed.FailedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("enqueue dead letter: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*FailedDispatch, error) {
	return s.query(ctx, `
		SELECT id, event, runner, epoch, position, args, error, failed_at
		FROM dead_letters
		ORDER BY seq
		LIMIT ?
	`, sqlLimit(limit))
}

// ListByEvent implements Store.
func (s *SQLiteStore) ListByEvent(ctx context.Context, event string, limit int) ([]*FailedDispatch, error) {
	return s.query(ctx, `
		SELECT id, event, runner, epoch, position, args, error, failed_at
		FROM dead_letters
		WHERE event = ?
		ORDER BY seq
		LIMIT ?
	`, event, sqlLimit(limit))
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var out []*FailedDispatch
	for rows.Next() {
		var (
			r        FailedDispatch
			epoch    int64
			failedAt string
		)
		if err := rows.Scan(&r.ID, &r.Event, &r.Runner, &epoch, &r.Position, &r.Args, &r.Error, &failedAt); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		r.Epoch = uint64(epoch)
		r.FailedAt, _ = time.Parse(time.RFC3339Nano, failedAt)
		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead letters: %w", err)
	}
	return out, nil
}

// Acknowledge implements Store.
func (s *SQLiteStore) Acknowledge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM dead_letters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge dead letter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acknowledge dead letter: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dead_letters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dead letters: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
