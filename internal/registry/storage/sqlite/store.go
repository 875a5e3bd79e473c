// Package sqlite implements registry persistence over a single SQLite file.
//
// One file backs contributors, papers, workflows and the notification log so
// every composite write shares the same transaction boundary. The events
// table's AUTOINCREMENT sequence doubles as the log's commit order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/smartpublish/registry/internal/platform/storage/sqlitemigrate"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements registry persistence over SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a registry SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// appendEvent inserts a log entry and returns it with its assigned sequence.
func appendEvent(ctx context.Context, tx *sql.Tx, evt event.Event) (event.Event, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (occurred_at, event_type, entity_id, payload_json) VALUES (?, ?, ?, ?)`,
		toMillis(evt.Timestamp), string(evt.Type), evt.EntityID, evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event %s: %w", evt.Type, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return event.Event{}, fmt.Errorf("event sequence: %w", err)
	}
	evt.Seq = uint64(seq)
	return evt, nil
}
