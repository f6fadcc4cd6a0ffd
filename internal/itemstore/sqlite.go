package itemstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS items (
	key      TEXT PRIMARY KEY,
	label    TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL
)`

// SQLiteStore keeps items in a single SQLite table.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// ListAll returns items in insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Item, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, label FROM items ORDER BY added_at, key`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Key, &it.Label); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

// Remove deletes key; absent keys are a no-op.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup item: %w", err)
	}
	return n > 0, nil
}

// Put inserts items in one transaction, ignoring keys already present.
func (s *SQLiteStore) Put(ctx context.Context, items []Item) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	now := time.Now().UnixMilli()
	for i, it := range items {
		if it.Key == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (key, label, added_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			it.Key, it.Label, now+int64(i))
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
