package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stellarlinkco/mathbench/internal/client"
)

// Store persists completions keyed by fingerprint across runs. Entries are
// never expired by time; a no-cache run bypasses them instead.
type Store interface {
	Lookup(ctx context.Context, fp Fingerprint) (*client.CompletionResult, bool, error)
	Put(ctx context.Context, fp Fingerprint, result *client.CompletionResult) error
	Close() error
}

// SQLiteStore implements Store on a single SQLite file. Concurrent writers
// for the same fingerprint overwrite each other with identical content,
// which is harmless.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache: empty sqlite path")
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cache: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("cache: nil db")
	}

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS completions (
			fingerprint TEXT PRIMARY KEY,
			result_json BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_created_at ON completions(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("cache: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, fp Fingerprint) (*client.CompletionResult, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errors.New("cache: nil store")
	}
	if ctx == nil {
		return nil, false, errors.New("cache: nil context")
	}
	if strings.TrimSpace(fp.String()) == "" {
		return nil, false, errors.New("cache: empty fingerprint")
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT result_json FROM completions WHERE fingerprint = ?
	`, fp.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup: %w", err)
	}

	var out client.CompletionResult
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt row behaves like a miss so the entry gets recomputed.
		return nil, false, nil
	}
	return &out, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, fp Fingerprint, result *client.CompletionResult) error {
	if s == nil || s.db == nil {
		return errors.New("cache: nil store")
	}
	if ctx == nil {
		return errors.New("cache: nil context")
	}
	if strings.TrimSpace(fp.String()) == "" {
		return errors.New("cache: empty fingerprint")
	}
	if result == nil {
		return errors.New("cache: nil result")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO completions (fingerprint, result_json, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			result_json = excluded.result_json,
			created_at = excluded.created_at
	`, fp.String(), raw, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
