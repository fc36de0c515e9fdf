// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/verte-zerg/badgedex/migrations"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Slot keys in the kv table.
const (
	KeyOwned         = "owned_achievements"
	KeyLinkedProfile = "linked_profile"
)

// Store wraps SQLite access for the local key-value slots.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// LoadOwned returns the manually owned achievement ids. A missing slot is an
// empty list.
func (s *Store) LoadOwned(ctx context.Context) ([]string, error) {
	raw, ok, err := s.get(ctx, KeyOwned)
	if err != nil || !ok {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode owned achievements: %w", err)
	}
	return ids, nil
}

// SaveOwned overwrites the owned slot with ids.
func (s *Store) SaveOwned(ctx context.Context, ids []string) error {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode owned achievements: %w", err)
	}
	return s.set(ctx, KeyOwned, string(data))
}

// LinkedProfile returns the remembered username, or "" when none is linked.
func (s *Store) LinkedProfile(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, KeyLinkedProfile)
	return v, err
}

// SetLinkedProfile remembers username for later sessions.
func (s *Store) SetLinkedProfile(ctx context.Context, username string) error {
	if username == "" {
		return s.ClearLinkedProfile(ctx)
	}
	return s.set(ctx, KeyLinkedProfile, username)
}

// ClearLinkedProfile forgets the remembered username.
func (s *Store) ClearLinkedProfile(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, KeyLinkedProfile); err != nil {
		return fmt.Errorf("failed to clear linked profile: %w", err)
	}
	return nil
}

// UpdatedAt reports when key was last written. ok is false if it was never set.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse %s timestamp: %w", key, err)
	}
	return parsed, true, nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
