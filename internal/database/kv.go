package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// kvPair is the row shape of the kv table.
type kvPair struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// KV is a namespaced key-value store backed by a single SQLite table.
// Namespaces are plain key prefixes ("groups.", "users."); callers build
// fully-qualified keys and scope iteration with a prefix.
type KV struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewKV creates a key-value store over a connected database.
func NewKV(db *sqlx.DB, logger *slog.Logger) *KV {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &KV{
		db:     db,
		logger: logger.With("component", "kv_store"),
	}
}

// Get retrieves the value for a key. The second return value reports
// whether the key exists; a missing key is not an error.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key cannot be empty")
	}
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}

	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error reading key", "key", key, "error", err)
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}

	return value, true, nil
}

// Put inserts or replaces the value for a key.
func (s *KV) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	query := `
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error writing key", "key", key, "error", err)
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Key written", "key", key)
	return nil
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *KV) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting key", "key", key, "error", err)
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Key deleted", "key", key)
	return nil
}

// Iterate calls fn for every key under the given prefix, in key order.
// The snapshot is taken up front so fn may mutate the store (including
// deleting the key it was handed) without disturbing the walk.
func (s *KV) Iterate(ctx context.Context, prefix string, fn func(key, value string) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var pairs []kvPair
	query := `SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`
	err := s.db.SelectContext(ctx, &pairs, query, prefix, prefixUpperBound(prefix))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error iterating prefix", "prefix", prefix, "error", err)
		return fmt.Errorf("failed to iterate prefix %q: %w", prefix, err)
	}

	for _, p := range pairs {
		if err := fn(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
func (s *KV) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// prefixUpperBound returns the smallest string greater than every string
// with the given prefix. An empty prefix scans the whole table.
func prefixUpperBound(prefix string) string {
	if prefix == "" {
		return "\xff\xff\xff\xff"
	}
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	// Prefix is all 0xff bytes; nothing sorts above it in practice.
	return prefix + "\xff"
}
