package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"storm/internal/domain/repositories"
	docsysRepo "storm/internal/domain/repositories/docsystem"
)

// KVStore implements the string key-value store on a single table
type KVStore struct {
	db     repositories.DBTX
	table  string
	logger *slog.Logger
}

var _ docsysRepo.KVStore = (*KVStore)(nil)

// NewKVStore creates a key-value store backed by tables.KVStore
func NewKVStore(db repositories.DBTX, tables *TableNames, logger *slog.Logger) *KVStore {
	return &KVStore{
		db:     db,
		table:  tables.KVStore,
		logger: logger,
	}
}

// EnsureSchema creates the table if it does not exist
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, s.table)

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// DropSchema drops the table and everything in it
func (s *KVStore) DropSchema(ctx context.Context) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table)

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop %s: %w", s.table, err)
	}
	s.logger.Warn("kv table dropped", "table", s.table)
	return nil
}

// Get returns the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)

	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgUndefinedTableError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, s.table)

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	s.logger.Debug("kv value stored", "table", s.table, "key", key, "bytes", len(value))
	return nil
}

// Delete removes key
func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)

	if _, err := s.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
