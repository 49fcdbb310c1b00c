package repository

import (
	"context"
	"fmt"
	"log/slog"

	"storm/internal/config"
	docsysRepo "storm/internal/domain/repositories/docsystem"
	"storm/internal/repository/kv"
	"storm/internal/repository/postgres"
)

// OpenKVStore opens the key-value backend selected by cfg.StorageBackend.
// The returned close function releases backend resources and is never nil.
func OpenKVStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docsysRepo.KVStore, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case config.StorageFile, "":
		store, err := kv.NewFileStore(cfg.StateDir, cfg.BackupCount, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.StoragePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}

		store := postgres.NewKVStore(pool, postgres.NewTableNames(cfg.TablePrefix), logger)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}

		logger.Info("connected to database", "table_prefix", cfg.TablePrefix)
		return store, pool.Close, nil

	case config.StorageMemory:
		logger.Warn("using in-memory storage; the file system is lost on restart")
		return kv.NewMemoryStore(), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
