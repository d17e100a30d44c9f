package core

import (
	"context"
	"fmt"
	"os"

	"annexcore/internal/blob"
	"annexcore/internal/config"
	"annexcore/internal/infra/persistence/memory"
	"annexcore/internal/infra/persistence/postgres"
	"annexcore/internal/infra/persistence/sqlite"
)

// OpenPersistentStore selects a backend from the storage configuration.
// An empty driver selects sqlite.
func OpenPersistentStore(ctx context.Context, cfg config.StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.StorageSQLite
	}
	switch driver {
	case config.StorageMemory:
		return memory.NewStore(engine), nil
	case config.StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case config.StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenService builds the process-wide service from configuration: entity
// store, attachment store and a slog logger writing to stderr. Options are
// applied after those defaults and may replace them.
func OpenService(ctx context.Context, cfg config.Config, opts ...ServiceOption) (*Service, error) {
	store, err := OpenPersistentStore(ctx, cfg.Storage, NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	logger, err := NewSlogLogger(os.Stderr, cfg.Log)
	if err != nil {
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	base := []ServiceOption{WithLogger(logger), WithBlobStore(blobs)}
	return NewService(store, append(base, opts...)...), nil
}
