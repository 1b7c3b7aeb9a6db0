// Package history remembers, per show, the last episode already recorded.
package history

import (
	"context"
	"fmt"
	"time"

	"radiocut/pkg/config"
)

// Store persists the last processed airing of each show.
type Store interface {
	// Last returns the last processed airing; ok is false when the show has none.
	Last(ctx context.Context, showID string) (t time.Time, ok bool, err error)

	// Set records t as the last processed airing of showID.
	Set(ctx context.Context, showID string, t time.Time) error

	Close(ctx context.Context) error
}

// Open returns the store selected by cfg.Backend. path is the history file used by the file backend.
func Open(ctx context.Context, cfg config.History, path string) (Store, error) {
	switch cfg.Backend {
	case "", config.HistoryBackendFile:
		return NewFileStore(path), nil

	case config.HistoryBackendMongo:
		store := NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err := store.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		return store, nil

	case config.HistoryBackendPostgres:
		store := NewPostgresStore(postgresConfig(cfg))
		if err := store.Connect(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

func postgresConfig(cfg config.History) PostgresConfig {
	return PostgresConfig{
		DSN:          cfg.PostgresDSN,
		MaxOpenConns: cfg.PostgresMaxOpenConns,
		MaxIdleConns: cfg.PostgresMaxIdleConns,
		ConnMaxIdle:  time.Duration(cfg.PostgresConnMaxIdleSeconds) * time.Second,
		ConnMaxLife:  time.Duration(cfg.PostgresConnMaxLifetimeSeconds) * time.Second,
	}
}
