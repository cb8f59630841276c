// Package storage persists small string values by key. It backs the
// pipeline's "last searched location" with SQLite, Postgres or Redis.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/database"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the store selected by cfg.Storage.Driver. The redis driver
// reuses rdb, which stays owned by the caller.
func Open(cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite, "":
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db), nil
	case config.StoragePostgres:
		db, err := database.Connect(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db), nil
	case config.StorageRedis:
		if rdb == nil {
			return nil, errors.New("storage: redis driver requires a redis client")
		}
		return NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
}
