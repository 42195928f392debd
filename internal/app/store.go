package app

import (
	"context"
	"fmt"

	"ecobot/internal/config"
	"ecobot/internal/repository"
	"ecobot/internal/repository/kv"
	"ecobot/internal/repository/redis"
	"ecobot/internal/repository/sqlite"
)

// OpenStore opens the key-value provider selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, error) {
	var (
		store repository.KeyValueStore
		err   error
	)
	switch cfg.StoreDriver {
	case config.StoreSQLite, "":
		store, err = sqlite.New(cfg.DBPath)
	case config.StoreFile:
		store, err = kv.NewFile(cfg.DataDirectory)
	case config.StoreMemory:
		store = kv.NewMemory()
	case config.StoreRedis:
		store, err = redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "ecobot:",
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
