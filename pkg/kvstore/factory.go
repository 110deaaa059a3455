package kvstore

import (
	"fmt"
	"gold-pulse/config"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/postgres"
)

// New opens the backend selected by cfg.Storage.Driver and namespaces it
// with cfg.Storage.KeyPrefix.
func New(cfg *config.Config, log *logger.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Storage.Driver {
	case "memory":
		store = NewMemoryStore()
	case "redis":
		store, err = NewRedisStore(
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
	case "postgres":
		var db *postgres.DB
		db, err = postgres.NewDB(cfg.DB, log)
		if err == nil {
			store = NewGormStore(db.DB)
		}
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Key-value store ready",
		logger.StringField("driver", cfg.Storage.Driver),
		logger.StringField("key_prefix", cfg.Storage.KeyPrefix),
	)
	return WithPrefix(store, cfg.Storage.KeyPrefix), nil
}
