package storage

import (
	"context"
	"fmt"

	"txdash/internal/application"
	"txdash/internal/config"
	"txdash/internal/infrastructure/mysql"
	"txdash/internal/infrastructure/redis"
	"txdash/internal/infrastructure/sqlite"
)

// Repository is the address store plus the lifecycle hooks the server needs.
type Repository interface {
	application.AddressStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*sqlite.Repository)(nil)
	_ Repository = (*mysql.Repository)(nil)
	_ Repository = (*redis.Store)(nil)
)

// Open selects the backend named by cfg.StateBackend.
func Open(cfg config.Config) (Repository, error) {
	switch cfg.StateBackend {
	case config.StateBackendSQLite, "":
		repo, err := sqlite.NewRepository(cfg.StateDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite state: %w", err)
		}
		return repo, nil
	case config.StateBackendMySQL:
		repo, err := mysql.NewRepository(cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql state: %w", err)
		}
		return repo, nil
	case config.StateBackendRedis:
		store, err := redis.NewStore(redis.Config{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("open redis state: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
