package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	kvrepo "github.com/eslsoft/vocstudy/internal/adapter/repository"
	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// NewKeyValueStore opens the configured storage backend. SQL backends get their
// table created on first use.
func NewKeyValueStore(cfg *config.Config, logger logrus.FieldLogger) (repository.KeyValueStore, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, progress is lost on exit")
		return kvrepo.NewMemoryKeyValueStore(), func() {}, nil
	case config.DriverRedis:
		client, err := NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return kvrepo.NewRedisKeyValueStore(client, cfg.Storage.KeyPrefix), func() { _ = client.Close() }, nil
	default:
		drv, cleanup, err := NewSQLDriver(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store := kvrepo.NewSQLKeyValueStore(drv)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		return store, cleanup, nil
	}
}

// NewRedisClient connects to storage.redis_url.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL, err := cfg.DatabaseURL()
	if err != nil {
		return nil, err
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func ensureParentDir(path string) error {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}
