package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
)

// NewSQLDriver opens an ent SQL driver for the sqlite3 and postgres storage drivers.
func NewSQLDriver(cfg *config.Config, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	switch driver {
	case config.DriverPostgres:
		return newPostgresDriver(cfg, dsn, logger)
	case config.DriverSQLite:
		return newSQLiteDriver(cfg, dsn, logger)
	case config.DriverPgx:
		return newPgxDriver(cfg, dsn, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newPostgresDriver(cfg *config.Config, dsn string, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	rawDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping postgres db: %w", err)
	}

	return wrapDriver(cfg, entsql.OpenDB(dialect.Postgres, rawDB), logger)
}

func newSQLiteDriver(cfg *config.Config, dsn string, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	if err := ensureParentDir(cfg.Storage.Path); err != nil {
		return nil, nil, err
	}

	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("enable sqlite wal: %w", err)
	}

	return wrapDriver(cfg, entsql.OpenDB(dialect.SQLite, rawDB), logger)
}

// wrapDriver adds statement logging when storage.log_sql is set.
func wrapDriver(cfg *config.Config, drv *entsql.Driver, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	cleanup := func() { _ = drv.Close() }
	if !cfg.Storage.LogSQL {
		return drv, cleanup, nil
	}
	entry := logger.WithField("component", "sql")
	return dialect.Debug(drv, func(args ...any) { entry.Debug(args...) }), cleanup, nil
}
