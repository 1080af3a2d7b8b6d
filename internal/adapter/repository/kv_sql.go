package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// KVTable is the table backing the SQL key-value store.
const KVTable = "kv_entries"

// SQLKeyValueStore persists values in a single key/value table through an ent SQL driver.
type SQLKeyValueStore struct {
	drv   dialect.Driver
	clock func() time.Time
}

// NewSQLKeyValueStore wraps an opened ent driver. Call EnsureSchema before first use
// on a fresh database.
func NewSQLKeyValueStore(drv dialect.Driver) *SQLKeyValueStore {
	return &SQLKeyValueStore{drv: drv, clock: time.Now}
}

var (
	_ repository.KeyValueStore = (*SQLKeyValueStore)(nil)
	_ repository.KeyLister     = (*SQLKeyValueStore)(nil)
)

// EnsureSchema creates the key/value table when missing.
func (s *SQLKeyValueStore) EnsureSchema(ctx context.Context) error {
	query, args := entsql.Dialect(s.drv.Dialect()).
		CreateTable(KVTable).
		IfNotExists().
		Columns(
			entsql.Column("key").Type("varchar(255)").Attr("NOT NULL"),
			entsql.Column("value").Type("text").Attr("NOT NULL"),
			entsql.Column("updated_at").Type("timestamp").Attr("NOT NULL"),
		).
		PrimaryKey("key").
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("create %s table: %w", KVTable, err)
	}
	return nil
}

func (s *SQLKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Select("value").
		From(entsql.Table(KVTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return "", fmt.Errorf("query key %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("read key %q: %w", key, err)
		}
		return "", entity.ErrKeyNotFound
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", fmt.Errorf("scan key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLKeyValueStore) Set(ctx context.Context, key, value string) error {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Insert(KVTable).
		Columns("key", "value", "updated_at").
		Values(key, value, s.clock().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert key %q: %w", key, err)
	}
	return nil
}

func (s *SQLKeyValueStore) Remove(ctx context.Context, key string) error {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Delete(KVTable).
		Where(entsql.EQ("key", key)).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

func (s *SQLKeyValueStore) Keys(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Select("key").
		From(entsql.Table(KVTable)).
		OrderBy("key").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
