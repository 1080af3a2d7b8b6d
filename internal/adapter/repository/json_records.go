package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// loadJSON reads key and decodes it into dst. It reports false, without error, when
// the key is absent or holds a value that does not decode.
func loadJSON(ctx context.Context, store repository.KeyValueStore, logger logrus.FieldLogger, key string, dst any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, entity.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.WithError(err).WithField("key", key).Warn("discarding corrupt stored record")
		return false, nil
	}
	return true, nil
}

func saveJSON(ctx context.Context, store repository.KeyValueStore, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// MasteryRepository stores the mastery record as JSON under repository.MasteryKey.
type MasteryRepository struct {
	store  repository.KeyValueStore
	logger logrus.FieldLogger
}

func NewMasteryRepository(store repository.KeyValueStore, logger logrus.FieldLogger) repository.MasteryRepository {
	return &MasteryRepository{store: store, logger: logger}
}

func (r *MasteryRepository) Load(ctx context.Context) (*entity.MasteryRecord, error) {
	var record entity.MasteryRecord
	ok, err := loadJSON(ctx, r.store, r.logger, repository.MasteryKey, &record)
	if err != nil || !ok {
		return nil, err
	}
	record.Normalize()
	return &record, nil
}

func (r *MasteryRepository) Save(ctx context.Context, record *entity.MasteryRecord) error {
	if record == nil {
		return r.Delete(ctx)
	}
	return saveJSON(ctx, r.store, repository.MasteryKey, record)
}

func (r *MasteryRepository) Delete(ctx context.Context) error {
	return r.store.Remove(ctx, repository.MasteryKey)
}

// SnapshotRepository stores the in-flight session under repository.SnapshotKey.
type SnapshotRepository struct {
	store  repository.KeyValueStore
	logger logrus.FieldLogger
}

func NewSnapshotRepository(store repository.KeyValueStore, logger logrus.FieldLogger) repository.SnapshotRepository {
	return &SnapshotRepository{store: store, logger: logger}
}

func (r *SnapshotRepository) Load(ctx context.Context) (*entity.Snapshot, error) {
	var snap entity.Snapshot
	ok, err := loadJSON(ctx, r.store, r.logger, repository.SnapshotKey, &snap)
	if err != nil || !ok {
		return nil, err
	}
	if snap.Version != entity.SnapshotVersion {
		r.logger.WithField("version", snap.Version).Warn("discarding snapshot with unsupported version")
		return nil, nil
	}
	return &snap, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot *entity.Snapshot) error {
	if snapshot == nil {
		return r.Clear(ctx)
	}
	return saveJSON(ctx, r.store, repository.SnapshotKey, snapshot)
}

func (r *SnapshotRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, repository.SnapshotKey)
}
