package repository

import (
	"context"

	"github.com/eslsoft/vocstudy/internal/entity"
)

// Catalog is the loaded, read-only word catalog.
type Catalog struct {
	Categories []entity.Category
	Sets       []entity.VocabSet
}

// CatalogSource loads the vocabulary catalog.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

// MasteryRepository persists the mastery record. Load returns nil when nothing
// usable is stored.
type MasteryRepository interface {
	Load(ctx context.Context) (*entity.MasteryRecord, error)
	Save(ctx context.Context, record *entity.MasteryRecord) error
	Delete(ctx context.Context) error
}

// SnapshotRepository persists the single in-flight session slot. Load returns
// nil when nothing usable is stored.
type SnapshotRepository interface {
	Load(ctx context.Context) (*entity.Snapshot, error)
	Save(ctx context.Context, snapshot *entity.Snapshot) error
	Clear(ctx context.Context) error
}
