package repository

import "context"

// Keys under which the study core persists its records.
const (
	MasteryKey  = "study_stats"
	SnapshotKey = "study_session"
)

// KeyValueStore is the durable string store backing progress and snapshots.
// Get returns entity.ErrKeyNotFound when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// KeyLister is implemented by stores that can enumerate their keys.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}
