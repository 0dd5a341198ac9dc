package core

import "context"

// KVStore is a durable key-value medium holding serialized snapshots.
// Get returns ErrKeyNotFound when the key does not exist; Delete of a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
