// Package store provides the key-value blob persistence the ledger
// writes its JSON collections to.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// Store is a minimal key-value string store. Values are whole JSON
// blobs; every mutation is a full read-modify-write of one key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
