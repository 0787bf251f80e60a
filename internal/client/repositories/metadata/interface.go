// Package metadata is the local key/value repository backing the credential
// store. Values are opaque byte slices stored in the SQLite "metadata" table.
package metadata

import (
	"context"
)

// Repository is a durable key/value store.
//
// Get returns (nil, nil) when the key does not exist. Delete of a missing key
// is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
