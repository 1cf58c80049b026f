// Package storage defines the key-value adapter persisted state is written to.
package storage

import "context"

// KV is an opaque string-keyed store. Values are whole JSON documents and
// each Set fully overwrites the previous value. Get returns errs.ErrNotFound
// for absent keys.
type KV interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
