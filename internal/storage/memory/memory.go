// Package memory provides a process-local KV backend used by tests and ephemeral runs.
package memory

import (
	"context"

	cache "github.com/patrickmn/go-cache"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
)

// KV keeps values in an expiry-free go-cache instance.
type KV struct {
	c *cache.Cache
}

// New constructs an empty in-memory store.
func New() *KV {
	return &KV{c: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the stored value.
func (m *KV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, errs.ErrNotFound
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), nil
}

// Set stores a copy of value.
func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

// Remove deletes key.
func (m *KV) Remove(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Close is a no-op.
func (m *KV) Close() error { return nil }
