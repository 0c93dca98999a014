// package cache implements a minimal in-memory keyed cache used to front
// database lookups (session validation, admin setup check, magic-link codes).
//
// There is no iteration, size query, or automatic expiry. Callers that need
// freshness encode timestamps inside the stored value and check them at read
// time.
package cache

import (
	"errors"
	"sync"
)

var (
	// ErrKeyExists is returned by Set when rewrites are disabled and the key is
	// already present. The stored value is left unchanged.
	ErrKeyExists = errors.New("key already exists")

	// ErrKeyNotFound is an expected control-flow signal, not a failure.
	ErrKeyNotFound = errors.New("key not found")
)

// Options configures cache behavior at construction time.
type Options struct {
	// PreventRewrites makes Set fail on keys that are already present.
	PreventRewrites bool
}

// Cache maps opaque string keys to values of type V. The cache exclusively
// owns its backing map; callers never hold references into it.
//
// Safe for concurrent use by multiple goroutines.
type Cache[V any] struct {
	mu      sync.RWMutex
	data    map[string]V
	options Options
}

// New creates a [Cache] seeded with the entries of prev. A nil prev starts
// empty. The map is copied, never retained.
func New[V any](prev map[string]V, options ...Options) *Cache[V] {
	data := make(map[string]V, len(prev))
	for k, v := range prev {
		data[k] = v
	}

	c := &Cache[V]{data: data}
	if len(options) > 0 {
		c.options = options[0]
	}
	return c
}

// Set stores val under key and returns the stored value.
//
// Under [Options.PreventRewrites] a second Set on an existing key fails with
// [ErrKeyExists] and retains the original value.
func (c *Cache[V]) Set(key string, val V) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.options.PreventRewrites {
		if _, exists := c.data[key]; exists {
			var zero V
			return zero, ErrKeyExists
		}
	}

	c.data[key] = val
	return val, nil
}

// Get returns the value stored under key, or [ErrKeyNotFound] if absent.
func (c *Cache[V]) Get(key string) (V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, exists := c.data[key]
	if !exists {
		var zero V
		return zero, ErrKeyNotFound
	}
	return val, nil
}

// Unset removes key if present. Removing an absent key is a no-op.
func (c *Cache[V]) Unset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}
