// Package memcache provides the built-in in-memory cache component. It
// satisfies the "cache" capability, so consumers that declared a cache
// dependency before any cache existed unblock the moment it becomes ready.
package memcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// MemCache is a bounded, process-local key/value store.
type MemCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]string
}

// Set stores a value. The oldest insertion is not tracked; when the cache
// is full the write is refused.
func (c *MemCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		return fmt.Errorf("memcache: capacity %d exceeded", c.capacity)
	}
	c.entries[key] = value
	return nil
}

// Get returns the value stored for key.
func (c *MemCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// NewMemCache is the constructor handler for the 'memcache' component.
func NewMemCache(ctx context.Context, args map[string]cty.Value) (any, error) {
	capacity := 1024
	if v, ok := args["capacity"]; ok {
		if err := gocty.FromCtyValue(v, &capacity); err != nil {
			return nil, fmt.Errorf("memcache: invalid 'capacity' argument: %w", err)
		}
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("memcache: capacity must be positive, got %d", capacity)
	}
	return &MemCache{capacity: capacity, entries: make(map[string]string)}, nil
}

// WarmMemCache is the setup hook handler for the 'memcache' component.
func WarmMemCache(ctx context.Context, owner registry.Owner) (*future.Future, error) {
	cache, ok := owner.Value().(*MemCache)
	if !ok {
		return nil, fmt.Errorf("memcache: unexpected component value %T", owner.Value())
	}
	ctxlog.FromContext(ctx).Debug("Memcache warmed.", "capacity", cache.capacity)
	return nil, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterConstructor("NewMemCache", NewMemCache)
	r.RegisterHook("WarmMemCache", WarmMemCache)
}
