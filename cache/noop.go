package cache

import (
	"context"
	"fmt"
	"time"
)

// NoopCache is a cache implementation that does nothing.
//
// Useful for disabling count caching without changing caller code.
// Get always reports a miss; all other operations succeed silently.
//
// Thread Safety: safe for concurrent use.
type NoopCache struct{}

// NewNoopCache creates a new no-op cache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always returns "key not found".
func (c *NoopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("key not found")
}

// Set does nothing and returns nil.
func (c *NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing and returns nil.
func (c *NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing and returns nil.
func (c *NoopCache) Clear(ctx context.Context) error {
	return nil
}

// Close does nothing and returns nil.
func (c *NoopCache) Close() error {
	return nil
}
