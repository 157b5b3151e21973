package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache implements an in-memory cache with automatic expiration
// and size-based eviction.
//
// Thread Safety: safe for concurrent use.
type MemoryCache struct {
	data    map[string]*entry
	maxSize int64
	size    int64
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
}

type entry struct {
	value      []byte
	expiration time.Time
	size       int64
}

// NewMemoryCache creates a new in-memory cache.
//
// maxSize is the maximum cache size in bytes; 0 means unlimited. Count
// entries are a few bytes each, so even a small bound holds many
// models worth of lookups.
//
// A cleanup goroutine removes expired entries every minute; call
// Close to stop it.
//
// Example:
//
//	counts := cache.NewMemoryCache(1 << 20)
//	defer counts.Close()
func NewMemoryCache(maxSize int64) *MemoryCache {
	c := &MemoryCache{
		data:    make(map[string]*entry),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanup()

	return c
}

// Get retrieves a value from the cache.
//
// Returns an error if the key is not found or has expired.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.data[key]
	if !exists {
		return nil, fmt.Errorf("key not found")
	}

	if !e.expiration.IsZero() && time.Now().After(e.expiration) {
		return nil, fmt.Errorf("key expired")
	}

	return e.value, nil
}

// Set stores a value in the cache with TTL.
//
// If maxSize is set and adding the value would exceed the limit,
// entries are evicted in FIFO order until there is enough space.
//
// A TTL of 0 means the entry never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(value))

	if old, exists := c.data[key]; exists {
		c.size -= old.size
	}

	if c.maxSize > 0 && c.size+size > c.maxSize {
		c.evict(size)
	}

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	c.data[key] = &entry{
		value:      value,
		expiration: expiration,
		size:       size,
	}
	c.size += size

	return nil
}

// Delete removes a value from the cache.
//
// Does nothing if the key doesn't exist.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.data[key]; exists {
		c.size -= e.size
		delete(c.data, key)
	}

	return nil
}

// Clear removes all values from the cache.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*entry)
	c.size = 0

	return nil
}

// Close stops the cleanup goroutine.
//
// It is safe to call Close multiple times.
func (c *MemoryCache) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}

	c.wg.Wait()
	return nil
}

func (c *MemoryCache) cleanup() {
	defer c.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.data {
				if !e.expiration.IsZero() && now.After(e.expiration) {
					c.size -= e.size
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// evict evicts entries in FIFO order to make room for a new entry.
//
// Must be called with the lock held. Map iteration order is randomized
// in Go, which is acceptable for count entries of near-identical size.
func (c *MemoryCache) evict(needed int64) {
	for key, e := range c.data {
		c.size -= e.size
		delete(c.data, key)

		if c.size+needed <= c.maxSize {
			break
		}
	}
}
