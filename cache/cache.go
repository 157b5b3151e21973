// Package cache provides caching for vendor token counts.
//
// Counting endpoints are deterministic: the same model and text always
// produce the same count, so results can be cached aggressively. The
// token package wraps its counting endpoints with a Cache to avoid
// re-billing network round trips for text it has already counted.
//
// Thread Safety: implementations must be safe for concurrent use.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

// Cache defines the caching interface.
//
// Users can implement this interface with their own backend
// (Redis, Memcached, DynamoDB, etc.).
type Cache interface {
	// Get retrieves a value from the cache.
	//
	// Returns an error if the key is not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with TTL.
	//
	// A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error

	// Close closes the cache and releases resources.
	Close() error
}

// Key generates a deterministic cache key for a token count lookup.
//
// Identical model and text pairs produce identical keys. The text is
// hashed rather than embedded, so keys stay small regardless of
// payload size.
func Key(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("slate:v1:%x", h.Sum(nil))
}
