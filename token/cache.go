package token

import (
	"context"
	"strconv"
	"time"

	"github.com/slate-ai/slate/cache"
)

// DefaultCountTTL bounds how long cached counts live. Counting is
// deterministic per model revision, so the TTL only guards against
// silent tokenizer changes behind a model alias.
const DefaultCountTTL = 24 * time.Hour

// CachedEndpoint wraps a counting endpoint with a cache.
//
// Counting endpoints are deterministic and metered, so identical
// model/text pairs are served from the cache instead of a second
// network round trip. Cache failures are ignored: a miss or a broken
// backend degrades to an ordinary endpoint call.
//
// Thread Safety: safe for concurrent use when the underlying endpoint
// and cache are.
type CachedEndpoint struct {
	endpoint CountEndpoint
	cache    cache.Cache
	ttl      time.Duration
}

// NewCachedEndpoint wraps endpoint with c. A ttl of 0 uses
// DefaultCountTTL.
func NewCachedEndpoint(endpoint CountEndpoint, c cache.Cache, ttl time.Duration) *CachedEndpoint {
	if ttl == 0 {
		ttl = DefaultCountTTL
	}
	return &CachedEndpoint{
		endpoint: endpoint,
		cache:    c,
		ttl:      ttl,
	}
}

// CountTokens returns the cached count for model and text, calling the
// wrapped endpoint on a miss and storing the result.
func (e *CachedEndpoint) CountTokens(ctx context.Context, model, text string) (int, error) {
	key := cache.Key(model, text)

	if raw, err := e.cache.Get(ctx, key); err == nil {
		if n, err := strconv.Atoi(string(raw)); err == nil {
			return n, nil
		}
		// Corrupt entry: drop it and count again.
		_ = e.cache.Delete(ctx, key)
	}

	n, err := e.endpoint.CountTokens(ctx, model, text)
	if err != nil {
		return 0, err
	}

	_ = e.cache.Set(ctx, key, []byte(strconv.Itoa(n)), e.ttl)
	return n, nil
}
