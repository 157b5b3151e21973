package provider

import (
	"net/http"
	"sync"
	"time"

	"github.com/slate-ai/slate"
)

// ClientCache caches HTTP clients per distinct endpoint configuration.
//
// Vendor client handles are created lazily on first use and reused for
// every subsequent request against the same base URL, so connection
// pools and credentials are shared instead of rebuilt per request.
// Get-or-create is guarded by a mutex so concurrent first use creates
// exactly one client per endpoint.
//
// Thread Safety: ClientCache is safe for concurrent use.
//
// Example:
//
//	cache := provider.NewClientCache(60 * time.Second)
//	client := cache.Get("https://api.anthropic.com")
type ClientCache struct {
	timeout time.Duration
	clients map[string]slate.HTTPClient
	mu      sync.Mutex
}

// NewClientCache creates a client cache whose lazily created clients
// use the given request timeout. A zero timeout falls back to
// slate.DefaultHTTPTimeout.
func NewClientCache(timeout time.Duration) *ClientCache {
	if timeout <= 0 {
		timeout = slate.DefaultHTTPTimeout
	}
	return &ClientCache{
		timeout: timeout,
		clients: make(map[string]slate.HTTPClient),
	}
}

// Get returns the cached client for baseURL, creating it on first use.
func (c *ClientCache) Get(baseURL string) slate.HTTPClient {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[baseURL]; ok {
		return client
	}

	client := &http.Client{Timeout: c.timeout}
	c.clients[baseURL] = client
	return client
}

// Put installs a client for baseURL, replacing any cached one.
// Useful for injecting fake transports in tests.
func (c *ClientCache) Put(baseURL string, client slate.HTTPClient) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients[baseURL] = client
}

// Len returns the number of cached endpoint clients.
func (c *ClientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.clients)
}
