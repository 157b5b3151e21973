package slate

import (
	"net/http"
	"time"
)

// HTTPClient defines the interface for HTTP clients.
// This allows injection of custom clients or mocks for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPTimeout is the request timeout used when no custom HTTP
// client is supplied. Timeouts surface to callers as ordinary errors,
// not a special case.
const DefaultHTTPTimeout = 120 * time.Second

// DefaultHTTPClient returns the HTTP client vendors fall back to when
// none is injected.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}
