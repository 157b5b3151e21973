// Package anthropic implements the message-style vendor family for slate.
//
// This package provides a complete implementation of the provider.Provider
// interface for Anthropic's Messages API, supporting request building with
// thinking and effort controls, blocking analysis, streaming, and the
// count_tokens endpoint.
//
// Basic usage:
//
//	p, err := anthropic.NewProvider(
//	    anthropic.WithAPIKey("sk-ant-..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  types.ModelConfig{Vendor: types.VendorAnthropic, Model: "claude-opus-4-6"},
//	    Prompt: "Review this change.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := p.Analyze(ctx, prep)
package anthropic

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/modelconfig"
)

// Provider implements the provider.Provider interface for the
// message-style vendor family.
//
// Thread Safety: Provider is safe for concurrent use.
// Multiple goroutines may call methods on the same Provider instance
// simultaneously.
type Provider struct {
	apiKey     string
	apiBase    string
	apiVersion string
	httpClient slate.HTTPClient
	logger     *slog.Logger
	models     *modelconfig.Config
}

// Option is a functional option for configuring the provider.
type Option func(*Provider)

// NewProvider creates a new provider with the given options.
//
// The provider requires an API key to be set via WithAPIKey option.
// Other options are optional and have sensible defaults.
//
// Example:
//
//	p, err := anthropic.NewProvider(
//	    anthropic.WithAPIKey("sk-ant-..."),
//	    anthropic.WithAPIBase("https://api.anthropic.com"),
//	)
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		apiBase:    "https://api.anthropic.com",
		apiVersion: "2023-06-01",
		httpClient: &http.Client{Timeout: slate.DefaultHTTPTimeout},
		logger:     slog.Default(),
		models:     modelconfig.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if p.apiKey == "" {
		return nil, &slate.SlateError{
			Message: "Anthropic API key is required",
			Vendor:  "anthropic",
		}
	}

	return p, nil
}

// WithAPIKey sets the API key.
//
// This option is required. Without it, NewProvider will return an error.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = key
	}
}

// WithAPIBase sets a custom API base URL.
//
// This is useful for compatible endpoints or proxies.
// The default is "https://api.anthropic.com".
func WithAPIBase(base string) Option {
	return func(p *Provider) {
		p.apiBase = base
	}
}

// WithAPIVersion sets the anthropic-version header value.
//
// The default is "2023-06-01".
func WithAPIVersion(version string) Option {
	return func(p *Provider) {
		p.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
//
// This is useful for configuring custom timeouts, transport settings,
// or injecting mock clients for testing.
func WithHTTPClient(client slate.HTTPClient) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithLogger sets the structured logger used for dropped-capability
// notices.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithModelConfig sets the capability allow-list table consulted
// during Build. The default is modelconfig.Default().
func WithModelConfig(cfg *modelconfig.Config) Option {
	return func(p *Provider) {
		p.models = cfg
	}
}

// Name returns the provider name "anthropic".
//
// This is used for provider identification in the registry and error
// messages.
func (p *Provider) Name() string {
	return "anthropic"
}
