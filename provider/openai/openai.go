// Package openai implements the chat- and responses-variant vendor
// family for slate.
//
// Model generations on the responses allow-list are served by the
// structured responses endpoint; everything else goes through classic
// chat completions. Build selects the variant, and Analyze and
// AnalyzeStream dispatch on it.
//
// Basic usage:
//
//	p, err := openai.NewProvider(
//	    openai.WithAPIKey("sk-..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  types.ModelConfig{Vendor: types.VendorOpenAI, Model: "gpt-5", Reasoning: types.ReasoningMedium},
//	    Prompt: "Review this change.",
//	})
package openai

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/modelconfig"
)

// Provider implements the provider.Provider interface for the OpenAI
// vendor family.
//
// Thread Safety: Provider is safe for concurrent use.
// Multiple goroutines may call methods on the same Provider instance
// simultaneously.
type Provider struct {
	apiKey     string
	apiBase    string
	httpClient slate.HTTPClient
	logger     *slog.Logger
	models     *modelconfig.Config
}

// Option is a functional option for configuring the provider.
type Option func(*Provider)

// NewProvider creates a new provider with the given options.
//
// The API key comes from WithAPIKey or, failing that, the
// OPENAI_API_KEY environment variable.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		apiBase:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: slate.DefaultHTTPTimeout},
		logger:     slog.Default(),
		models:     modelconfig.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if p.apiKey == "" {
		return nil, &slate.SlateError{
			Message: "OpenAI API key is required",
			Vendor:  "openai",
		}
	}

	return p, nil
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = key
	}
}

// WithAPIBase sets a custom API base URL.
//
// This is useful for compatible endpoints or proxies.
// The default is "https://api.openai.com/v1".
func WithAPIBase(base string) Option {
	return func(p *Provider) {
		p.apiBase = base
	}
}

// WithHTTPClient sets a custom HTTP client.
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

// Name returns the provider name "openai".
func (p *Provider) Name() string {
	return "openai"
}
