// Package gemini implements the generate-style vendor family for slate.
//
// This package provides a complete implementation of the provider.Provider
// interface for the Gemini generateContent API, supporting request building
// with thinking budgets and levels, blocking analysis, streaming, and the
// countTokens endpoint.
//
// Basic usage:
//
//	p, err := gemini.NewProvider(
//	    gemini.WithAPIKey("AIza..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  types.ModelConfig{Vendor: types.VendorGemini, Model: "gemini-2.5-pro", Reasoning: types.ReasoningDynamic},
//	    Prompt: "Review this change.",
//	})
package gemini

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/modelconfig"
)

// Provider implements the provider.Provider interface for the
// generate-style vendor family.
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
// GEMINI_API_KEY environment variable.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		apiBase:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{Timeout: slate.DefaultHTTPTimeout},
		logger:     slog.Default(),
		models:     modelconfig.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if p.apiKey == "" {
		return nil, &slate.SlateError{
			Message: "Gemini API key is required",
			Vendor:  "gemini",
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
// The default is "https://generativelanguage.googleapis.com/v1beta".
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

// Name returns the provider name "gemini".
func (p *Provider) Name() string {
	return "gemini"
}
