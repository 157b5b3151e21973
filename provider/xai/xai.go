// Package xai implements the xAI vendor family for slate.
//
// The API is chat-completions compatible, with a reasoning_effort
// request field and a reasoning_content response field on reasoning
// models, so the shared chat wire shape covers it.
//
// Basic usage:
//
//	p, err := xai.NewProvider(
//	    xai.WithAPIKey("xai-..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  types.ModelConfig{Vendor: types.VendorXAI, Model: "grok-4", Reasoning: types.ReasoningHigh},
//	    Prompt: "Review this change.",
//	})
package xai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/internal/chatwire"
	"github.com/slate-ai/slate/types"
)

// Provider implements the provider.Provider interface for xAI.
//
// Thread Safety: Provider is safe for concurrent use.
type Provider struct {
	apiKey     string
	apiBase    string
	httpClient slate.HTTPClient
	logger     *slog.Logger
}

// Option is a functional option for configuring the provider.
type Option func(*Provider)

// NewProvider creates a new provider with the given options.
//
// The API key comes from WithAPIKey or, failing that, the XAI_API_KEY
// environment variable.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		apiBase:    "https://api.x.ai/v1",
		httpClient: &http.Client{Timeout: slate.DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("XAI_API_KEY")
	}
	if p.apiKey == "" {
		return nil, &slate.SlateError{
			Message: "xAI API key is required",
			Vendor:  "xai",
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
// The default is "https://api.x.ai/v1".
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

// Name returns the provider name "xai".
func (p *Provider) Name() string {
	return "xai"
}

// Build transforms an analysis request into a chat-completions payload.
//
// Effort tiers map to reasoning_effort; fixed thinking budgets, the
// adaptive sentinel, and the max tier have no equivalent here and
// return a *slate.ValidationError.
func (p *Provider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	payload := chatwire.NewPayload(cfg.Model, req.System, req.Prompt)
	payload.MaxTokens = req.MaxTokens

	switch cfg.Reasoning {
	case types.ReasoningDisabled, "":
		// No reasoning controls.
	case types.ReasoningTemperature:
		payload.Temperature = req.EffectiveTemperature()
	case types.ReasoningEnabled:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not accept a numeric thinking budget", cfg.Model),
			"xai", cfg.Model)
	case types.ReasoningDynamic:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not support adaptive thinking", cfg.Model),
			"xai", cfg.Model)
	case types.ReasoningMax:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not accept the max effort tier", cfg.Model),
			"xai", cfg.Model)
	default:
		if level, ok := cfg.Reasoning.EffortLevel(); ok {
			payload.ReasoningEffort = level
		} else {
			return nil, slate.NewValidationError(
				fmt.Sprintf("unknown reasoning mode %q", cfg.Reasoning),
				"xai", cfg.Model)
		}
	}

	if len(req.Tools) > 0 {
		if cfg.ToolsAllowed {
			payload.SetTools(req.Tools)
		} else {
			p.logger.Warn("dropping tools: not allowed for model",
				"vendor", "xai",
				"model", cfg.Model,
				"tools", len(req.Tools))
		}
	}

	return &slate.PreparedRequest{
		Vendor:  types.VendorXAI,
		Model:   cfg.Model,
		Variant: slate.VariantChat,
		Payload: payload,
	}, nil
}

// Analyze sends a prepared request and parses the response into the
// canonical shape.
func (p *Provider) Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
	payload, ok := prep.Payload.(*chatwire.Payload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}
	return chatwire.Do(ctx, p.httpClient, "xai", p.apiBase+"/chat/completions", p.apiKey, payload)
}

// AnalyzeStream sends a prepared request with streaming enabled and
// returns a normalized chunk stream.
//
// The caller must close the returned stream to release resources.
func (p *Provider) AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
	payload, ok := prep.Payload.(*chatwire.Payload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}
	return chatwire.DoStream(ctx, p.httpClient, "xai", p.apiBase+"/chat/completions", p.apiKey, payload)
}
