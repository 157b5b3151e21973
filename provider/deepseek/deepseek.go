// Package deepseek implements the DeepSeek vendor family for slate.
//
// The API is chat-completions compatible. Reasoning is implicit in the
// model choice: deepseek-reasoner always thinks and reports its trace
// through reasoning_content, so reasoning modes never fail validation
// here. The reasoner model rejects tools and caps output, which Build
// accounts for.
//
// Basic usage:
//
//	p, err := deepseek.NewProvider(
//	    deepseek.WithAPIKey("sk-..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  types.ModelConfig{Vendor: types.VendorDeepSeek, Model: "deepseek-reasoner"},
//	    Prompt: "Review this change.",
//	})
package deepseek

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/internal/chatwire"
	"github.com/slate-ai/slate/types"
)

// ReasonerMaxTokens is the output ceiling forced onto the reasoner
// model, which rejects larger values.
const ReasonerMaxTokens = 32000

// Provider implements the provider.Provider interface for DeepSeek.
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
// The API key comes from WithAPIKey or, failing that, the
// DEEPSEEK_API_KEY environment variable.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		apiBase:    "https://api.deepseek.com",
		httpClient: &http.Client{Timeout: slate.DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if p.apiKey == "" {
		return nil, &slate.SlateError{
			Message: "DeepSeek API key is required",
			Vendor:  "deepseek",
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
// The default is "https://api.deepseek.com".
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

// Name returns the provider name "deepseek".
func (p *Provider) Name() string {
	return "deepseek"
}

// isReasoner reports whether model is a reasoner-family model.
func isReasoner(model string) bool {
	return strings.HasPrefix(model, "deepseek-reasoner")
}

// Build transforms an analysis request into a chat-completions payload.
//
// Reasoning is model-implicit here, so reasoning modes other than
// temperature are simply ignored rather than rejected. The reasoner
// model drops tools (logged, not an error) and forces its output
// ceiling.
func (p *Provider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	payload := chatwire.NewPayload(cfg.Model, req.System, req.Prompt)
	payload.MaxTokens = req.MaxTokens

	if cfg.Reasoning == types.ReasoningTemperature {
		payload.Temperature = req.EffectiveTemperature()
	}

	reasoner := isReasoner(cfg.Model)
	if reasoner {
		payload.MaxTokens = slate.IntPtr(ReasonerMaxTokens)
	}

	if len(req.Tools) > 0 {
		switch {
		case reasoner:
			p.logger.Warn("dropping tools: reasoner model does not accept them",
				"vendor", "deepseek",
				"model", cfg.Model,
				"tools", len(req.Tools))
		case !cfg.ToolsAllowed:
			p.logger.Warn("dropping tools: not allowed for model",
				"vendor", "deepseek",
				"model", cfg.Model,
				"tools", len(req.Tools))
		default:
			payload.SetTools(req.Tools)
		}
	}

	return &slate.PreparedRequest{
		Vendor:  types.VendorDeepSeek,
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
	return chatwire.Do(ctx, p.httpClient, "deepseek", p.apiBase+"/chat/completions", p.apiKey, payload)
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
	return chatwire.DoStream(ctx, p.httpClient, "deepseek", p.apiBase+"/chat/completions", p.apiKey, payload)
}
