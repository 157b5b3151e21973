package token

import (
	"context"
	"strings"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/types"
)

// Result is the outcome of one estimation call.
//
// Tokens is nil when the count is unknown: a counting endpoint failed
// or no tokenizer encoding was available. Provenance always names the
// strategy that produced (or failed to produce) the count.
type Result struct {
	// Tokens is the estimated input token count, nil when unknown.
	Tokens *int

	// Provenance names the strategy: the estimator family on success,
	// "<family>_error" on an endpoint failure, or
	// "tokenizer_unavailable" when no local encoding exists.
	Provenance string

	// Err carries the failure message when Tokens is nil.
	Err string
}

// ProvenanceTokenizerUnavailable marks a local estimation attempt with
// no usable encoding.
const ProvenanceTokenizerUnavailable = "tokenizer_unavailable"

// CountEndpoint counts tokens with a vendor's own counting endpoint.
//
// Implementations wrap the flattened content in the smallest payload
// the endpoint accepts; vendor-specific non-content fields (output
// shaping, reasoning controls) are never sent because counting
// endpoints reject them.
type CountEndpoint interface {
	// CountTokens returns the vendor's exact input token count for
	// text under the given model.
	CountTokens(ctx context.Context, model, text string) (int, error)
}

// Estimator dispatches token estimation by estimator family.
//
// Thread Safety: Estimator is safe for concurrent use once the
// endpoints map is populated; RegisterEndpoint must not race Estimate.
type Estimator struct {
	counter   Counter
	endpoints map[types.Vendor]CountEndpoint
}

// Option is a functional option for configuring an Estimator.
type Option func(*Estimator)

// NewEstimator creates an estimator with the generic local counter and
// no vendor endpoints registered.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		counter:   NewCounter(),
		endpoints: make(map[types.Vendor]CountEndpoint),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCounter sets the local approximation counter. Passing nil
// disables local estimation; the local family then reports
// tokenizer_unavailable.
func WithCounter(c Counter) Option {
	return func(e *Estimator) {
		e.counter = c
	}
}

// WithEndpoint registers a vendor counting endpoint.
func WithEndpoint(vendor types.Vendor, ep CountEndpoint) Option {
	return func(e *Estimator) {
		e.endpoints[vendor] = ep
	}
}

// RegisterEndpoint registers a vendor counting endpoint after
// construction. Call before the first Estimate.
func (e *Estimator) RegisterEndpoint(vendor types.Vendor, ep CountEndpoint) {
	e.endpoints[vendor] = ep
}

// Estimate estimates the input token count of a prepared request.
//
// Dispatch is by the model config's estimator family, not by vendor:
// vendor-exact families call the vendor's counting endpoint with the
// flattened content; the local family encodes the flattened content
// offline; the heuristic family counts ceil(chars/4). Endpoint and
// encoding failures return Tokens nil rather than an error so callers
// can fall through their own chain - estimation is never fatal.
func (e *Estimator) Estimate(ctx context.Context, cfg types.ModelConfig, payload slate.RequestPayload) Result {
	return e.estimate(ctx, cfg, Flatten(payload))
}

// EstimateText estimates the token count of raw prompt text under the
// model config's estimator family.
func (e *Estimator) EstimateText(ctx context.Context, cfg types.ModelConfig, text string) Result {
	return e.estimate(ctx, cfg, text)
}

func (e *Estimator) estimate(ctx context.Context, cfg types.ModelConfig, text string) Result {
	switch cfg.Estimator {
	case types.EstimatorAnthropicAPI:
		return e.endpointCount(ctx, types.VendorAnthropic, cfg, text)

	case types.EstimatorGeminiAPI:
		return e.endpointCount(ctx, types.VendorGemini, cfg, text)

	case types.EstimatorLocal:
		return e.localCount(cfg.Model, text)

	default:
		// Heuristic, and the family for vendors with no better option.
		n := HeuristicCount(text)
		return Result{Tokens: &n, Provenance: string(types.EstimatorHeuristic)}
	}
}

func (e *Estimator) endpointCount(ctx context.Context, vendor types.Vendor, cfg types.ModelConfig, text string) Result {
	family := string(cfg.Estimator)
	ep, ok := e.endpoints[vendor]
	if !ok {
		return Result{
			Provenance: family + "_error",
			Err:        "no counting endpoint registered for " + string(vendor),
		}
	}

	n, err := ep.CountTokens(ctx, cfg.Model, text)
	if err != nil {
		return Result{
			Provenance: family + "_error",
			Err:        err.Error(),
		}
	}
	return Result{Tokens: &n, Provenance: family}
}

func (e *Estimator) localCount(model, text string) Result {
	if e.counter == nil {
		return Result{
			Provenance: ProvenanceTokenizerUnavailable,
			Err:        ErrNoEncoding.Error(),
		}
	}

	c := e.counter
	if model != "" {
		// Prefer a model-matched encoding, falling back to the
		// configured generic counter.
		if mc, err := ForModel(model); err == nil {
			c = mc
		}
	}

	n := c.CountText(text)
	return Result{Tokens: &n, Provenance: string(types.EstimatorLocal)}
}

// Flatten joins a payload's content segments into one countable string.
//
// It handles the three payload shapes uniformly: role/content message
// lists, a single input string, and content-block lists. Segments are
// joined with newlines.
func Flatten(payload slate.RequestPayload) string {
	if payload == nil {
		return ""
	}
	return strings.Join(payload.CountingText(), "\n")
}
