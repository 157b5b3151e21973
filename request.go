package slate

import (
	"github.com/slate-ai/slate/types"
)

// AnalysisRequest is the canonical request intent handed to a vendor's
// request builder. It carries everything a builder needs to produce a
// wire payload: the model descriptor, the assembled prompt, optional
// tool declarations, and sampling overrides.
//
// Thread Safety: AnalysisRequest is safe for concurrent reads after creation.
type AnalysisRequest struct {
	// Model describes the target model, its vendor, and its reasoning
	// configuration.
	Model types.ModelConfig

	// Prompt is the fully assembled user prompt text.
	Prompt string

	// System is an optional system/instruction preamble. Vendors place
	// it wherever their wire format expects (a system message, a
	// top-level field, or a system_instruction config entry).
	System string

	// Tools declares function tools available to the model.
	// Vendors that cannot accept tools for the selected model drop
	// them and log that they were ignored.
	Tools []Tool

	// Temperature overrides the model config's sampling temperature
	// for this request.
	Temperature *float64

	// MaxTokens overrides the vendor's default output token ceiling.
	MaxTokens *int
}

// EffectiveTemperature returns the request override when set, falling
// back to the model config's temperature.
func (r *AnalysisRequest) EffectiveTemperature() *float64 {
	if r.Temperature != nil {
		return r.Temperature
	}
	return r.Model.Temperature
}

// APIVariant identifies which wire shape a PreparedRequest carries.
//
// One vendor family exposes two generations of endpoint (classic chat
// completions and the structured responses endpoint); the other
// variants map one-to-one onto their vendor family.
type APIVariant string

const (
	// VariantChat is the classic chat-completions shape
	// {model, messages, ...}.
	VariantChat APIVariant = "chat"

	// VariantResponses is the structured responses shape
	// {model, input, reasoning, text, ...}.
	VariantResponses APIVariant = "responses"

	// VariantMessages is the message-style shape
	// {model, max_tokens, messages, thinking, ...}.
	VariantMessages APIVariant = "messages"

	// VariantGenerate is the generate-style shape
	// {contents, config: {...}}.
	VariantGenerate APIVariant = "generate"
)

// RequestPayload is implemented by each vendor's concrete wire payload.
//
// CountingText exposes the payload's content fields (messages, input
// string, or content blocks) as flat text segments so the token
// estimator can count them without knowing the vendor's shape.
// Segments are joined with newlines before counting.
type RequestPayload interface {
	CountingText() []string
}

// PreparedRequest is a fully built vendor payload plus the metadata the
// dispatcher and parser need to route it.
//
// A PreparedRequest is immutable once built and is consumed exactly
// once.
type PreparedRequest struct {
	// Vendor identifies which vendor family built this payload.
	Vendor types.Vendor

	// Model is the vendor-native model name.
	Model string

	// Variant tags which wire shape Payload carries so the dispatcher
	// and response parser know what to expect.
	Variant APIVariant

	// Payload is the vendor's concrete request struct. It marshals
	// directly to the vendor's wire JSON.
	Payload RequestPayload
}
