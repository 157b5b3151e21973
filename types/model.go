// Package types contains shared type definitions used across packages to avoid import cycles.
package types

// Vendor identifies one of the supported vendor families.
type Vendor string

const (
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorGemini    Vendor = "gemini"
	VendorXAI       Vendor = "xai"
	VendorDeepSeek  Vendor = "deepseek"
)

// Vendors lists all supported vendor families.
func Vendors() []Vendor {
	return []Vendor{
		VendorOpenAI,
		VendorAnthropic,
		VendorGemini,
		VendorXAI,
		VendorDeepSeek,
	}
}

// Valid reports whether v names a supported vendor family.
func (v Vendor) Valid() bool {
	switch v {
	case VendorOpenAI, VendorAnthropic, VendorGemini, VendorXAI, VendorDeepSeek:
		return true
	}
	return false
}

// ReasoningMode configures a model's internal "thinking" behavior.
//
// The modes map onto three vendor-side mechanisms: an explicit opt-out,
// a numeric thinking-token budget, an automatic/adaptive sentinel, or a
// named effort tier. ReasoningTemperature marks models that take a
// sampling temperature instead of any reasoning control.
type ReasoningMode string

const (
	// ReasoningDisabled omits reasoning controls, or sets an explicit
	// zero budget on vendors that require an opt-out.
	ReasoningDisabled ReasoningMode = "disabled"

	// ReasoningEnabled attaches a fixed thinking-token budget.
	ReasoningEnabled ReasoningMode = "enabled"

	// ReasoningDynamic attaches the vendor's automatic/adaptive
	// sentinel. Only models on the adaptive allow-list accept it.
	ReasoningDynamic ReasoningMode = "dynamic"

	// Named effort tiers, validated per vendor and model.
	ReasoningMinimal ReasoningMode = "minimal"
	ReasoningLow     ReasoningMode = "low"
	ReasoningMedium  ReasoningMode = "medium"
	ReasoningHigh    ReasoningMode = "high"
	ReasoningMax     ReasoningMode = "max"

	// ReasoningTemperature marks a non-reasoning model driven by a
	// sampling temperature.
	ReasoningTemperature ReasoningMode = "temperature"
)

// EffortLevel returns the named effort tier for effort-leveled modes,
// and false for every other mode.
func (m ReasoningMode) EffortLevel() (string, bool) {
	switch m {
	case ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh, ReasoningMax:
		return string(m), true
	}
	return "", false
}

// EstimatorFamily selects the token estimation strategy for a model.
//
// Dispatch is by family rather than vendor so a vendor can be pointed
// at different strategies (its own counting endpoint, an offline
// tokenizer, or the character heuristic).
type EstimatorFamily string

const (
	// EstimatorAnthropicAPI counts with the message-style vendor's
	// counting endpoint.
	EstimatorAnthropicAPI EstimatorFamily = "anthropic_api"

	// EstimatorGeminiAPI counts with the generate-style vendor's
	// counting endpoint.
	EstimatorGeminiAPI EstimatorFamily = "gemini_api"

	// EstimatorLocal counts with an offline tokenizer approximation.
	EstimatorLocal EstimatorFamily = "local"

	// EstimatorHeuristic counts ceil(characters / 4). Always succeeds;
	// also the fallback family for every other strategy.
	EstimatorHeuristic EstimatorFamily = "heuristic"
)

// DefaultThinkingBudget is the fixed thinking-token budget attached
// when ReasoningEnabled is configured without an explicit override.
const DefaultThinkingBudget = 16000

// ModelConfig is an immutable descriptor for one configured model.
//
// A ModelConfig is created once per pipeline phase from static
// configuration and shared by reference across concurrent requests.
// It must never be mutated after creation.
//
// Thread Safety: ModelConfig is safe for concurrent reads after creation.
type ModelConfig struct {
	// Vendor identifies the vendor family.
	Vendor Vendor

	// Model is the vendor-native model name.
	Model string

	// Reasoning configures the model's thinking behavior.
	Reasoning ReasoningMode

	// Temperature is the sampling temperature for non-reasoning
	// models. Nil means the vendor default.
	Temperature *float64

	// MaxInputTokens is the model's declared maximum input size.
	// Nil means no budget is enforced: the batch packer produces one
	// unbounded batch.
	MaxInputTokens *int

	// SafetyMarginTokens overrides the default packing margin.
	SafetyMarginTokens *int

	// Estimator selects the token estimation family for this model.
	Estimator EstimatorFamily

	// ToolsAllowed gates tool declarations. When false, builders drop
	// tools and log that they were ignored.
	ToolsAllowed bool

	// TextVerbosity is an optional output-length hint, attached only
	// where the vendor and model variant accept one.
	TextVerbosity string

	// ThinkingBudget overrides DefaultThinkingBudget for
	// ReasoningEnabled. Zero means the default.
	ThinkingBudget int
}

// EffectiveThinkingBudget returns the fixed budget to attach for
// ReasoningEnabled.
func (c ModelConfig) EffectiveThinkingBudget() int {
	if c.ThinkingBudget > 0 {
		return c.ThinkingBudget
	}
	return DefaultThinkingBudget
}
