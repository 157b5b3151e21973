package anthropic

import (
	"fmt"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/types"
)

// DefaultMaxTokens is the output token ceiling applied when the
// request does not override it. The Messages API requires max_tokens
// on every request.
const DefaultMaxTokens = 20000

// messagesPayload is the wire shape of a Messages API request.
type messagesPayload struct {
	Model        string          `json:"model"`
	MaxTokens    int             `json:"max_tokens"`
	System       string          `json:"system,omitempty"`
	Messages     []message       `json:"messages"`
	Temperature  *float64        `json:"temperature,omitempty"`
	Thinking     *thinkingConfig `json:"thinking,omitempty"`
	OutputConfig *outputConfig   `json:"output_config,omitempty"`
	Tools        []tool          `json:"tools,omitempty"`
	Stream       bool            `json:"stream,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// thinkingConfig selects extended thinking. Type is "enabled" with a
// numeric budget, or "adaptive" with no budget for models on the
// adaptive allow-list.
type thinkingConfig struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

// outputConfig carries the named effort tier for effort-capable models.
type outputConfig struct {
	Effort string `json:"effort"`
}

type tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// CountingText implements slate.RequestPayload.
func (m *messagesPayload) CountingText() []string {
	segments := make([]string, 0, len(m.Messages)+1)
	if m.System != "" {
		segments = append(segments, m.System)
	}
	for _, msg := range m.Messages {
		segments = append(segments, msg.Content)
	}
	return segments
}

// Build transforms an analysis request into a Messages API payload.
//
// Reasoning modes map onto the Messages API as follows:
//   - disabled and temperature omit thinking entirely
//   - enabled attaches thinking {type: "enabled", budget_tokens: N}
//   - dynamic attaches thinking {type: "adaptive"} and requires the
//     model to be on the adaptive allow-list
//   - low, medium, high, and max attach output_config {effort}, gated
//     by the effort allow-lists; minimal is not an accepted tier
//
// Misconfigurations return a *slate.ValidationError before any
// network call.
func (p *Provider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	payload := &messagesPayload{
		Model:     cfg.Model,
		MaxTokens: DefaultMaxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	}

	if req.MaxTokens != nil {
		payload.MaxTokens = *req.MaxTokens
	}
	if req.System != "" {
		payload.System = req.System
	}

	switch cfg.Reasoning {
	case types.ReasoningDisabled, "":
		// No thinking controls.

	case types.ReasoningTemperature:
		payload.Temperature = req.EffectiveTemperature()

	case types.ReasoningEnabled:
		payload.Thinking = &thinkingConfig{
			Type:         "enabled",
			BudgetTokens: cfg.EffectiveThinkingBudget(),
		}

	case types.ReasoningDynamic:
		if !p.models.SupportsAdaptiveThinking(cfg.Model) {
			return nil, slate.NewValidationError(
				fmt.Sprintf("model %q does not support adaptive thinking", cfg.Model),
				"anthropic", cfg.Model)
		}
		payload.Thinking = &thinkingConfig{Type: "adaptive"}

	case types.ReasoningMinimal:
		return nil, slate.NewValidationError(
			`effort tier "minimal" is not accepted by the messages API`,
			"anthropic", cfg.Model)

	case types.ReasoningLow, types.ReasoningMedium, types.ReasoningHigh:
		if !p.models.SupportsEffort(cfg.Model) {
			return nil, slate.NewValidationError(
				fmt.Sprintf("model %q does not accept effort tiers", cfg.Model),
				"anthropic", cfg.Model)
		}
		level, _ := cfg.Reasoning.EffortLevel()
		payload.OutputConfig = &outputConfig{Effort: level}

	case types.ReasoningMax:
		if !p.models.SupportsMaxEffort(cfg.Model) {
			return nil, slate.NewValidationError(
				fmt.Sprintf("model %q does not accept the max effort tier", cfg.Model),
				"anthropic", cfg.Model)
		}
		payload.OutputConfig = &outputConfig{Effort: "max"}

	default:
		return nil, slate.NewValidationError(
			fmt.Sprintf("unknown reasoning mode %q", cfg.Reasoning),
			"anthropic", cfg.Model)
	}

	if len(req.Tools) > 0 {
		if cfg.ToolsAllowed {
			payload.Tools = make([]tool, len(req.Tools))
			for i, t := range req.Tools {
				payload.Tools[i] = tool{
					Name:        t.Name,
					Description: t.Description,
					InputSchema: t.Parameters,
				}
			}
		} else {
			p.logger.Warn("dropping tools: not allowed for model",
				"vendor", "anthropic",
				"model", cfg.Model,
				"tools", len(req.Tools))
		}
	}

	return &slate.PreparedRequest{
		Vendor:  types.VendorAnthropic,
		Model:   cfg.Model,
		Variant: slate.VariantMessages,
		Payload: payload,
	}, nil
}
