package gemini

import (
	"fmt"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/types"
)

// generatePayload is the wire shape of a generateContent request.
//
// The generate family nests everything except the contents under a
// single config object with snake_case keys.
type generatePayload struct {
	Contents []content       `json:"contents"`
	Config   *generateConfig `json:"config,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part is one content fragment: plain text, a thought-summary text, or
// a complete function call.
type part struct {
	Text         string        `json:"text,omitempty"`
	Thought      bool          `json:"thought,omitempty"`
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type generateConfig struct {
	SystemInstruction string          `json:"system_instruction,omitempty"`
	Temperature       *float64        `json:"temperature,omitempty"`
	MaxOutputTokens   *int            `json:"max_output_tokens,omitempty"`
	Tools             []toolGroup     `json:"tools,omitempty"`
	ThinkingConfig    *thinkingConfig `json:"thinking_config,omitempty"`
}

type toolGroup struct {
	FunctionDeclarations []functionDeclaration `json:"function_declarations"`
}

type functionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// thinkingConfig carries either a numeric budget (-1 dynamic, 0
// disabled, N fixed) or a named level for thinking-level model
// generations.
type thinkingConfig struct {
	ThinkingBudget *int   `json:"thinking_budget,omitempty"`
	ThinkingLevel  string `json:"thinking_level,omitempty"`
}

// CountingText implements slate.RequestPayload.
func (g *generatePayload) CountingText() []string {
	var segments []string
	if g.Config != nil && g.Config.SystemInstruction != "" {
		segments = append(segments, g.Config.SystemInstruction)
	}
	for _, c := range g.Contents {
		for _, p := range c.Parts {
			if p.Text != "" {
				segments = append(segments, p.Text)
			}
		}
	}
	return segments
}

// Build transforms an analysis request into a generateContent payload.
//
// Reasoning modes map onto thinking_config as follows:
//   - disabled sets thinking_budget 0, rejected for models that cannot
//     turn thinking off
//   - enabled sets a fixed thinking_budget
//   - dynamic sets the -1 sentinel
//   - effort tiers are only accepted by thinking-level model
//     generations: minimal and low map to level "low", medium and high
//     to "high"; max has no mapping
func (p *Provider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	config := &generateConfig{
		SystemInstruction: req.System,
		MaxOutputTokens:   req.MaxTokens,
	}

	switch cfg.Reasoning {
	case "":
		// No thinking controls.

	case types.ReasoningTemperature:
		config.Temperature = req.EffectiveTemperature()

	case types.ReasoningDisabled:
		if !p.models.CanDisableThinking(cfg.Model) {
			return nil, slate.NewValidationError(
				fmt.Sprintf("model %q cannot disable thinking", cfg.Model),
				"gemini", cfg.Model)
		}
		config.ThinkingConfig = &thinkingConfig{ThinkingBudget: slate.IntPtr(0)}

	case types.ReasoningEnabled:
		config.ThinkingConfig = &thinkingConfig{
			ThinkingBudget: slate.IntPtr(cfg.EffectiveThinkingBudget()),
		}

	case types.ReasoningDynamic:
		config.ThinkingConfig = &thinkingConfig{ThinkingBudget: slate.IntPtr(-1)}

	case types.ReasoningMinimal, types.ReasoningLow, types.ReasoningMedium, types.ReasoningHigh:
		if !p.models.UsesThinkingLevels(cfg.Model) {
			return nil, slate.NewValidationError(
				fmt.Sprintf("model %q does not accept effort tiers", cfg.Model),
				"gemini", cfg.Model)
		}
		config.ThinkingConfig = &thinkingConfig{ThinkingLevel: thinkingLevel(cfg.Reasoning)}

	case types.ReasoningMax:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not accept the max effort tier", cfg.Model),
			"gemini", cfg.Model)

	default:
		return nil, slate.NewValidationError(
			fmt.Sprintf("unknown reasoning mode %q", cfg.Reasoning),
			"gemini", cfg.Model)
	}

	if len(req.Tools) > 0 {
		if cfg.ToolsAllowed {
			decls := make([]functionDeclaration, len(req.Tools))
			for i, t := range req.Tools {
				decls[i] = functionDeclaration{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				}
			}
			config.Tools = []toolGroup{{FunctionDeclarations: decls}}
		} else {
			p.logger.Warn("dropping tools: not allowed for model",
				"vendor", "gemini",
				"model", cfg.Model,
				"tools", len(req.Tools))
		}
	}

	payload := &generatePayload{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		Config:   config,
	}

	return &slate.PreparedRequest{
		Vendor:  types.VendorGemini,
		Model:   cfg.Model,
		Variant: slate.VariantGenerate,
		Payload: payload,
	}, nil
}

// thinkingLevel collapses the four accepted tiers onto the two levels
// the thinking-level generations take.
func thinkingLevel(mode types.ReasoningMode) string {
	switch mode {
	case types.ReasoningMinimal, types.ReasoningLow:
		return "low"
	default:
		return "high"
	}
}
