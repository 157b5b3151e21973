package openai

import (
	"fmt"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/internal/chatwire"
	"github.com/slate-ai/slate/types"
)

// responsesPayload is the wire shape of a structured responses request.
type responsesPayload struct {
	Model           string           `json:"model"`
	Input           string           `json:"input"`
	Instructions    string           `json:"instructions,omitempty"`
	Reasoning       *reasoningConfig `json:"reasoning,omitempty"`
	Text            *textConfig      `json:"text,omitempty"`
	MaxOutputTokens *int             `json:"max_output_tokens,omitempty"`
	Temperature     *float64         `json:"temperature,omitempty"`
	Tools           []responsesTool  `json:"tools,omitempty"`
	Stream          bool             `json:"stream,omitempty"`
}

type reasoningConfig struct {
	Effort string `json:"effort"`
}

type textConfig struct {
	Verbosity string `json:"verbosity"`
}

// responsesTool is the flattened tool shape the responses endpoint
// takes (no nested "function" object).
type responsesTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// CountingText implements slate.RequestPayload.
func (r *responsesPayload) CountingText() []string {
	segments := make([]string, 0, 2)
	if r.Instructions != "" {
		segments = append(segments, r.Instructions)
	}
	segments = append(segments, r.Input)
	return segments
}

// Build transforms an analysis request into a chat-completions or
// responses payload, selected by the responses allow-list.
//
// Effort tiers map to reasoning.effort (responses) or reasoning_effort
// (chat). The "max" tier, fixed thinking budgets, and the adaptive
// sentinel have no equivalent on this family and return a
// *slate.ValidationError.
func (p *Provider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	switch cfg.Reasoning {
	case types.ReasoningEnabled:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not accept a numeric thinking budget", cfg.Model),
			"openai", cfg.Model)
	case types.ReasoningDynamic:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not support adaptive thinking", cfg.Model),
			"openai", cfg.Model)
	case types.ReasoningMax:
		return nil, slate.NewValidationError(
			fmt.Sprintf("model %q does not accept the max effort tier", cfg.Model),
			"openai", cfg.Model)
	}

	if p.models.UsesResponsesAPI(cfg.Model) {
		return p.buildResponses(req)
	}
	return p.buildChat(req)
}

func (p *Provider) buildChat(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	payload := chatwire.NewPayload(cfg.Model, req.System, req.Prompt)
	payload.MaxTokens = req.MaxTokens

	switch cfg.Reasoning {
	case types.ReasoningDisabled, "":
		// No reasoning controls.
	case types.ReasoningTemperature:
		payload.Temperature = req.EffectiveTemperature()
	default:
		if level, ok := cfg.Reasoning.EffortLevel(); ok {
			payload.ReasoningEffort = level
		} else {
			return nil, slate.NewValidationError(
				fmt.Sprintf("unknown reasoning mode %q", cfg.Reasoning),
				"openai", cfg.Model)
		}
	}

	p.attachChatTools(payload, req)

	return &slate.PreparedRequest{
		Vendor:  types.VendorOpenAI,
		Model:   cfg.Model,
		Variant: slate.VariantChat,
		Payload: payload,
	}, nil
}

func (p *Provider) buildResponses(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	cfg := req.Model

	payload := &responsesPayload{
		Model:           cfg.Model,
		Input:           req.Prompt,
		Instructions:    req.System,
		MaxOutputTokens: req.MaxTokens,
	}

	switch cfg.Reasoning {
	case types.ReasoningDisabled, "":
		// No reasoning controls.
	case types.ReasoningTemperature:
		payload.Temperature = req.EffectiveTemperature()
	default:
		if level, ok := cfg.Reasoning.EffortLevel(); ok {
			payload.Reasoning = &reasoningConfig{Effort: level}
		} else {
			return nil, slate.NewValidationError(
				fmt.Sprintf("unknown reasoning mode %q", cfg.Reasoning),
				"openai", cfg.Model)
		}
	}

	if cfg.TextVerbosity != "" {
		payload.Text = &textConfig{Verbosity: cfg.TextVerbosity}
	}

	if len(req.Tools) > 0 {
		if cfg.ToolsAllowed {
			payload.Tools = make([]responsesTool, len(req.Tools))
			for i, t := range req.Tools {
				payload.Tools[i] = responsesTool{
					Type:        "function",
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				}
			}
		} else {
			p.logger.Warn("dropping tools: not allowed for model",
				"vendor", "openai",
				"model", cfg.Model,
				"tools", len(req.Tools))
		}
	}

	return &slate.PreparedRequest{
		Vendor:  types.VendorOpenAI,
		Model:   cfg.Model,
		Variant: slate.VariantResponses,
		Payload: payload,
	}, nil
}

func (p *Provider) attachChatTools(payload *chatwire.Payload, req *slate.AnalysisRequest) {
	if len(req.Tools) == 0 {
		return
	}
	if !req.Model.ToolsAllowed {
		p.logger.Warn("dropping tools: not allowed for model",
			"vendor", "openai",
			"model", req.Model.Model,
			"tools", len(req.Tools))
		return
	}
	payload.SetTools(req.Tools)
}
