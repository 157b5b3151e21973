package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/internal/chatwire"
)

// responsesResponse represents a structured responses result.
type responsesResponse struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []outputItem `json:"output"`
	Usage  *respUsage   `json:"usage"`
}

// outputItem is one entry of the output array: an assistant message,
// a reasoning summary, or a function call.
type outputItem struct {
	Type      string        `json:"type"`
	Content   []outputBlock `json:"content,omitempty"`
	Summary   []outputBlock `json:"summary,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
}

type outputBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type respUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Analyze sends a prepared request to the endpoint its variant selects
// and parses the result into the canonical shape.
func (p *Provider) Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
	switch payload := prep.Payload.(type) {
	case *chatwire.Payload:
		return chatwire.Do(ctx, p.httpClient, "openai", p.apiBase+"/chat/completions", p.apiKey, payload)
	case *responsesPayload:
		return p.analyzeResponses(ctx, payload)
	default:
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}
}

func (p *Provider) analyzeResponses(ctx context.Context, payload *responsesPayload) (*slate.ParsedResponse, error) {
	httpResp, err := p.postResponses(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("openai", httpResp.StatusCode, respBody, nil)
	}

	var resp responsesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseResponsesResult(&resp)
}

func (p *Provider) postResponses(ctx context.Context, payload *responsesPayload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if payload.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return httpResp, nil
}

// parseResponsesResult converts a responses result to the canonical
// shape. Output items are walked in order; message text segments
// concatenate, reasoning summaries concatenate, and function calls
// map to tool calls. An empty output array is structurally impossible
// and returns an error.
func parseResponsesResult(resp *responsesResponse) (*slate.ParsedResponse, error) {
	if len(resp.Output) == 0 {
		return nil, fmt.Errorf("response contains no output items")
	}

	parsed := &slate.ParsedResponse{}

	var text, reasoning string
	var sawText, sawReasoning bool

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, block := range item.Content {
				if block.Type == "output_text" {
					text += block.Text
					sawText = true
				}
			}
		case "reasoning":
			for _, block := range item.Summary {
				reasoning += block.Text
				sawReasoning = true
			}
		case "function_call":
			args := item.Arguments
			if args == "" {
				args = "{}"
			}
			parsed.ToolCalls = append(parsed.ToolCalls, slate.ToolCall{
				ID:        item.CallID,
				Name:      item.Name,
				Arguments: args,
			})
		}
	}

	if sawText {
		parsed.Findings = &text
	}
	if sawReasoning {
		parsed.Reasoning = &reasoning
	}

	if resp.Usage != nil {
		parsed.Usage = &slate.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return parsed, nil
}
