package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
)

// messagesResponse represents a Messages API response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

// contentBlock is one block of a response: text, thinking, or tool_use.
type contentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Analyze sends a prepared request to the Messages API and parses the
// response into the canonical shape.
//
// This method handles the complete request/response cycle including:
// - HTTP request/response handling with the required headers
// - Error parsing and classification
// - Content block extraction (text, thinking, tool_use)
func (p *Provider) Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
	payload, ok := prep.Payload.(*messagesPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("anthropic", httpResp.StatusCode, respBody, nil)
	}

	var resp messagesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseResponse(&resp)
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", p.apiVersion)
}

// parseResponse converts a Messages API response to the canonical
// shape.
//
// Text blocks are concatenated in order. Findings stays nil when the
// model produced no text, so callers can tell a tool-only turn apart
// from an empty text response. A response with no content blocks at
// all is structurally impossible and returns an error.
func parseResponse(resp *messagesResponse) (*slate.ParsedResponse, error) {
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("response contains no content blocks")
	}

	parsed := &slate.ParsedResponse{}

	var text, reasoning string
	var sawText, sawReasoning bool

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.Text
			sawText = true
		case "thinking":
			reasoning += block.Thinking
			sawReasoning = true
		case "tool_use":
			parsed.ToolCalls = append(parsed.ToolCalls, slate.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	if sawText {
		parsed.Findings = &text
	}
	if sawReasoning {
		parsed.Reasoning = &reasoning
	}

	parsed.Usage = &slate.Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}

	return parsed, nil
}

// mapStopReason maps a Messages API stop_reason to the canonical
// finish reason.
func mapStopReason(stopReason string) string {
	switch stopReason {
	case "end_turn":
		return "stop"
	case "max_tokens":
		return "length"
	case "tool_use":
		return "tool_calls"
	case "stop_sequence":
		return "stop"
	default:
		return stopReason
	}
}
