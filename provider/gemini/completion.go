package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
)

// generateResponse represents a generateContent response.
type generateResponse struct {
	Text          string         `json:"text,omitempty"`
	Candidates    []candidate    `json:"candidates,omitempty"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Analyze sends a prepared request to the generateContent endpoint and
// parses the result into the canonical shape.
func (p *Provider) Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
	payload, ok := prep.Payload.(*generatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.apiBase, prep.Model)
	httpResp, err := p.post(ctx, url, payload, false)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("gemini", httpResp.StatusCode, respBody, nil)
	}

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseResponse(&resp)
}

func (p *Provider) post(ctx context.Context, url string, payload any, stream bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return httpResp, nil
}

// parseResponse converts a generateContent response to the canonical
// shape.
//
// A top-level text shortcut wins when present; otherwise the first
// candidate's parts are walked in order: plain text concatenates into
// findings, thought parts into reasoning, and functionCall parts map
// to tool calls with their args re-marshaled as JSON. A response with
// neither a text shortcut nor any candidates is structurally
// impossible and returns an error.
func parseResponse(resp *generateResponse) (*slate.ParsedResponse, error) {
	parsed := &slate.ParsedResponse{}

	if resp.Text != "" {
		text := resp.Text
		parsed.Findings = &text
		parsed.Usage = convertUsage(resp.UsageMetadata)
		return parsed, nil
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("response contains no candidates")
	}

	var text, reasoning string
	var sawText, sawReasoning bool

	for _, prt := range resp.Candidates[0].Content.Parts {
		switch {
		case prt.FunctionCall != nil:
			args := "{}"
			if prt.FunctionCall.Args != nil {
				if raw, err := json.Marshal(prt.FunctionCall.Args); err == nil {
					args = string(raw)
				}
			}
			parsed.ToolCalls = append(parsed.ToolCalls, slate.ToolCall{
				Name:      prt.FunctionCall.Name,
				Arguments: args,
			})
		case prt.Thought:
			reasoning += prt.Text
			sawReasoning = true
		case prt.Text != "":
			text += prt.Text
			sawText = true
		}
	}

	if sawText {
		parsed.Findings = &text
	}
	if sawReasoning {
		parsed.Reasoning = &reasoning
	}
	parsed.Usage = convertUsage(resp.UsageMetadata)

	return parsed, nil
}

func convertUsage(meta *usageMetadata) *slate.Usage {
	if meta == nil {
		return nil
	}
	return &slate.Usage{
		PromptTokens:     meta.PromptTokenCount,
		CompletionTokens: meta.CandidatesTokenCount,
		TotalTokens:      meta.TotalTokenCount,
	}
}

// mapFinishReason maps a generateContent finishReason to the canonical
// finish reason.
func mapFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return "stop"
	case "MAX_TOKENS":
		return "length"
	default:
		return reason
	}
}
