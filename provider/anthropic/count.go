package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// countRequest is the minimal count_tokens payload. Output shaping and
// thinking controls are never sent; the endpoint rejects them.
type countRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type countResponse struct {
	InputTokens int `json:"input_tokens"`
}

// CountTokens returns the exact input token count for text under the
// given model, using the count_tokens endpoint.
//
// This implements the token estimation CountEndpoint contract, so a
// Provider can be registered directly with a token.Estimator:
//
//	est := token.NewEstimator(
//	    token.WithEndpoint(types.VendorAnthropic, p),
//	)
func (p *Provider) CountTokens(ctx context.Context, model, text string) (int, error) {
	body, err := json.Marshal(&countRequest{
		Model:    model,
		Messages: []message{{Role: "user", Content: text}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+"/v1/messages/count_tokens", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return 0, fmt.Errorf("count_tokens returned status %d: %s", httpResp.StatusCode, bytes.TrimSpace(respBody))
	}

	var resp countResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.InputTokens, nil
}
