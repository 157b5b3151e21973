package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// countRequest is the minimal countTokens payload: content only, no
// generation or thinking config.
type countRequest struct {
	Contents []content `json:"contents"`
}

type countResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// CountTokens returns the exact input token count for text under the
// given model, using the countTokens endpoint.
//
// This implements the token estimation CountEndpoint contract, so a
// Provider can be registered directly with a token.Estimator:
//
//	est := token.NewEstimator(
//	    token.WithEndpoint(types.VendorGemini, p),
//	)
func (p *Provider) CountTokens(ctx context.Context, model, text string) (int, error) {
	url := fmt.Sprintf("%s/models/%s:countTokens", p.apiBase, model)

	httpResp, err := p.post(ctx, url, &countRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
	}, false)
	if err != nil {
		return 0, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return 0, fmt.Errorf("countTokens returned status %d: %s", httpResp.StatusCode, respBody)
	}

	var resp countResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.TotalTokens, nil
}
