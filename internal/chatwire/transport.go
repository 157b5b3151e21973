package chatwire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
)

// Do posts a chat-completions payload and parses the response.
//
// Errors are classified through slate.ParseVendorError under the given
// vendor name.
func Do(ctx context.Context, client slate.HTTPClient, vendor, url, apiKey string, payload *Payload) (*slate.ParsedResponse, error) {
	httpResp, err := post(ctx, client, url, apiKey, payload)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError(vendor, httpResp.StatusCode, respBody, nil)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return ParseResponse(&resp)
}

// DoStream posts a chat-completions payload with streaming enabled and
// returns the normalized stream.
func DoStream(ctx context.Context, client slate.HTTPClient, vendor, url, apiKey string, payload *Payload) (slate.ChunkStream, error) {
	streamPayload := *payload
	streamPayload.Stream = true

	httpResp, err := post(ctx, client, url, apiKey, &streamPayload)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError(vendor, httpResp.StatusCode, respBody, nil)
	}

	return NewStream(ctx, httpResp.Body), nil
}

func post(ctx context.Context, client slate.HTTPClient, url, apiKey string, payload *Payload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	if payload.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return httpResp, nil
}
