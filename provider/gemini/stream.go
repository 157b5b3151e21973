package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
)

// AnalyzeStream sends a prepared request to the streamGenerateContent
// endpoint and returns a normalized chunk stream.
//
// The caller must close the returned stream to release resources.
func (p *Provider) AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
	payload, ok := prep.Payload.(*generatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.apiBase, prep.Model)
	httpResp, err := p.post(ctx, url, payload, true)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("gemini", httpResp.StatusCode, respBody, nil)
	}

	return newGenerateStream(ctx, httpResp.Body), nil
}

// generateStream implements slate.ChunkStream for streamGenerateContent
// SSE.
//
// Each SSE data line carries a complete generateContent response
// fragment. Text and thought parts map to text and reasoning deltas;
// functionCall parts arrive whole, so each one maps to a single
// completed tool-call delta. A finishReason triggers the terminal
// message_end chunk.
//
// Thread Safety: generateStream is NOT safe for concurrent use.
// Only one goroutine should call Recv() at a time.
type generateStream struct {
	reader *bufio.Reader
	closer io.Closer
	ctx    context.Context
	err    error // Cached error for subsequent Recv calls

	pending   []*slate.StreamChunk
	toolIndex int
	usage     *slate.Usage
	done      bool
}

func newGenerateStream(ctx context.Context, body io.ReadCloser) slate.ChunkStream {
	return &generateStream{
		reader: bufio.NewReader(body),
		closer: body,
		ctx:    ctx,
	}
}

// Recv receives the next chunk from the stream.
//
// Returns io.EOF after the terminal message_end chunk has been
// delivered. After receiving io.EOF or any error, subsequent calls
// will return the same error.
func (s *generateStream) Recv() (*slate.StreamChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pending) > 0 {
		return s.pop(), nil
	}
	if s.done {
		s.err = io.EOF
		return nil, io.EOF
	}

	for {
		select {
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return nil, s.err
		default:
		}

		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Server closed without a finishReason; terminate
				// cleanly with what was gathered.
				s.pending = append(s.pending, &slate.StreamChunk{
					Kind:  slate.ChunkMessageEnd,
					Usage: s.usage,
				})
				s.done = true
				return s.pop(), nil
			}
			s.err = fmt.Errorf("failed to read line: %w", err)
			return nil, s.err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 || !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data: "))

		var resp generateResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			// Skip malformed events
			continue
		}

		s.processFragment(&resp)
		if len(s.pending) > 0 {
			return s.pop(), nil
		}
	}
}

func (s *generateStream) pop() *slate.StreamChunk {
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk
}

func (s *generateStream) processFragment(resp *generateResponse) {
	if resp.UsageMetadata != nil {
		s.usage = convertUsage(resp.UsageMetadata)
	}

	if len(resp.Candidates) == 0 {
		return
	}
	cand := resp.Candidates[0]

	for _, prt := range cand.Content.Parts {
		switch {
		case prt.FunctionCall != nil:
			args := "{}"
			if prt.FunctionCall.Args != nil {
				if raw, err := json.Marshal(prt.FunctionCall.Args); err == nil {
					args = string(raw)
				}
			}
			s.pending = append(s.pending, &slate.StreamChunk{
				Kind: slate.ChunkToolCall,
				ToolCall: &slate.ToolCallDelta{
					Index:     s.toolIndex,
					Name:      prt.FunctionCall.Name,
					Arguments: args,
					Done:      true,
				},
			})
			s.toolIndex++
		case prt.Thought:
			s.pending = append(s.pending, &slate.StreamChunk{
				Kind:      slate.ChunkReasoning,
				Reasoning: prt.Text,
			})
		case prt.Text != "":
			s.pending = append(s.pending, &slate.StreamChunk{
				Kind: slate.ChunkText,
				Text: prt.Text,
			})
		}
	}

	if cand.FinishReason != "" {
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind:         slate.ChunkMessageEnd,
			FinishReason: mapFinishReason(cand.FinishReason),
			Usage:        s.usage,
		})
		s.done = true
	}
}

// Close closes the stream and releases resources.
//
// It is safe to call Close multiple times.
// Close must be called even if Recv returns an error.
func (s *generateStream) Close() error {
	return s.closer.Close()
}
