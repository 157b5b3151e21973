package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/internal/chatwire"
)

// AnalyzeStream sends a prepared request with streaming enabled and
// returns a normalized chunk stream for the payload's variant.
//
// The caller must close the returned stream to release resources.
func (p *Provider) AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
	switch payload := prep.Payload.(type) {
	case *chatwire.Payload:
		return chatwire.DoStream(ctx, p.httpClient, "openai", p.apiBase+"/chat/completions", p.apiKey, payload)
	case *responsesPayload:
		return p.streamResponses(ctx, payload)
	default:
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}
}

func (p *Provider) streamResponses(ctx context.Context, payload *responsesPayload) (slate.ChunkStream, error) {
	streamPayload := *payload
	streamPayload.Stream = true

	httpResp, err := p.postResponses(ctx, &streamPayload)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("openai", httpResp.StatusCode, respBody, nil)
	}

	return newResponsesStream(ctx, httpResp.Body), nil
}

// responsesEvent represents one structured responses stream event.
type responsesEvent struct {
	Type     string             `json:"type"`
	Delta    string             `json:"delta,omitempty"`
	Item     *streamOutputItem  `json:"item,omitempty"`
	Response *responsesResponse `json:"response,omitempty"`
	Error    *responsesError    `json:"error,omitempty"`
}

type streamOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

type responsesError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// responsesStream implements slate.ChunkStream for structured
// responses SSE.
//
// Event types handled: response.output_text.delta for text,
// response.reasoning_summary_text.delta for reasoning,
// response.tool_call.delta for tool argument fragments,
// response.completed for termination with usage, and response.error.
// Every other event surfaces as a ChunkSystem so the sequence stays
// auditable.
//
// Thread Safety: responsesStream is NOT safe for concurrent use.
// Only one goroutine should call Recv() at a time.
type responsesStream struct {
	reader *bufio.Reader
	closer io.Closer
	ctx    context.Context
	err    error // Cached error for subsequent Recv calls

	toolIndex int
	toolID    string
	toolName  string
	toolArgs  bytes.Buffer
	toolOpen  bool

	pending []*slate.StreamChunk
	done    bool
}

func newResponsesStream(ctx context.Context, body io.ReadCloser) slate.ChunkStream {
	return &responsesStream{
		reader: bufio.NewReader(body),
		closer: body,
		ctx:    ctx,
	}
}

// Recv receives the next chunk from the stream.
//
// Returns io.EOF after the terminal message_end or error chunk has
// been delivered. After receiving io.EOF or any error, subsequent
// calls will return the same error.
func (s *responsesStream) Recv() (*slate.StreamChunk, error) {
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
				s.err = io.EOF
				return nil, io.EOF
			}
			s.err = fmt.Errorf("failed to read line: %w", err)
			return nil, s.err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 || !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data: "))

		if bytes.Equal(data, []byte("[DONE]")) {
			s.err = io.EOF
			return nil, io.EOF
		}

		var event responsesEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}

		s.processEvent(&event, data)
		if len(s.pending) > 0 {
			return s.pop(), nil
		}
	}
}

func (s *responsesStream) pop() *slate.StreamChunk {
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk
}

func (s *responsesStream) processEvent(event *responsesEvent, raw []byte) {
	switch event.Type {
	case "response.output_text.delta":
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkText,
			Text: event.Delta,
		})

	case "response.reasoning_summary_text.delta":
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind:      slate.ChunkReasoning,
			Reasoning: event.Delta,
		})

	case "response.output_item.added":
		if event.Item != nil && event.Item.Type == "function_call" {
			if s.toolOpen {
				s.flushTool()
			}
			s.toolID = event.Item.CallID
			s.toolName = event.Item.Name
			s.toolArgs.Reset()
			s.toolOpen = true
		}

	case "response.tool_call.delta":
		if !s.toolOpen {
			return
		}
		s.toolArgs.WriteString(event.Delta)
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkToolCall,
			ToolCall: &slate.ToolCallDelta{
				Index:     s.toolIndex,
				ID:        s.toolID,
				Name:      s.toolName,
				Arguments: event.Delta,
			},
		})

	case "response.output_item.done":
		if s.toolOpen {
			s.flushTool()
		}

	case "response.completed":
		if s.toolOpen {
			s.flushTool()
		}
		end := &slate.StreamChunk{
			Kind:         slate.ChunkMessageEnd,
			FinishReason: "stop",
		}
		if event.Response != nil && event.Response.Usage != nil {
			end.Usage = &slate.Usage{
				PromptTokens:     event.Response.Usage.InputTokens,
				CompletionTokens: event.Response.Usage.OutputTokens,
				TotalTokens:      event.Response.Usage.TotalTokens,
			}
		}
		s.pending = append(s.pending, end)
		s.done = true

	case "response.error":
		msg := "stream error"
		if event.Error != nil {
			msg = event.Error.Message
		}
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkError,
			Err:  msg,
		})
		s.done = true

	default:
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkSystem,
			Raw:  string(raw),
		})
	}
}

func (s *responsesStream) flushTool() {
	args := s.toolArgs.String()
	if args == "" {
		args = "{}"
	}
	s.pending = append(s.pending, &slate.StreamChunk{
		Kind: slate.ChunkToolCall,
		ToolCall: &slate.ToolCallDelta{
			Index:     s.toolIndex,
			ID:        s.toolID,
			Name:      s.toolName,
			Arguments: args,
			Done:      true,
		},
	})
	s.toolIndex++
	s.toolOpen = false
}

// Close closes the stream and releases resources.
//
// It is safe to call Close multiple times.
// Close must be called even if Recv returns an error.
func (s *responsesStream) Close() error {
	return s.closer.Close()
}
