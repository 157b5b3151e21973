package anthropic

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

// AnalyzeStream sends a prepared request to the Messages API with
// streaming enabled and returns a normalized chunk stream.
//
// The caller must close the returned stream to release resources.
//
// Example:
//
//	stream, err := p.AnalyzeStream(ctx, prep)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for {
//	    chunk, err := stream.Recv()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Process chunk...
//	}
func (p *Provider) AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
	payload, ok := prep.Payload.(*messagesPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", prep.Payload)
	}

	streamPayload := *payload
	streamPayload.Stream = true

	body, err := json.Marshal(&streamPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, slate.ParseVendorError("anthropic", httpResp.StatusCode, respBody, nil)
	}

	return newMessagesStream(ctx, httpResp.Body), nil
}

// streamEvent represents a Messages API streaming event.
type streamEvent struct {
	Type         string        `json:"type"`
	Index        int           `json:"index,omitempty"`
	ContentBlock *contentBlock `json:"content_block,omitempty"`
	Delta        *streamDelta  `json:"delta,omitempty"`
	Usage        *usage        `json:"usage,omitempty"`
	Error        *streamError  `json:"error,omitempty"`
}

// streamDelta represents incremental content updates.
type streamDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

type streamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// toolBuffer accumulates one in-flight tool_use block's argument
// fragments until its content_block_stop arrives.
type toolBuffer struct {
	id   string
	name string
	args bytes.Buffer
}

// messagesStream implements slate.ChunkStream for the Messages API's
// Server-Sent Events.
//
// The Messages API uses a multi-event streaming protocol:
// - message_start: initial message metadata
// - content_block_start: start of a content block (text or tool_use)
// - content_block_delta: incremental text, thinking, or argument JSON
// - content_block_stop: end of a content block
// - message_delta: message-level updates carrying stop_reason and usage
// - message_stop: end of stream
//
// Tool argument fragments are buffered per block index and flushed as
// one completed delta when the block stops.
//
// Thread Safety: messagesStream is NOT safe for concurrent use.
// Only one goroutine should call Recv() at a time.
type messagesStream struct {
	reader *bufio.Reader
	closer io.Closer
	ctx    context.Context
	err    error // Cached error for subsequent Recv calls

	tools      map[int]*toolBuffer
	stopReason string
	usage      *slate.Usage
	done       bool
}

// newMessagesStream creates a normalized SSE stream from an HTTP
// response body.
func newMessagesStream(ctx context.Context, body io.ReadCloser) slate.ChunkStream {
	return &messagesStream{
		reader: bufio.NewReader(body),
		closer: body,
		ctx:    ctx,
		tools:  make(map[int]*toolBuffer),
	}
}

// Recv receives the next chunk from the stream.
//
// Returns io.EOF after the terminal message_end or error chunk has
// been delivered. After receiving io.EOF or any error, subsequent
// calls will return the same error.
func (s *messagesStream) Recv() (*slate.StreamChunk, error) {
	if s.err != nil {
		return nil, s.err
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
		if len(line) == 0 {
			continue
		}
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data: "))

		var event streamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Skip malformed events
			continue
		}

		chunk := s.processEvent(&event, data)
		if chunk != nil {
			return chunk, nil
		}
	}
}

// processEvent converts one stream event to a normalized chunk.
//
// Returns nil for events that don't produce chunks (like message_start
// and ping).
func (s *messagesStream) processEvent(event *streamEvent, raw []byte) *slate.StreamChunk {
	switch event.Type {
	case "message_start", "ping", "content_block_stop":
		if event.Type == "content_block_stop" {
			if chunk := s.flushTool(event.Index); chunk != nil {
				return chunk
			}
		}
		return nil

	case "content_block_start":
		if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
			s.tools[event.Index] = &toolBuffer{
				id:   event.ContentBlock.ID,
				name: event.ContentBlock.Name,
			}
		}
		return nil

	case "content_block_delta":
		if event.Delta == nil {
			return nil
		}
		switch event.Delta.Type {
		case "text_delta":
			return &slate.StreamChunk{Kind: slate.ChunkText, Text: event.Delta.Text}
		case "thinking_delta":
			return &slate.StreamChunk{Kind: slate.ChunkReasoning, Reasoning: event.Delta.Thinking}
		case "input_json_delta":
			buf, ok := s.tools[event.Index]
			if !ok {
				return nil
			}
			buf.args.WriteString(event.Delta.PartialJSON)
			return &slate.StreamChunk{
				Kind: slate.ChunkToolCall,
				ToolCall: &slate.ToolCallDelta{
					Index:     event.Index,
					ID:        buf.id,
					Name:      buf.name,
					Arguments: event.Delta.PartialJSON,
				},
			}
		}
		return nil

	case "message_delta":
		if event.Delta != nil && event.Delta.StopReason != "" {
			s.stopReason = mapStopReason(event.Delta.StopReason)
		}
		if event.Usage != nil {
			s.usage = &slate.Usage{
				PromptTokens:     event.Usage.InputTokens,
				CompletionTokens: event.Usage.OutputTokens,
				TotalTokens:      event.Usage.InputTokens + event.Usage.OutputTokens,
			}
		}
		return nil

	case "message_stop":
		s.done = true
		return &slate.StreamChunk{
			Kind:         slate.ChunkMessageEnd,
			FinishReason: s.stopReason,
			Usage:        s.usage,
		}

	case "error":
		s.done = true
		msg := "stream error"
		if event.Error != nil {
			msg = event.Error.Message
		}
		return &slate.StreamChunk{Kind: slate.ChunkError, Err: msg}

	default:
		// Unknown event type, surface as a system chunk
		return &slate.StreamChunk{Kind: slate.ChunkSystem, Raw: string(raw)}
	}
}

// flushTool closes the tool buffer at index and emits its completed
// delta. Accumulated arguments are kept verbatim when they parse as
// JSON and passed through raw otherwise.
func (s *messagesStream) flushTool(index int) *slate.StreamChunk {
	buf, ok := s.tools[index]
	if !ok {
		return nil
	}
	delete(s.tools, index)

	// Non-JSON accumulations pass through raw so nothing is lost.
	args := buf.args.String()
	if args == "" {
		args = "{}"
	}

	return &slate.StreamChunk{
		Kind: slate.ChunkToolCall,
		ToolCall: &slate.ToolCallDelta{
			Index:     index,
			ID:        buf.id,
			Name:      buf.name,
			Arguments: args,
			Done:      true,
		},
	}
}

// Close closes the stream and releases resources.
//
// It is safe to call Close multiple times.
// Close must be called even if Recv returns an error.
func (s *messagesStream) Close() error {
	return s.closer.Close()
}
