package chatwire

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/slate-ai/slate"
)

// chunkEvent represents one chat-completions stream chunk.
type chunkEvent struct {
	ID      string        `json:"id"`
	Choices []chunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage"`
	Error   *chunkError   `json:"error"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Role             string          `json:"role,omitempty"`
	Content          string          `json:"content,omitempty"`
	ReasoningContent string          `json:"reasoning_content,omitempty"`
	ToolCalls        []toolCallDelta `json:"tool_calls,omitempty"`
}

type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

type chunkError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// toolBuffer accumulates one in-flight tool call's argument fragments.
type toolBuffer struct {
	id   string
	name string
	args strings.Builder
}

// Stream implements slate.ChunkStream for chat-completions SSE.
//
// Tool-call fragments arrive keyed by index; they are buffered and
// flushed as completed deltas when the finish reason arrives. The
// terminal message_end chunk is emitted on the "[DONE]" sentinel so a
// trailing usage-only chunk is still folded in.
//
// Thread Safety: Stream is NOT safe for concurrent use.
// Only one goroutine should call Recv() at a time.
type Stream struct {
	reader *bufio.Reader
	closer io.Closer
	ctx    context.Context
	err    error // Cached error for subsequent Recv calls

	pending      []*slate.StreamChunk
	tools        map[int]*toolBuffer
	finishReason string
	usage        *slate.Usage
	done         bool
}

// NewStream creates a normalized stream from an SSE response body.
func NewStream(ctx context.Context, body io.ReadCloser) *Stream {
	return &Stream{
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
func (s *Stream) Recv() (*slate.StreamChunk, error) {
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
				// Server closed without the sentinel; still terminate
				// cleanly with what was gathered.
				s.finish()
				if len(s.pending) > 0 {
					return s.pop(), nil
				}
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
			s.finish()
			if len(s.pending) > 0 {
				return s.pop(), nil
			}
			s.err = io.EOF
			return nil, io.EOF
		}

		var event chunkEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Skip malformed events
			continue
		}

		s.processEvent(&event)
		if len(s.pending) > 0 {
			return s.pop(), nil
		}
	}
}

func (s *Stream) pop() *slate.StreamChunk {
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk
}

// processEvent appends the normalized chunks for one event to the
// pending queue.
func (s *Stream) processEvent(event *chunkEvent) {
	if event.Error != nil {
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkError,
			Err:  event.Error.Message,
		})
		s.done = true
		return
	}

	if event.Usage != nil {
		s.usage = &slate.Usage{
			PromptTokens:     event.Usage.PromptTokens,
			CompletionTokens: event.Usage.CompletionTokens,
			TotalTokens:      event.Usage.TotalTokens,
		}
	}

	for _, choice := range event.Choices {
		delta := choice.Delta

		if delta.ReasoningContent != "" {
			s.pending = append(s.pending, &slate.StreamChunk{
				Kind:      slate.ChunkReasoning,
				Reasoning: delta.ReasoningContent,
			})
		}
		if delta.Content != "" {
			s.pending = append(s.pending, &slate.StreamChunk{
				Kind: slate.ChunkText,
				Text: delta.Content,
			})
		}

		for _, tc := range delta.ToolCalls {
			buf, ok := s.tools[tc.Index]
			if !ok {
				buf = &toolBuffer{}
				s.tools[tc.Index] = buf
			}
			if tc.ID != "" {
				buf.id = tc.ID
			}
			if tc.Function.Name != "" {
				buf.name = tc.Function.Name
			}
			buf.args.WriteString(tc.Function.Arguments)

			s.pending = append(s.pending, &slate.StreamChunk{
				Kind: slate.ChunkToolCall,
				ToolCall: &slate.ToolCallDelta{
					Index:     tc.Index,
					ID:        buf.id,
					Name:      buf.name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.finishReason = *choice.FinishReason
			s.flushTools()
		}
	}
}

// flushTools emits the completed delta for every buffered tool call,
// in index order.
func (s *Stream) flushTools() {
	if len(s.tools) == 0 {
		return
	}

	indexes := make([]int, 0, len(s.tools))
	for i := range s.tools {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		buf := s.tools[i]
		args := buf.args.String()
		if args == "" {
			args = "{}"
		}
		s.pending = append(s.pending, &slate.StreamChunk{
			Kind: slate.ChunkToolCall,
			ToolCall: &slate.ToolCallDelta{
				Index:     i,
				ID:        buf.id,
				Name:      buf.name,
				Arguments: args,
				Done:      true,
			},
		})
	}
	s.tools = make(map[int]*toolBuffer)
}

// finish queues the terminal message_end chunk unless an error chunk
// already ended the stream.
func (s *Stream) finish() {
	if s.done {
		return
	}
	s.flushTools()
	s.pending = append(s.pending, &slate.StreamChunk{
		Kind:         slate.ChunkMessageEnd,
		FinishReason: s.finishReason,
		Usage:        s.usage,
	})
	s.done = true
}

// Close closes the stream and releases resources.
//
// It is safe to call Close multiple times.
// Close must be called even if Recv returns an error.
func (s *Stream) Close() error {
	return s.closer.Close()
}
