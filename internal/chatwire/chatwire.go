// Package chatwire holds the chat-completions wire shape shared by the
// chat-compatible vendor families.
//
// Three vendor families speak the same {model, messages, ...} request
// shape and the same SSE chunk stream. Each family package owns its
// build rules and endpoints; this package owns only the common wire
// types, response parsing, and stream normalization.
package chatwire

import (
	"fmt"

	"github.com/slate-ai/slate"
)

// Payload is the wire shape of a chat-completions request.
type Payload struct {
	Model           string    `json:"model"`
	Messages        []Message `json:"messages"`
	Temperature     *float64  `json:"temperature,omitempty"`
	ReasoningEffort string    `json:"reasoning_effort,omitempty"`
	MaxTokens       *int      `json:"max_tokens,omitempty"`
	Tools           []Tool    `json:"tools,omitempty"`
	ToolChoice      string    `json:"tool_choice,omitempty"`
	Stream          bool      `json:"stream,omitempty"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool declares one function tool.
type Tool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a callable function.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// CountingText implements slate.RequestPayload.
func (p *Payload) CountingText() []string {
	segments := make([]string, 0, len(p.Messages))
	for _, msg := range p.Messages {
		segments = append(segments, msg.Content)
	}
	return segments
}

// NewPayload assembles the shared message list: an optional system
// message followed by the user prompt.
func NewPayload(model, system, prompt string) *Payload {
	p := &Payload{Model: model}
	if system != "" {
		p.Messages = append(p.Messages, Message{Role: "system", Content: system})
	}
	p.Messages = append(p.Messages, Message{Role: "user", Content: prompt})
	return p
}

// SetTools attaches function tools and enables automatic tool choice.
func (p *Payload) SetTools(tools []slate.Tool) {
	if len(tools) == 0 {
		return
	}
	p.Tools = make([]Tool, len(tools))
	for i, t := range tools {
		p.Tools[i] = Tool{
			Type: "function",
			Function: FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	p.ToolChoice = "auto"
}

// Response represents a chat-completions response.
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage"`
}

// Choice is one response alternative.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message of a choice.
//
// ReasoningContent carries the reasoning trace on vendors that expose
// one; the baseline chat vendors leave it empty.
type ResponseMessage struct {
	Role             string     `json:"role"`
	Content          *string    `json:"content"`
	ReasoningContent *string    `json:"reasoning_content,omitempty"`
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is one completed tool invocation.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the invoked function and its JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Usage carries token usage counters.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ParseResponse converts a chat-completions response to the canonical
// shape. Only the first choice is considered.
//
// Findings stays nil when the assistant message carried no content, so
// a tool-only turn is distinguishable from an empty text response. A
// response with no choices at all is structurally impossible and
// returns an error.
func ParseResponse(resp *Response) (*slate.ParsedResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices")
	}

	parsed := &slate.ParsedResponse{}

	msg := resp.Choices[0].Message
	if msg.Content != nil {
		parsed.Findings = msg.Content
	}
	if msg.ReasoningContent != nil && *msg.ReasoningContent != "" {
		parsed.Reasoning = msg.ReasoningContent
	}
	for _, call := range msg.ToolCalls {
		parsed.ToolCalls = append(parsed.ToolCalls, slate.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	if resp.Usage != nil {
		parsed.Usage = &slate.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return parsed, nil
}
