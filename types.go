package slate

// Message represents a single message in a request conversation.
//
// Thread Safety: Message is safe for concurrent reads after creation.
type Message struct {
	// Role identifies the message sender.
	// Valid values: "system", "user", "assistant", "tool"
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Tool declares a function tool the model may invoke.
//
// The declaration is canonical; each vendor package converts it to the
// vendor's own schema (flat function array, input_schema object, or a
// function_declarations wrapper) at build time.
type Tool struct {
	// Name is the function name the model will use.
	Name string `json:"name"`

	// Description explains what the function does.
	// The model uses this to decide when to call the function.
	Description string `json:"description,omitempty"`

	// Parameters is the parameter schema in JSON Schema format.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ToolCall represents a tool invocation made by the model.
type ToolCall struct {
	// ID is the vendor-assigned identifier for this call.
	ID string `json:"id"`

	// Name is the function name the model invoked.
	Name string `json:"name"`

	// Arguments contains the call arguments as a JSON string.
	// When a vendor returns structured arguments they are re-encoded
	// to JSON; when argument fragments fail to parse the raw text is
	// preserved as-is.
	Arguments string `json:"arguments"`
}

// Usage represents token usage statistics for a request.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the generated output.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens (prompt + completion).
	TotalTokens int `json:"total_tokens"`
}

// Float64Ptr returns a pointer to the provided float64 value.
// This helper function is useful for setting optional pointer fields in request types.
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to the provided int value.
// This helper function is useful for setting optional pointer fields in request types.
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to the provided string value.
// This helper function is useful for setting optional pointer fields in request types.
func StringPtr(v string) *string {
	return &v
}
