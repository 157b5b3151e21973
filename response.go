package slate

// ParsedResponse is the canonical result every vendor response
// converges to. It is the only shape callers are allowed to depend on.
//
// Findings is nil, not empty, when the model produced no text because
// it requested a tool call; callers use that distinction to tell "no
// text because a tool was invoked" apart from an empty text response.
//
// Thread Safety: ParsedResponse is safe for concurrent reads.
type ParsedResponse struct {
	// Findings is the model's plain text output. Multiple text
	// segments from the vendor are concatenated in order.
	Findings *string

	// Reasoning is the model's reasoning/thinking text, when the
	// vendor exposes it as a separate field.
	Reasoning *string

	// ToolCalls lists tool invocations in the order the vendor
	// returned them.
	ToolCalls []ToolCall

	// Usage carries token usage counters when the vendor reported them.
	Usage *Usage

	// Err carries a transport or vendor error message. When set, the
	// other fields are unpopulated. Errors cross the canonical
	// boundary through this field, never as exceptions.
	Err string
}

// Text returns the findings text, or "" when findings are absent.
func (r *ParsedResponse) Text() string {
	if r == nil || r.Findings == nil {
		return ""
	}
	return *r.Findings
}

// ChunkKind tags a StreamChunk with its event kind.
type ChunkKind string

const (
	// ChunkText carries an incremental text fragment.
	ChunkText ChunkKind = "text_delta"

	// ChunkReasoning carries an incremental reasoning fragment.
	ChunkReasoning ChunkKind = "reasoning_delta"

	// ChunkToolCall carries a partial or completed tool-call fragment.
	ChunkToolCall ChunkKind = "tool_call_delta"

	// ChunkMessageEnd terminates a stream normally, carrying the
	// finish reason and any usage counters. Exactly one is emitted
	// per successful stream.
	ChunkMessageEnd ChunkKind = "message_end"

	// ChunkError terminates a stream on failure. Exactly one is
	// emitted and the stream ends.
	ChunkError ChunkKind = "error"

	// ChunkSystem is a no-op chunk emitted for unrecognized vendor
	// events so the sequence stays auditable.
	ChunkSystem ChunkKind = "system"
)

// ToolCallDelta carries one fragment of an in-flight tool call.
//
// While a vendor streams partial arguments, deltas arrive with
// Done=false and Arguments holding the raw fragment. When the vendor
// closes the call, one final delta arrives with Done=true and
// Arguments holding the accumulated arguments, parsed as JSON when
// possible and kept as the raw concatenation otherwise.
type ToolCallDelta struct {
	// Index is the vendor-assigned position of this call within the
	// streamed message.
	Index int

	// ID is the vendor-assigned call identifier.
	ID string

	// Name is the invoked function name.
	Name string

	// Arguments is a partial fragment (Done=false) or the completed
	// argument payload (Done=true).
	Arguments string

	// Done marks the final delta for this call.
	Done bool
}

// StreamChunk is one normalized unit of a streamed response: a tagged
// union over the chunk kinds, with the kind-specific payload populated
// and the rest zero.
type StreamChunk struct {
	// Kind selects which payload fields are meaningful.
	Kind ChunkKind

	// Text is the text fragment for ChunkText.
	Text string

	// Reasoning is the reasoning fragment for ChunkReasoning.
	Reasoning string

	// ToolCall is the fragment for ChunkToolCall.
	ToolCall *ToolCallDelta

	// FinishReason explains why the model stopped, for ChunkMessageEnd.
	FinishReason string

	// Usage carries final usage counters, for ChunkMessageEnd.
	Usage *Usage

	// Err is the error message for ChunkError.
	Err string

	// Raw preserves the unrecognized vendor event for ChunkSystem.
	Raw string
}

// ChunkStream delivers normalized StreamChunk values for one streamed
// turn.
//
// The caller must call Close() when done to release resources.
// Recv() should be called in a loop until it returns io.EOF, which
// follows the terminal ChunkMessageEnd or ChunkError chunk.
//
// Thread Safety: ChunkStream is NOT safe for concurrent use.
// Only one goroutine should call Recv() at a time.
//
// Example:
//
//	stream, err := client.AnalyzeStream(ctx, req)
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
type ChunkStream interface {
	// Recv receives the next chunk from the stream.
	//
	// Returns io.EOF when the stream is complete.
	// After receiving io.EOF or any error, subsequent calls will
	// return the same error.
	Recv() (*StreamChunk, error)

	// Close closes the stream and releases resources.
	//
	// It is safe to call Close multiple times.
	// Close must be called even if Recv returns an error.
	Close() error
}
