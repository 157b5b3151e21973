// Package callback provides lifecycle hooks for analysis requests.
//
// Callbacks let callers track, log, and meter requests at the stages
// of the request lifecycle: before dispatch, after success, after
// failure, and per streamed chunk.
//
// Thread Safety: all callback types must be safe for concurrent calls.
// The Registry manages callbacks thread-safely using the snapshot
// pattern.
package callback

import (
	"context"
	"time"
)

// BeforeAnalyzeCallback is called before a built request is dispatched
// to its vendor.
//
// The callback can inspect the event or return an error to abort the
// request. If an error is returned, the request is not sent and the
// error propagates to the caller.
//
// Thread Safety: must be safe for concurrent calls.
type BeforeAnalyzeCallback func(ctx context.Context, event *BeforeAnalyzeEvent) error

// SuccessCallback is called after a vendor response parses cleanly.
//
// Success callbacks are informational only. Errors or panics inside
// them are swallowed, since the call already succeeded.
//
// Thread Safety: must be safe for concurrent calls.
type SuccessCallback func(ctx context.Context, event *SuccessEvent)

// FailureCallback is called after a request fails.
//
// Failure callbacks are informational only. They cannot modify the
// error or prevent it from reaching the caller.
//
// Thread Safety: must be safe for concurrent calls.
type FailureCallback func(ctx context.Context, event *FailureEvent)

// StreamCallback is called for each normalized stream chunk.
//
// Errors and panics are swallowed so a misbehaving callback cannot
// interrupt the stream.
//
// Thread Safety: must be safe for concurrent calls.
type StreamCallback func(ctx context.Context, event *StreamEvent)

// BeforeAnalyzeEvent contains data for before-analyze callbacks.
type BeforeAnalyzeEvent struct {
	// RequestID uniquely identifies this request.
	RequestID string

	// Vendor is the vendor family name (e.g. "openai", "anthropic").
	Vendor string

	// Model is the model name.
	Model string

	// Request is the analysis request being sent.
	// Type: *slate.AnalysisRequest (interface{} to avoid an import cycle).
	Request interface{}

	// StartTime is when the request started.
	StartTime time.Time
}

// SuccessEvent contains data for success callbacks.
type SuccessEvent struct {
	// RequestID uniquely identifies this request.
	RequestID string

	// Vendor is the vendor family name.
	Vendor string

	// Model is the model name.
	Model string

	// Request is the analysis request that was sent.
	// Type: *slate.AnalysisRequest (interface{} to avoid an import cycle).
	Request interface{}

	// Response is the parsed response.
	// Type: *slate.ParsedResponse (interface{} to avoid an import cycle).
	Response interface{}

	// StartTime is when the request started.
	StartTime time.Time

	// EndTime is when the request completed.
	EndTime time.Time

	// Duration is EndTime - StartTime.
	Duration time.Duration

	// Tokens is the total token usage (0 if the vendor reported none).
	Tokens int
}

// FailureEvent contains data for failure callbacks.
type FailureEvent struct {
	// RequestID uniquely identifies this request.
	RequestID string

	// Vendor is the vendor family name.
	Vendor string

	// Model is the model name.
	Model string

	// Request is the analysis request that was sent.
	// Type: *slate.AnalysisRequest (interface{} to avoid an import cycle).
	Request interface{}

	// Error is the error that occurred.
	Error error

	// StartTime is when the request started.
	StartTime time.Time

	// EndTime is when the request failed.
	EndTime time.Time

	// Duration is the elapsed time until failure.
	Duration time.Duration
}

// StreamEvent contains data for streaming callbacks.
type StreamEvent struct {
	// RequestID uniquely identifies this request.
	RequestID string

	// Vendor is the vendor family name.
	Vendor string

	// Model is the model name.
	Model string

	// Chunk is the normalized stream chunk.
	// Type: *slate.StreamChunk (interface{} to avoid an import cycle).
	Chunk interface{}

	// Index is the zero-based index of this chunk in the stream.
	Index int

	// Timestamp is when this chunk was received.
	Timestamp time.Time
}
