package slate

import (
	"context"
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyRequestID contextKey = "slate_request_id"
	contextKeyVendor    contextKey = "slate_vendor"
	contextKeyModel     contextKey = "slate_model"
	contextKeyStartTime contextKey = "slate_start_time"
)

// WithRequestID adds a request ID to the context.
//
// The client honors a caller-supplied request ID for callback events
// instead of generating one, so external correlation IDs survive into
// hooks and logs.
//
// Example:
//
//	ctx = slate.WithRequestID(ctx, "req-123")
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext retrieves the request ID from the context.
//
// Returns an empty string if no request ID is found.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithGeneratedRequestID adds a generated request ID to the context.
//
// The generated ID includes a timestamp and random component to ensure
// uniqueness.
func WithGeneratedRequestID(ctx context.Context) context.Context {
	return WithRequestID(ctx, generateRequestID())
}

// generateRequestID generates a unique request ID.
//
// The ID format is req_<timestamp>_<random_hex>. If crypto/rand fails
// (rare but possible), falls back to math/rand so IDs stay unique.
func generateRequestID() string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)

	_, err := rand.Read(randomBytes)
	if err != nil {
		for i := range randomBytes {
			randomBytes[i] = byte(mathrand.Intn(256))
		}
	}

	return fmt.Sprintf("req_%d_%x", timestamp, randomBytes)
}

// WithVendor adds the vendor family name to the context.
//
// Example:
//
//	ctx = slate.WithVendor(ctx, "anthropic")
func WithVendor(ctx context.Context, vendor string) context.Context {
	return context.WithValue(ctx, contextKeyVendor, vendor)
}

// VendorFromContext retrieves the vendor family name from the context.
//
// Returns an empty string if no vendor is found.
func VendorFromContext(ctx context.Context) string {
	if vendor, ok := ctx.Value(contextKeyVendor).(string); ok {
		return vendor
	}
	return ""
}

// WithModel adds the model name to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, contextKeyModel, model)
}

// ModelFromContext retrieves the model name from the context.
//
// Returns an empty string if no model is found.
func ModelFromContext(ctx context.Context) string {
	if model, ok := ctx.Value(contextKeyModel).(string); ok {
		return model
	}
	return ""
}

// WithStartTime adds the request start time to the context.
//
// Used internally to track request latency.
func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyStartTime, t)
}

// StartTimeFromContext retrieves the start time from the context.
//
// Returns the zero time if no start time is found; use
// time.Time.IsZero to check.
func StartTimeFromContext(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyStartTime).(time.Time); ok {
		return t
	}
	return time.Time{}
}
