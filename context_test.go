package slate

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-123")
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
}

func TestGeneratedRequestID(t *testing.T) {
	ctx := WithGeneratedRequestID(context.Background())
	id := RequestIDFromContext(ctx)
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("generated ID = %q, want req_ prefix", id)
	}

	other := RequestIDFromContext(WithGeneratedRequestID(context.Background()))
	if id == other {
		t.Errorf("two generated IDs collided: %q", id)
	}
}

func TestVendorRoundTrip(t *testing.T) {
	ctx := WithVendor(context.Background(), "anthropic")
	if got := VendorFromContext(ctx); got != "anthropic" {
		t.Errorf("VendorFromContext() = %q, want %q", got, "anthropic")
	}
	if got := VendorFromContext(context.Background()); got != "" {
		t.Errorf("VendorFromContext() on empty ctx = %q, want empty", got)
	}
}

func TestModelRoundTrip(t *testing.T) {
	ctx := WithModel(context.Background(), "claude-sonnet-4-5")
	if got := ModelFromContext(ctx); got != "claude-sonnet-4-5" {
		t.Errorf("ModelFromContext() = %q, want %q", got, "claude-sonnet-4-5")
	}
}

func TestStartTimeRoundTrip(t *testing.T) {
	now := time.Now()
	ctx := WithStartTime(context.Background(), now)
	if got := StartTimeFromContext(ctx); !got.Equal(now) {
		t.Errorf("StartTimeFromContext() = %v, want %v", got, now)
	}
	if got := StartTimeFromContext(context.Background()); !got.IsZero() {
		t.Errorf("StartTimeFromContext() on empty ctx = %v, want zero", got)
	}
}
