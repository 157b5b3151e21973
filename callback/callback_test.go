package callback

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestLifecycleSuccessPath walks the lifecycle of a successful call:
// before-analyze fires, then success with timing and token totals.
func TestLifecycleSuccessPath(t *testing.T) {
	r := NewRegistry()

	var before, success, failure bool
	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		before = true
		if event.Vendor != "openai" || event.Model != "gpt-5" {
			t.Errorf("before event = %+v", event)
		}
		return nil
	})
	r.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		success = true
		if event.Tokens != 150 {
			t.Errorf("Tokens = %d, want 150", event.Tokens)
		}
		if event.Duration != event.EndTime.Sub(event.StartTime) {
			t.Errorf("Duration = %v inconsistent with start/end", event.Duration)
		}
	})
	r.RegisterFailure(func(ctx context.Context, event *FailureEvent) {
		failure = true
	})

	ctx := context.Background()
	start := time.Now()

	if err := r.ExecuteBeforeAnalyze(ctx, &BeforeAnalyzeEvent{
		RequestID: "req-1",
		Vendor:    "openai",
		Model:     "gpt-5",
		StartTime: start,
	}); err != nil {
		t.Fatalf("ExecuteBeforeAnalyze() error = %v", err)
	}

	end := start.Add(2 * time.Second)
	r.ExecuteSuccess(ctx, &SuccessEvent{
		RequestID: "req-1",
		Vendor:    "openai",
		Model:     "gpt-5",
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Tokens:    150,
	})

	if !before || !success {
		t.Errorf("before = %v, success = %v, want both true", before, success)
	}
	if failure {
		t.Error("failure callback fired on the success path")
	}
}

// TestLifecycleAbort verifies a before-analyze error stops the request
// before any dispatch-side callback is relevant.
func TestLifecycleAbort(t *testing.T) {
	r := NewRegistry()

	abort := errors.New("blocked by policy")
	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		return abort
	})

	err := r.ExecuteBeforeAnalyze(context.Background(), &BeforeAnalyzeEvent{
		Vendor: "anthropic",
		Model:  "claude-sonnet-4-5",
	})
	if err == nil {
		t.Fatal("ExecuteBeforeAnalyze() expected abort error, got nil")
	}
}

func TestLifecycleFailurePath(t *testing.T) {
	r := NewRegistry()

	var got error
	r.RegisterFailure(func(ctx context.Context, event *FailureEvent) {
		got = event.Error
	})

	cause := errors.New("rate limited")
	r.ExecuteFailure(context.Background(), &FailureEvent{
		Vendor: "xai",
		Model:  "grok-4",
		Error:  cause,
	})

	if !errors.Is(got, cause) {
		t.Errorf("failure event error = %v, want %v", got, cause)
	}
}
