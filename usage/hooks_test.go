package usage

import (
	"context"
	"testing"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/callback"
)

func TestSuccessHookRecordsUsage(t *testing.T) {
	tr := NewTracker(0)
	r := callback.NewRegistry()
	r.RegisterSuccess(tr.SuccessHook())

	r.ExecuteSuccess(context.Background(), &callback.SuccessEvent{
		Model: "claude-sonnet-4-5",
		Response: &slate.ParsedResponse{
			Usage: &slate.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	})

	if got := tr.TotalTokens(); got != 15 {
		t.Errorf("TotalTokens() = %d, want 15", got)
	}
}

func TestSuccessHookIgnoresForeignResponse(t *testing.T) {
	tr := NewTracker(0)
	hook := tr.SuccessHook()

	hook(context.Background(), &callback.SuccessEvent{Response: "not a response"})
	hook(context.Background(), &callback.SuccessEvent{})

	if got := tr.TotalTokens(); got != 0 {
		t.Errorf("TotalTokens() = %d, want 0", got)
	}
}

func TestBeforeHookAbortsWhenExhausted(t *testing.T) {
	tr := NewTracker(10)
	_ = tr.Record("gpt-5", &slate.Usage{TotalTokens: 10})

	hook := tr.BeforeHook()
	if err := hook(context.Background(), &callback.BeforeAnalyzeEvent{}); err == nil {
		t.Fatal("BeforeHook expected error after ceiling reached, got nil")
	}
}

func TestBeforeHookAllowsUnderBudget(t *testing.T) {
	tr := NewTracker(10)
	_ = tr.Record("gpt-5", &slate.Usage{TotalTokens: 5})

	hook := tr.BeforeHook()
	if err := hook(context.Background(), &callback.BeforeAnalyzeEvent{}); err != nil {
		t.Fatalf("BeforeHook error = %v", err)
	}
}
