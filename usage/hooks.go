package usage

import (
	"context"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/callback"
)

// SuccessHook returns a success callback that records each response's
// usage under the event's model.
//
// Ceiling violations cannot abort a call that already succeeded; pair
// with BeforeHook to stop subsequent calls once the budget is spent.
func (t *Tracker) SuccessHook() callback.SuccessCallback {
	return func(ctx context.Context, event *callback.SuccessEvent) {
		resp, ok := event.Response.(*slate.ParsedResponse)
		if !ok || resp == nil {
			return
		}
		_ = t.Record(event.Model, resp.Usage)
	}
}

// BeforeHook returns a before-analyze callback that aborts requests
// once the tracker's ceiling is reached.
func (t *Tracker) BeforeHook() callback.BeforeAnalyzeCallback {
	return func(ctx context.Context, event *callback.BeforeAnalyzeEvent) error {
		return t.CheckBudget()
	}
}

// CheckBudget returns an error when a configured ceiling has been
// reached.
func (t *Tracker) CheckBudget() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.maxTokens > 0 && t.totalTokens >= t.maxTokens {
		return slate.NewValidationError("token budget exhausted", "", "")
	}
	return nil
}
