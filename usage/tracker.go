// Package usage tracks token consumption across analysis calls.
//
// The Tracker aggregates the usage counters vendors report, keyed by
// model, and can enforce an optional total-token ceiling so a batch
// run fails fast instead of burning through a quota.
package usage

import (
	"fmt"
	"sync"

	"github.com/slate-ai/slate"
)

// Tracker accumulates reported token usage.
//
// Thread Safety: Tracker is safe for concurrent use.
type Tracker struct {
	maxTokens   int
	totalTokens int
	byModel     map[string]slate.Usage
	mu          sync.RWMutex
}

// NewTracker creates a usage tracker.
//
// maxTokens of 0 means no limit.
func NewTracker(maxTokens int) *Tracker {
	return &Tracker{
		maxTokens: maxTokens,
		byModel:   make(map[string]slate.Usage),
	}
}

// Record adds a usage report for model.
//
// A nil usage is a no-op. Returns an error when the recorded total
// would exceed the configured ceiling; the report is not recorded in
// that case.
func (t *Tracker) Record(model string, u *slate.Usage) error {
	if u == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	newTotal := t.totalTokens + u.TotalTokens
	if t.maxTokens > 0 && newTotal > t.maxTokens {
		return fmt.Errorf("token budget exceeded: used=%d, max=%d, attempted=%d",
			t.totalTokens, t.maxTokens, u.TotalTokens)
	}

	t.totalTokens = newTotal

	m := t.byModel[model]
	m.PromptTokens += u.PromptTokens
	m.CompletionTokens += u.CompletionTokens
	m.TotalTokens += u.TotalTokens
	t.byModel[model] = m

	return nil
}

// TotalTokens returns the total tokens recorded so far.
func (t *Tracker) TotalTokens() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalTokens
}

// ByModel returns a copy of the per-model usage breakdown.
func (t *Tracker) ByModel() map[string]slate.Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]slate.Usage, len(t.byModel))
	for k, v := range t.byModel {
		out[k] = v
	}
	return out
}

// Reset clears all recorded usage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalTokens = 0
	t.byModel = make(map[string]slate.Usage)
}
