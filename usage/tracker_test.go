package usage

import (
	"sync"
	"testing"

	"github.com/slate-ai/slate"
)

func TestTrackerAccumulates(t *testing.T) {
	tr := NewTracker(0)

	if err := tr.Record("claude-sonnet-4-5", &slate.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tr.Record("claude-sonnet-4-5", &slate.Usage{PromptTokens: 4, CompletionTokens: 1, TotalTokens: 5}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tr.Record("gpt-5", &slate.Usage{TotalTokens: 30}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if got := tr.TotalTokens(); got != 50 {
		t.Errorf("TotalTokens() = %d, want 50", got)
	}

	byModel := tr.ByModel()
	if byModel["claude-sonnet-4-5"].TotalTokens != 20 {
		t.Errorf("claude-sonnet-4-5 total = %d, want 20", byModel["claude-sonnet-4-5"].TotalTokens)
	}
	if byModel["claude-sonnet-4-5"].PromptTokens != 14 {
		t.Errorf("claude-sonnet-4-5 prompt = %d, want 14", byModel["claude-sonnet-4-5"].PromptTokens)
	}
	if byModel["gpt-5"].TotalTokens != 30 {
		t.Errorf("gpt-5 total = %d, want 30", byModel["gpt-5"].TotalTokens)
	}
}

func TestTrackerNilUsageIgnored(t *testing.T) {
	tr := NewTracker(0)

	if err := tr.Record("gpt-5", nil); err != nil {
		t.Fatalf("Record(nil) error = %v", err)
	}
	if got := tr.TotalTokens(); got != 0 {
		t.Errorf("TotalTokens() = %d, want 0", got)
	}
}

func TestTrackerCeiling(t *testing.T) {
	tr := NewTracker(100)

	if err := tr.Record("gpt-5", &slate.Usage{TotalTokens: 90}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tr.Record("gpt-5", &slate.Usage{TotalTokens: 20}); err == nil {
		t.Fatal("Record() expected ceiling error, got nil")
	}

	// The rejected report must not count.
	if got := tr.TotalTokens(); got != 90 {
		t.Errorf("TotalTokens() = %d, want 90", got)
	}

	// A report that fits still lands.
	if err := tr.Record("gpt-5", &slate.Usage{TotalTokens: 10}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got := tr.TotalTokens(); got != 100 {
		t.Errorf("TotalTokens() = %d, want 100", got)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(0)
	_ = tr.Record("gpt-5", &slate.Usage{TotalTokens: 10})

	tr.Reset()

	if got := tr.TotalTokens(); got != 0 {
		t.Errorf("TotalTokens() after Reset = %d, want 0", got)
	}
	if got := len(tr.ByModel()); got != 0 {
		t.Errorf("ByModel() after Reset has %d entries, want 0", got)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Record("gpt-5", &slate.Usage{TotalTokens: 1})
		}()
	}
	wg.Wait()

	if got := tr.TotalTokens(); got != 20 {
		t.Errorf("TotalTokens() = %d, want 20", got)
	}
}
