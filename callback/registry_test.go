package callback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistryExecutionOrder(t *testing.T) {
	r := NewRegistry()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
			order = append(order, i)
			return nil
		})
	}

	if err := r.ExecuteBeforeAnalyze(context.Background(), &BeforeAnalyzeEvent{}); err != nil {
		t.Fatalf("ExecuteBeforeAnalyze() error = %v", err)
	}

	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestRegistryBeforeAnalyzeAggregatesErrors(t *testing.T) {
	r := NewRegistry()

	var ran int
	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		ran++
		return errors.New("first")
	})
	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		ran++
		return errors.New("second")
	})

	err := r.ExecuteBeforeAnalyze(context.Background(), &BeforeAnalyzeEvent{})
	if err == nil {
		t.Fatal("ExecuteBeforeAnalyze() expected error, got nil")
	}
	if ran != 2 {
		t.Errorf("callbacks ran = %d, want 2 (execution continues past errors)", ran)
	}
}

func TestRegistryBeforeAnalyzeRecoversPanic(t *testing.T) {
	r := NewRegistry()

	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		panic("boom")
	})

	if err := r.ExecuteBeforeAnalyze(context.Background(), &BeforeAnalyzeEvent{}); err == nil {
		t.Fatal("ExecuteBeforeAnalyze() expected error from panic, got nil")
	}
}

func TestRegistryNilCallbackIgnored(t *testing.T) {
	r := NewRegistry()

	r.RegisterBeforeAnalyze(nil)
	r.RegisterSuccess(nil)
	r.RegisterFailure(nil)
	r.RegisterStream(nil)

	if err := r.ExecuteBeforeAnalyze(context.Background(), &BeforeAnalyzeEvent{}); err != nil {
		t.Errorf("ExecuteBeforeAnalyze() error = %v", err)
	}
	r.ExecuteSuccess(context.Background(), &SuccessEvent{})
	r.ExecuteFailure(context.Background(), &FailureEvent{})
	r.ExecuteStream(context.Background(), &StreamEvent{})
}

func TestRegistrySuccessSwallowsPanic(t *testing.T) {
	r := NewRegistry()

	var after bool
	r.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		panic("boom")
	})
	r.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {
		after = true
	})

	r.ExecuteSuccess(context.Background(), &SuccessEvent{})
	if !after {
		t.Error("panic in one success callback stopped the next")
	}
}

func TestRegistryContextCancellation(t *testing.T) {
	r := NewRegistry()

	r.RegisterBeforeAnalyze(func(ctx context.Context, event *BeforeAnalyzeEvent) error {
		t.Error("callback ran despite cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.ExecuteBeforeAnalyze(ctx, &BeforeAnalyzeEvent{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteBeforeAnalyze() error = %v, want context.Canceled", err)
	}
}

func TestRegistryStreamReceivesChunks(t *testing.T) {
	r := NewRegistry()

	var indexes []int
	r.RegisterStream(func(ctx context.Context, event *StreamEvent) {
		indexes = append(indexes, event.Index)
	})

	for i := 0; i < 3; i++ {
		r.ExecuteStream(context.Background(), &StreamEvent{
			Vendor:    "anthropic",
			Model:     "claude-sonnet-4-5",
			Index:     i,
			Timestamp: time.Now(),
		})
	}

	if len(indexes) != 3 || indexes[2] != 2 {
		t.Errorf("indexes = %v, want [0 1 2]", indexes)
	}
}

func TestRegistryConcurrentRegisterAndExecute(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.RegisterSuccess(func(ctx context.Context, event *SuccessEvent) {})
		}()
		go func() {
			defer wg.Done()
			r.ExecuteSuccess(context.Background(), &SuccessEvent{})
		}()
	}
	wg.Wait()
}
