package slate_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/callback"
	"github.com/slate-ai/slate/provider"
	"github.com/slate-ai/slate/types"
)

func newTestClient(t *testing.T, opts ...slate.ClientOption) *slate.Client {
	t.Helper()
	c, err := slate.NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func anthropicRequest() *slate.AnalysisRequest {
	return &slate.AnalysisRequest{
		Model:  types.ModelConfig{Vendor: types.VendorAnthropic, Model: "claude-sonnet-4-5"},
		Prompt: "hello",
	}
}

func TestNewClientRejectsBadRetryConfig(t *testing.T) {
	if _, err := slate.NewClient(slate.WithRetries(-1, time.Second, 2.0)); err == nil {
		t.Error("negative retries accepted")
	}
	if _, err := slate.NewClient(slate.WithRetries(3, time.Second, 0.5)); err == nil {
		t.Error("sub-1.0 multiplier accepted")
	}
}

func TestClientRegisterProvider(t *testing.T) {
	c := newTestClient(t)

	fake := &provider.FakeProvider{ProviderName: "anthropic"}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}
	if err := c.RegisterProvider(fake); err == nil {
		t.Error("duplicate registration accepted")
	}
	if err := c.RegisterProvider(nil); err == nil {
		t.Error("nil provider accepted")
	}
}

func TestClientAnalyzeUnknownVendor(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.Analyze(context.Background(), anthropicRequest()); err == nil {
		t.Fatal("Analyze() with no registered provider expected error, got nil")
	}
}

func TestClientAnalyzeBuildErrorIsEager(t *testing.T) {
	c := newTestClient(t)

	verr := slate.NewValidationError("bad reasoning mode", "anthropic", "claude-sonnet-4-5")
	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		BuildFunc: func(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
			return nil, verr
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	_, err := c.Analyze(context.Background(), anthropicRequest())
	var got *slate.ValidationError
	if !errors.As(err, &got) {
		t.Fatalf("Analyze() error = %v, want ValidationError", err)
	}
	if len(fake.AnalyzeCalls) != 0 {
		t.Error("Analyze dispatched despite build error")
	}
}

func TestClientAnalyzeFoldsTransportError(t *testing.T) {
	c := newTestClient(t, slate.WithRetries(0, 0, 0))

	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
			return nil, slate.NewAuthenticationError("bad key", "anthropic", nil)
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	resp, err := c.Analyze(context.Background(), anthropicRequest())
	if err != nil {
		t.Fatalf("Analyze() error = %v, want folded response", err)
	}
	if resp.Err == "" {
		t.Error("transport error not folded into Err")
	}
	if resp.Findings != nil {
		t.Errorf("Findings = %v, want nil", resp.Findings)
	}
}

func TestClientAnalyzeRetriesRetryableErrors(t *testing.T) {
	c := newTestClient(t, slate.WithRetries(2, time.Millisecond, 1.0))

	attempts := 0
	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
			attempts++
			if attempts < 3 {
				return nil, slate.NewRateLimitError("slow down", "anthropic", 0, nil)
			}
			return &slate.ParsedResponse{Findings: slate.StringPtr("ok")}, nil
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	resp, err := c.Analyze(context.Background(), anthropicRequest())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClientAnalyzeDoesNotRetryValidation(t *testing.T) {
	c := newTestClient(t, slate.WithRetries(3, time.Millisecond, 1.0))

	attempts := 0
	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
			attempts++
			return nil, slate.NewBadRequestError("malformed", "anthropic", nil)
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	if _, err := c.Analyze(context.Background(), anthropicRequest()); err != nil {
		t.Fatalf("Analyze() error = %v, want folded response", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 400)", attempts)
	}
}

func TestClientCallbacksFireOnSuccess(t *testing.T) {
	c := newTestClient(t)

	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
			return &slate.ParsedResponse{
				Findings: slate.StringPtr("done"),
				Usage:    &slate.Usage{TotalTokens: 25},
			}, nil
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	var before, success bool
	c.Callbacks().RegisterBeforeAnalyze(func(ctx context.Context, event *callback.BeforeAnalyzeEvent) error {
		before = true
		if event.Vendor != "anthropic" {
			t.Errorf("Vendor = %q", event.Vendor)
		}
		return nil
	})
	c.Callbacks().RegisterSuccess(func(ctx context.Context, event *callback.SuccessEvent) {
		success = true
		if event.Tokens != 25 {
			t.Errorf("Tokens = %d, want 25", event.Tokens)
		}
	})

	if _, err := c.Analyze(context.Background(), anthropicRequest()); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !before || !success {
		t.Errorf("before = %v, success = %v, want both true", before, success)
	}
}

func TestClientCallbackAbortStopsDispatch(t *testing.T) {
	c := newTestClient(t)

	fake := &provider.FakeProvider{ProviderName: "anthropic"}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	c.Callbacks().RegisterBeforeAnalyze(func(ctx context.Context, event *callback.BeforeAnalyzeEvent) error {
		return errors.New("blocked")
	})

	if _, err := c.Analyze(context.Background(), anthropicRequest()); err == nil {
		t.Fatal("Analyze() expected abort error, got nil")
	}
	if len(fake.AnalyzeCalls) != 0 {
		t.Error("Analyze dispatched despite callback abort")
	}
}

func TestClientCallbacksFireOnFailure(t *testing.T) {
	c := newTestClient(t, slate.WithRetries(0, 0, 0))

	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
			return nil, slate.NewServiceUnavailableError("down", "anthropic", nil)
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	var failed error
	c.Callbacks().RegisterFailure(func(ctx context.Context, event *callback.FailureEvent) {
		failed = event.Error
	})

	if _, err := c.Analyze(context.Background(), anthropicRequest()); err != nil {
		t.Fatalf("Analyze() error = %v, want folded response", err)
	}
	if failed == nil {
		t.Error("failure callback did not fire")
	}
}

func TestClientAnalyzeStreamFiresStreamCallbacks(t *testing.T) {
	c := newTestClient(t)

	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeStreamFunc: func(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
			return &provider.ScriptedStream{
				Chunks: []*slate.StreamChunk{
					{Kind: slate.ChunkText, Text: "hel"},
					{Kind: slate.ChunkText, Text: "lo"},
					{Kind: slate.ChunkMessageEnd, FinishReason: "stop"},
				},
			}, nil
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	var indexes []int
	c.Callbacks().RegisterStream(func(ctx context.Context, event *callback.StreamEvent) {
		indexes = append(indexes, event.Index)
	})

	stream, err := c.AnalyzeStream(context.Background(), anthropicRequest())
	if err != nil {
		t.Fatalf("AnalyzeStream() error = %v", err)
	}
	defer stream.Close()

	var text string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if chunk.Kind == slate.ChunkText {
			text += chunk.Text
		}
	}

	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
	if len(indexes) != 3 || indexes[2] != 2 {
		t.Errorf("stream callback indexes = %v, want [0 1 2]", indexes)
	}
}

func TestClientAnalyzeStreamConnectionErrorReturned(t *testing.T) {
	c := newTestClient(t, slate.WithRetries(0, 0, 0))

	fake := &provider.FakeProvider{
		ProviderName: "anthropic",
		AnalyzeStreamFunc: func(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
			return nil, slate.NewAuthenticationError("bad key", "anthropic", nil)
		},
	}
	if err := c.RegisterProvider(fake); err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	if _, err := c.AnalyzeStream(context.Background(), anthropicRequest()); err == nil {
		t.Fatal("AnalyzeStream() expected connection error, got nil")
	}
}
