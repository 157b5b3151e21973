package provider

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/types"
)

func TestFakeProviderDefaults(t *testing.T) {
	fake := &FakeProvider{}

	if fake.Name() != "fake" {
		t.Errorf("Name() = %q, want %q", fake.Name(), "fake")
	}

	req := &slate.AnalysisRequest{
		Model:  types.ModelConfig{Vendor: types.VendorOpenAI, Model: "gpt-4.1"},
		Prompt: "hello",
	}

	prep, err := fake.Build(req)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prep.Vendor != types.VendorOpenAI || prep.Model != "gpt-4.1" {
		t.Errorf("Build() prep = %+v", prep)
	}
	if len(fake.BuildCalls) != 1 {
		t.Errorf("BuildCalls = %d, want 1", len(fake.BuildCalls))
	}

	resp, err := fake.Analyze(context.Background(), prep)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp == nil {
		t.Fatal("Analyze() returned nil response")
	}

	stream, err := fake.AnalyzeStream(context.Background(), prep)
	if err != nil {
		t.Fatalf("AnalyzeStream() error = %v", err)
	}
	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() on empty stream error = %v, want io.EOF", err)
	}
}

func TestScriptedStreamReplay(t *testing.T) {
	stream := &ScriptedStream{
		Chunks: []*slate.StreamChunk{
			{Kind: slate.ChunkText, Text: "first"},
			{Kind: slate.ChunkMessageEnd, FinishReason: "stop"},
		},
	}

	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if chunk.Text != "first" {
		t.Errorf("Recv() text = %q, want %q", chunk.Text, "first")
	}

	chunk, err = stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if chunk.Kind != slate.ChunkMessageEnd {
		t.Errorf("Recv() kind = %q, want %q", chunk.Kind, slate.ChunkMessageEnd)
	}

	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() after replay error = %v, want io.EOF", err)
	}

	if err := stream.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !stream.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestScriptedStreamError(t *testing.T) {
	wantErr := errors.New("connection reset")
	stream := &ScriptedStream{Err: wantErr}

	if _, err := stream.Recv(); !errors.Is(err, wantErr) {
		t.Errorf("Recv() error = %v, want %v", err, wantErr)
	}
}
