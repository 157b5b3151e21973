package provider

import (
	"context"
	"io"

	"github.com/slate-ai/slate"
)

// FakeProvider is a scripted Provider implementation for tests.
//
// Each hook can be set independently; unset hooks return benign
// defaults so tests only script the behavior they care about.
//
// Example:
//
//	fake := &provider.FakeProvider{
//	    ProviderName: "scripted",
//	    AnalyzeFunc: func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
//	        return &slate.ParsedResponse{Findings: slate.StringPtr("ok")}, nil
//	    },
//	}
type FakeProvider struct {
	ProviderName      string
	BuildFunc         func(req *slate.AnalysisRequest) (*slate.PreparedRequest, error)
	AnalyzeFunc       func(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error)
	AnalyzeStreamFunc func(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error)

	// BuildCalls records every request passed to Build.
	BuildCalls []*slate.AnalysisRequest
	// AnalyzeCalls records every prepared request passed to Analyze.
	AnalyzeCalls []*slate.PreparedRequest
	// StreamCalls records every prepared request passed to AnalyzeStream.
	StreamCalls []*slate.PreparedRequest
}

// Name implements Provider.
func (f *FakeProvider) Name() string {
	if f.ProviderName == "" {
		return "fake"
	}
	return f.ProviderName
}

// Build implements Provider.
func (f *FakeProvider) Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error) {
	f.BuildCalls = append(f.BuildCalls, req)
	if f.BuildFunc != nil {
		return f.BuildFunc(req)
	}
	return &slate.PreparedRequest{
		Vendor:  req.Model.Vendor,
		Model:   req.Model.Model,
		Variant: slate.VariantChat,
	}, nil
}

// Analyze implements Provider.
func (f *FakeProvider) Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error) {
	f.AnalyzeCalls = append(f.AnalyzeCalls, prep)
	if f.AnalyzeFunc != nil {
		return f.AnalyzeFunc(ctx, prep)
	}
	return &slate.ParsedResponse{}, nil
}

// AnalyzeStream implements Provider.
func (f *FakeProvider) AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error) {
	f.StreamCalls = append(f.StreamCalls, prep)
	if f.AnalyzeStreamFunc != nil {
		return f.AnalyzeStreamFunc(ctx, prep)
	}
	return &ScriptedStream{}, nil
}

// ScriptedStream is a ChunkStream that replays a fixed chunk sequence.
//
// Recv returns the scripted chunks in order, then Err if set, then
// io.EOF.
type ScriptedStream struct {
	Chunks []*slate.StreamChunk
	Err    error

	pos    int
	closed bool
}

// Recv implements slate.ChunkStream.
func (s *ScriptedStream) Recv() (*slate.StreamChunk, error) {
	if s.pos < len(s.Chunks) {
		chunk := s.Chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, io.EOF
}

// Close implements slate.ChunkStream.
func (s *ScriptedStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *ScriptedStream) Closed() bool {
	return s.closed
}
