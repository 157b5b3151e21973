// Package provider defines the interface that all vendor families
// implement and the registry that maps a configured vendor identifier
// to its implementation.
//
// Each vendor family (openai, anthropic, gemini, xai, deepseek)
// implements the Provider interface: build a wire payload from the
// canonical request intent, execute it synchronously or as a stream,
// and normalize the result back into the canonical shapes.
package provider

import (
	"context"

	"github.com/slate-ai/slate"
)

// Provider is the uniform interface over the five vendor families.
//
// Thread Safety: Implementations must be safe for concurrent use.
// Multiple goroutines may call methods on the same Provider instance
// simultaneously.
//
// Example:
//
//	p, err := anthropic.NewProvider(anthropic.WithAPIKey("sk-ant-..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prep, err := p.Build(&slate.AnalysisRequest{
//	    Model:  cfg,
//	    Prompt: "Analyze this.",
//	})
//	if err != nil {
//	    log.Fatal(err) // misconfiguration caught before any network call
//	}
//
//	resp, err := p.Analyze(ctx, prep)
type Provider interface {
	// Name returns the vendor family name (e.g. "openai", "anthropic").
	//
	// The name is lowercase and unique; it is the registry key.
	Name() string

	// Build converts a canonical request intent into this vendor's
	// wire payload.
	//
	// Validation errors (an unsupported reasoning mode or effort tier
	// for the selected model) are returned here, eagerly, as
	// *slate.ValidationError - before any network cost is paid.
	Build(req *slate.AnalysisRequest) (*slate.PreparedRequest, error)

	// Analyze executes a prepared request synchronously and parses the
	// vendor's response into the canonical shape.
	//
	// Transport owns no business logic: no retries, no content
	// interpretation. Timeouts surface as ordinary errors.
	Analyze(ctx context.Context, prep *slate.PreparedRequest) (*slate.ParsedResponse, error)

	// AnalyzeStream executes a prepared request as a stream of
	// normalized chunks.
	//
	// The returned stream must be closed by the caller. The chunk
	// sequence terminates with exactly one message-end or error chunk,
	// followed by io.EOF from Recv.
	AnalyzeStream(ctx context.Context, prep *slate.PreparedRequest) (slate.ChunkStream, error)
}
