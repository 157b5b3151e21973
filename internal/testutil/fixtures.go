package testutil

import (
	"github.com/slate-ai/slate"
	"github.com/slate-ai/slate/types"
)

// AnalysisRequestFixture returns a sample analysis request for testing.
//
// The returned request has sensible defaults and can be modified for
// specific tests.
//
// Example:
//
//	req := testutil.AnalysisRequestFixture()
//	req.Model.Model = "claude-opus-4-5"
//	prep, err := p.Build(req)
func AnalysisRequestFixture() *slate.AnalysisRequest {
	return &slate.AnalysisRequest{
		Model: types.ModelConfig{
			Vendor: types.VendorAnthropic,
			Model:  "claude-sonnet-4-5",
		},
		System: "You review code changes.",
		Prompt: "Review this diff.",
	}
}

// ParsedResponseFixture returns a sample parsed response for testing.
//
// The returned response has all fields populated with realistic data.
func ParsedResponseFixture() *slate.ParsedResponse {
	findings := "No issues found."
	return &slate.ParsedResponse{
		Findings: &findings,
		Usage: &slate.Usage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
	}
}

// ToolFixture returns a sample tool declaration for testing.
func ToolFixture() slate.Tool {
	return slate.Tool{
		Name:        "report_finding",
		Description: "Report a single review finding",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"severity": map[string]any{"type": "string"},
			},
		},
	}
}
