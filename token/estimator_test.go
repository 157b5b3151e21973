package token

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slate-ai/slate/internal/testutil"
	"github.com/slate-ai/slate/types"
)

// inputPayload mimics a single-input wire payload.
type inputPayload struct {
	input string
}

func (p *inputPayload) CountingText() []string {
	return []string{p.input}
}

// messagesPayload mimics a role/content message list payload.
type messagesPayload struct {
	segments []string
}

func (p *messagesPayload) CountingText() []string {
	return p.segments
}

// fakeEndpoint is a scripted vendor counting endpoint.
type fakeEndpoint struct {
	tokens int
	err    error
	calls  int
}

func (f *fakeEndpoint) CountTokens(ctx context.Context, model, text string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.tokens, nil
}

func heuristicConfig() types.ModelConfig {
	return types.ModelConfig{
		Vendor:    types.VendorOpenAI,
		Model:     "gpt-5",
		Estimator: types.EstimatorHeuristic,
	}
}

func TestHeuristicEstimate(t *testing.T) {
	assert := testutil.New(t)
	est := NewEstimator()

	// 4 chars -> ceil(4/4) == 1
	r := est.Estimate(context.Background(), heuristicConfig(), &inputPayload{input: "abcd"})
	assert.NotNil(r.Tokens)
	assert.Equal(1, *r.Tokens)
	assert.Equal("heuristic", r.Provenance)
	assert.Equal("", r.Err)

	// 5 chars -> ceil(5/4) == 2
	r = est.EstimateText(context.Background(), heuristicConfig(), "abcde")
	assert.Equal(2, *r.Tokens)
}

func TestHeuristicNeverFails(t *testing.T) {
	assert := testutil.New(t)
	est := NewEstimator()

	r := est.EstimateText(context.Background(), heuristicConfig(), "")
	assert.NotNil(r.Tokens)
	assert.Equal(0, *r.Tokens)
}

func TestFlattenJoinsWithNewlines(t *testing.T) {
	assert := testutil.New(t)

	text := Flatten(&messagesPayload{segments: []string{"system: be brief", "user: hello"}})
	assert.Equal("system: be brief\nuser: hello", text)

	assert.Equal("", Flatten(nil))
}

func TestVendorExactEstimate(t *testing.T) {
	assert := testutil.New(t)

	ep := &fakeEndpoint{tokens: 1234}
	est := NewEstimator(WithEndpoint(types.VendorAnthropic, ep))

	cfg := types.ModelConfig{
		Vendor:    types.VendorAnthropic,
		Model:     "claude-sonnet-4-5",
		Estimator: types.EstimatorAnthropicAPI,
	}

	r := est.Estimate(context.Background(), cfg, &messagesPayload{segments: []string{"user: count me"}})
	assert.Equal(1234, *r.Tokens)
	assert.Equal("anthropic_api", r.Provenance)
	assert.Equal(1, ep.calls)
}

func TestVendorExactFailure(t *testing.T) {
	assert := testutil.New(t)

	ep := &fakeEndpoint{err: errors.New("connection refused")}
	est := NewEstimator(WithEndpoint(types.VendorGemini, ep))

	cfg := types.ModelConfig{
		Vendor:    types.VendorGemini,
		Model:     "gemini-2.5-pro",
		Estimator: types.EstimatorGeminiAPI,
	}

	r := est.EstimateText(context.Background(), cfg, "some text")
	assert.Nil(r.Tokens)
	assert.Equal("gemini_api_error", r.Provenance)
	assert.Contains(r.Err, "connection refused")
}

func TestVendorExactNoEndpoint(t *testing.T) {
	assert := testutil.New(t)
	est := NewEstimator()

	cfg := types.ModelConfig{
		Vendor:    types.VendorAnthropic,
		Model:     "claude-sonnet-4-5",
		Estimator: types.EstimatorAnthropicAPI,
	}

	r := est.EstimateText(context.Background(), cfg, "text")
	assert.Nil(r.Tokens)
	assert.Equal("anthropic_api_error", r.Provenance)
	assert.Contains(r.Err, "no counting endpoint")
}

func TestLocalEstimate(t *testing.T) {
	assert := testutil.New(t)
	est := NewEstimator()

	cfg := types.ModelConfig{
		Vendor:    types.VendorOpenAI,
		Model:     "gpt-4.1",
		Estimator: types.EstimatorLocal,
	}

	text := strings.Repeat("analysis of the source material ", 20)
	r := est.EstimateText(context.Background(), cfg, text)
	assert.NotNil(r.Tokens)
	assert.Equal("local", r.Provenance)
	assert.True(*r.Tokens > 0)
}

func TestLocalTokenizerUnavailable(t *testing.T) {
	assert := testutil.New(t)
	est := NewEstimator(WithCounter(nil))

	cfg := types.ModelConfig{
		Vendor:    types.VendorOpenAI,
		Model:     "gpt-4.1",
		Estimator: types.EstimatorLocal,
	}

	r := est.EstimateText(context.Background(), cfg, "text")
	assert.Nil(r.Tokens)
	assert.Equal(ProvenanceTokenizerUnavailable, r.Provenance)
}

func TestCounterApproximation(t *testing.T) {
	assert := testutil.New(t)
	c := NewCounter()

	assert.Equal(0, c.CountText(""))
	assert.True(c.CountText("hello world, this is a test") > 0)

	// Long-word text uses the pure char/4 estimate.
	long := strings.Repeat("internationalization ", 10)
	assert.Equal(len(long)/4, c.CountText(long))
}

func TestForModel(t *testing.T) {
	assert := testutil.New(t)

	c, err := ForModel("gpt-5-mini")
	assert.NoError(err)
	assert.NotNil(c)

	_, err = ForModel("")
	assert.Error(err)
	assert.True(errors.Is(err, ErrNoEncoding))
}

func TestHeuristicCount(t *testing.T) {
	assert := testutil.New(t)

	assert.Equal(0, HeuristicCount(""))
	assert.Equal(1, HeuristicCount("abcd"))
	assert.Equal(2, HeuristicCount("abcde"))
	assert.Equal(3, HeuristicCount("123456789"))
}
