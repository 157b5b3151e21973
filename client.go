package slate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/slate-ai/slate/callback"
)

// Provider is the minimal interface the client needs to drive a vendor
// package. The full interface with registry support lives in the
// provider package; the two are kept separate to avoid an import
// cycle.
type Provider interface {
	// Name returns the vendor family name (e.g. "openai", "anthropic").
	Name() string

	// Build transforms a request intent into a vendor-shaped payload.
	Build(req *AnalysisRequest) (*PreparedRequest, error)

	// Analyze sends a prepared request and parses the response.
	Analyze(ctx context.Context, prep *PreparedRequest) (*ParsedResponse, error)

	// AnalyzeStream sends a prepared request with streaming enabled.
	AnalyzeStream(ctx context.Context, prep *PreparedRequest) (ChunkStream, error)
}

// Client dispatches analysis requests to registered vendor providers.
//
// The client owns the cross-vendor concerns: provider lookup by the
// model config's vendor, retry with exponential backoff on retryable
// errors, lifecycle callbacks, and folding transport errors into the
// canonical ParsedResponse shape.
//
// Thread Safety: Client is safe for concurrent use from multiple
// goroutines.
//
// Example:
//
//	client, err := slate.NewClient()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, _ := anthropic.NewProvider(anthropic.WithAPIKey("sk-ant-..."))
//	client.RegisterProvider(p)
//
//	resp, err := client.Analyze(ctx, req)
type Client struct {
	providers       map[string]Provider
	maxRetries      int
	retryDelay      time.Duration
	retryMultiplier float64
	callbacks       *callback.Registry
	logger          *slog.Logger
	mu              sync.RWMutex
	randMu          sync.Mutex
	randSrc         *rand.Rand
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetries configures retry behavior for retryable transport
// errors. maxRetries of 0 disables retries.
func WithRetries(maxRetries int, delay time.Duration, multiplier float64) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
		c.retryMultiplier = multiplier
	}
}

// WithCallbacks sets the lifecycle callback registry.
func WithCallbacks(r *callback.Registry) ClientOption {
	return func(c *Client) {
		c.callbacks = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new client.
//
// Providers must be registered with RegisterProvider before the first
// request; registration lives outside the constructor to avoid import
// cycles between this package and the vendor packages.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		providers:       make(map[string]Provider),
		maxRetries:      2,
		retryDelay:      500 * time.Millisecond,
		retryMultiplier: 2.0,
		callbacks:       callback.NewRegistry(),
		logger:          slog.Default(),
		randSrc:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxRetries < 0 {
		return nil, fmt.Errorf("maxRetries cannot be negative: %d", c.maxRetries)
	}
	if c.maxRetries > 0 && c.retryMultiplier < 1.0 {
		return nil, fmt.Errorf("retryMultiplier must be >= 1.0: %v", c.retryMultiplier)
	}

	return c, nil
}

// RegisterProvider registers a vendor provider.
//
// Example:
//
//	p, err := openai.NewProvider(openai.WithAPIKey("sk-..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.RegisterProvider(p); err != nil {
//	    log.Fatal(err)
//	}
func (c *Client) RegisterProvider(p Provider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}

	c.providers[name] = p
	return nil
}

// Callbacks returns the client's callback registry for registering
// lifecycle hooks.
func (c *Client) Callbacks() *callback.Registry {
	return c.callbacks
}

// Analyze builds, dispatches, and parses one analysis request.
//
// Build-time misconfiguration (unknown vendor, unsupported reasoning
// mode) and callback aborts are returned as errors before any network
// traffic. Transport and vendor errors after dispatch are folded into
// ParsedResponse.Err instead, so callers handle one failure shape per
// completed call.
func (c *Client) Analyze(ctx context.Context, req *AnalysisRequest) (*ParsedResponse, error) {
	p, prep, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	requestID := c.requestID(ctx)
	start := time.Now()

	if err := c.callbacks.ExecuteBeforeAnalyze(ctx, &callback.BeforeAnalyzeEvent{
		RequestID: requestID,
		Vendor:    string(prep.Vendor),
		Model:     prep.Model,
		Request:   req,
		StartTime: start,
	}); err != nil {
		return nil, err
	}

	var resp *ParsedResponse
	err = c.withRetry(ctx, func() error {
		var aerr error
		resp, aerr = p.Analyze(ctx, prep)
		return aerr
	})

	end := time.Now()
	if err != nil {
		c.callbacks.ExecuteFailure(ctx, &callback.FailureEvent{
			RequestID: requestID,
			Vendor:    string(prep.Vendor),
			Model:     prep.Model,
			Request:   req,
			Error:     err,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		})
		c.logger.Error("analyze failed",
			"vendor", prep.Vendor,
			"model", prep.Model,
			"error", err)
		return &ParsedResponse{Err: err.Error()}, nil
	}

	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	c.callbacks.ExecuteSuccess(ctx, &callback.SuccessEvent{
		RequestID: requestID,
		Vendor:    string(prep.Vendor),
		Model:     prep.Model,
		Request:   req,
		Response:  resp,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Tokens:    tokens,
	})

	return resp, nil
}

// AnalyzeStream builds and dispatches one streaming analysis request.
//
// Build-time misconfiguration and callback aborts are returned as
// errors, as are connection failures (no canonical chunk boundary
// exists before the stream opens). Once the stream is open, vendor
// errors arrive as ChunkError chunks.
//
// The caller must close the returned stream.
func (c *Client) AnalyzeStream(ctx context.Context, req *AnalysisRequest) (ChunkStream, error) {
	p, prep, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	requestID := c.requestID(ctx)
	start := time.Now()

	if err := c.callbacks.ExecuteBeforeAnalyze(ctx, &callback.BeforeAnalyzeEvent{
		RequestID: requestID,
		Vendor:    string(prep.Vendor),
		Model:     prep.Model,
		Request:   req,
		StartTime: start,
	}); err != nil {
		return nil, err
	}

	var stream ChunkStream
	err = c.withRetry(ctx, func() error {
		var serr error
		stream, serr = p.AnalyzeStream(ctx, prep)
		return serr
	})
	if err != nil {
		end := time.Now()
		c.callbacks.ExecuteFailure(ctx, &callback.FailureEvent{
			RequestID: requestID,
			Vendor:    string(prep.Vendor),
			Model:     prep.Model,
			Request:   req,
			Error:     err,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		})
		return nil, err
	}

	return &callbackStream{
		inner:     stream,
		callbacks: c.callbacks,
		ctx:       ctx,
		requestID: requestID,
		vendor:    string(prep.Vendor),
		model:     prep.Model,
	}, nil
}

// prepare resolves the provider for the request's vendor and builds
// the vendor payload.
func (c *Client) prepare(req *AnalysisRequest) (Provider, *PreparedRequest, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("request cannot be nil")
	}

	p, err := c.getProvider(string(req.Model.Vendor))
	if err != nil {
		return nil, nil, err
	}

	prep, err := p.Build(req)
	if err != nil {
		return nil, nil, err
	}

	return p, prep, nil
}

// getProvider retrieves a provider by vendor name.
func (c *Client) getProvider(name string) (Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, exists := c.providers[name]
	if !exists {
		return nil, fmt.Errorf("no provider registered for vendor %q", name)
	}

	return p, nil
}

// requestID returns the caller-supplied correlation ID from ctx, or
// generates one.
func (c *Client) requestID(ctx context.Context) string {
	if id := RequestIDFromContext(ctx); id != "" {
		return id
	}
	return generateRequestID()
}

// withRetry executes fn with retry on retryable errors.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if attempt == c.maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, err)
		}

		delay := c.calculateDelay(attempt)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// calculateDelay computes the backoff delay for a retry attempt with
// +/-10% jitter, capped at 60 seconds.
func (c *Client) calculateDelay(attempt int) time.Duration {
	delay := float64(c.retryDelay) * math.Pow(c.retryMultiplier, float64(attempt))

	c.randMu.Lock()
	jitter := c.randSrc.Float64()*0.2 - 0.1
	c.randMu.Unlock()
	delay = delay * (1.0 + jitter)

	if delay > 60*float64(time.Second) {
		delay = 60 * float64(time.Second)
	}

	return time.Duration(delay)
}

// isRetryable checks if an error represents a transient condition.
func isRetryable(err error) bool {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}

	var serviceErr *ServiceUnavailableError
	if errors.As(err, &serviceErr) {
		return true
	}

	type retryable interface {
		IsRetryable() bool
	}

	var retryableErr retryable
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}

	return false
}

// callbackStream wraps a vendor stream and fires stream callbacks per
// chunk.
type callbackStream struct {
	inner     ChunkStream
	callbacks *callback.Registry
	ctx       context.Context
	requestID string
	vendor    string
	model     string
	index     int
}

func (s *callbackStream) Recv() (*StreamChunk, error) {
	chunk, err := s.inner.Recv()
	if err != nil {
		return nil, err
	}

	s.callbacks.ExecuteStream(s.ctx, &callback.StreamEvent{
		RequestID: s.requestID,
		Vendor:    s.vendor,
		Model:     s.model,
		Chunk:     chunk,
		Index:     s.index,
		Timestamp: time.Now(),
	})
	s.index++

	return chunk, nil
}

func (s *callbackStream) Close() error {
	return s.inner.Close()
}
