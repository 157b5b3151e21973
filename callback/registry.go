package callback

import (
	"context"
	"fmt"
	"sync"
)

// Registry manages registered callbacks for the request lifecycle.
//
// The Registry uses the snapshot pattern for execution: callbacks are
// copied under a read lock before running, so registration never
// contends with a slow callback.
//
// Thread Safety: safe for concurrent use.
type Registry struct {
	beforeAnalyze []BeforeAnalyzeCallback
	success       []SuccessCallback
	failure       []FailureCallback
	stream        []StreamCallback
	mu            sync.RWMutex
}

// NewRegistry creates a new callback registry with no callbacks.
func NewRegistry() *Registry {
	return &Registry{
		beforeAnalyze: make([]BeforeAnalyzeCallback, 0),
		success:       make([]SuccessCallback, 0),
		failure:       make([]FailureCallback, 0),
		stream:        make([]StreamCallback, 0),
	}
}

// RegisterBeforeAnalyze registers a before-analyze callback.
//
// Callbacks run in registration order. A nil callback is a no-op.
func (r *Registry) RegisterBeforeAnalyze(cb BeforeAnalyzeCallback) {
	if cb == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.beforeAnalyze = append(r.beforeAnalyze, cb)
}

// RegisterSuccess registers a success callback.
//
// Callbacks run in registration order. A nil callback is a no-op.
func (r *Registry) RegisterSuccess(cb SuccessCallback) {
	if cb == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.success = append(r.success, cb)
}

// RegisterFailure registers a failure callback.
//
// Callbacks run in registration order. A nil callback is a no-op.
func (r *Registry) RegisterFailure(cb FailureCallback) {
	if cb == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.failure = append(r.failure, cb)
}

// RegisterStream registers a streaming callback.
//
// Callbacks run in registration order. A nil callback is a no-op.
func (r *Registry) RegisterStream(cb StreamCallback) {
	if cb == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stream = append(r.stream, cb)
}

// ExecuteBeforeAnalyze executes all before-analyze callbacks.
//
// Callbacks run sequentially in registration order. If any callback
// returns an error, execution continues and all errors are returned
// aggregated; the caller treats a non-nil result as an abort. Context
// cancellation is checked before each callback, and panics are
// recovered into errors.
func (r *Registry) ExecuteBeforeAnalyze(ctx context.Context, event *BeforeAnalyzeEvent) error {
	r.mu.RLock()
	callbacks := make([]BeforeAnalyzeCallback, len(r.beforeAnalyze))
	copy(callbacks, r.beforeAnalyze)
	r.mu.RUnlock()

	if len(callbacks) == 0 {
		return nil
	}

	var errs []error

	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := func() (callbackErr error) {
			defer func() {
				if r := recover(); r != nil {
					callbackErr = fmt.Errorf("callback panic: %v", r)
				}
			}()

			return cb(ctx, event)
		}(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("before-analyze callbacks failed: %v", errs)
	}

	return nil
}

// ExecuteSuccess executes all success callbacks.
//
// Errors and panics from callbacks are ignored since the request has
// already succeeded. Context cancellation is checked before each
// callback.
func (r *Registry) ExecuteSuccess(ctx context.Context, event *SuccessEvent) {
	r.mu.RLock()
	callbacks := make([]SuccessCallback, len(r.success))
	copy(callbacks, r.success)
	r.mu.RUnlock()

	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					_ = r
				}
			}()

			cb(ctx, event)
		}()
	}
}

// ExecuteFailure executes all failure callbacks.
//
// Errors and panics from callbacks are ignored since the request has
// already failed. Context cancellation is checked before each
// callback.
func (r *Registry) ExecuteFailure(ctx context.Context, event *FailureEvent) {
	r.mu.RLock()
	callbacks := make([]FailureCallback, len(r.failure))
	copy(callbacks, r.failure)
	r.mu.RUnlock()

	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					_ = r
				}
			}()

			cb(ctx, event)
		}()
	}
}

// ExecuteStream executes all streaming callbacks.
//
// Errors and panics from callbacks are ignored to avoid interrupting
// the stream. Context cancellation is checked before each callback.
func (r *Registry) ExecuteStream(ctx context.Context, event *StreamEvent) {
	r.mu.RLock()
	callbacks := make([]StreamCallback, len(r.stream))
	copy(callbacks, r.stream)
	r.mu.RUnlock()

	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					_ = r
				}
			}()

			cb(ctx, event)
		}()
	}
}
