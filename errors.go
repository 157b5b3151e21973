package slate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SlateError is the base error type for all slate errors.
// It provides context about the error including vendor, model, and status code.
// All specific error types embed this base type.
type SlateError struct {
	// Message is the human-readable error message.
	Message string

	// StatusCode is the HTTP status code (if applicable).
	StatusCode int

	// Vendor is the vendor family where the error occurred.
	// Examples: "openai", "anthropic", "gemini"
	Vendor string

	// Model is the model that was being used when the error occurred.
	Model string

	// OriginalError is the underlying error that caused this error.
	OriginalError error
}

// Error implements the error interface.
// Returns a formatted error message with vendor context when available.
func (e *SlateError) Error() string {
	if e.Vendor != "" {
		return fmt.Sprintf("[%s] %s", e.Vendor, e.Message)
	}
	return e.Message
}

// Unwrap returns the original underlying error.
// This enables error chain traversal using errors.Is() and errors.As().
func (e *SlateError) Unwrap() error {
	return e.OriginalError
}

// IsRetryable returns true if this error represents a retryable condition.
// Base implementation returns false; specific error types override this.
func (e *SlateError) IsRetryable() bool {
	return false
}

// APIError represents a general API error from the vendor.
// This is used for errors that don't fit into more specific categories.
type APIError struct {
	SlateError
}

// NewAPIError creates a new API error with the given details.
func NewAPIError(message string, statusCode int, vendor string, err error) *APIError {
	return &APIError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    statusCode,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// ValidationError represents a request misconfiguration caught at build
// time, before any network call: an unsupported reasoning mode for the
// selected model, an effort tier outside the model's allow-list, and
// similar.
type ValidationError struct {
	SlateError
}

// NewValidationError creates a new validation error.
func NewValidationError(message, vendor, model string) *ValidationError {
	return &ValidationError{
		SlateError: SlateError{
			Message: message,
			Vendor:  vendor,
			Model:   model,
		},
	}
}

// AuthenticationError represents an authentication failure (401).
// This occurs when API keys are invalid, missing, or expired.
type AuthenticationError struct {
	SlateError
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(message string, vendor string, err error) *AuthenticationError {
	return &AuthenticationError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    401,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// PermissionError represents a permission denied error (403).
// This occurs when the API key is valid but lacks necessary permissions.
type PermissionError struct {
	SlateError
}

// NewPermissionError creates a new permission error.
func NewPermissionError(message string, vendor string, err error) *PermissionError {
	return &PermissionError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    403,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// RateLimitError represents a rate limit exceeded error (429).
// This is retryable after the specified retry-after duration.
type RateLimitError struct {
	SlateError

	// RetryAfter specifies how long to wait before retrying.
	RetryAfter time.Duration
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, vendor string, retryAfter time.Duration, err error) *RateLimitError {
	return &RateLimitError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    429,
			Vendor:        vendor,
			OriginalError: err,
		},
		RetryAfter: retryAfter,
	}
}

// IsRetryable returns true for rate limit errors.
// Clients should wait for RetryAfter duration before retrying.
func (e *RateLimitError) IsRetryable() bool {
	return true
}

// ContextWindowExceededError represents a context window exceeded error.
// This occurs when the input tokens exceed the model's maximum context length.
type ContextWindowExceededError struct {
	SlateError

	// MaxTokens is the maximum context window size for this model.
	MaxTokens int

	// Tokens is the actual number of tokens in the request.
	Tokens int
}

// NewContextWindowExceededError creates a new context window exceeded error.
func NewContextWindowExceededError(message string, vendor string, maxTokens, tokens int, err error) *ContextWindowExceededError {
	return &ContextWindowExceededError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    400,
			Vendor:        vendor,
			OriginalError: err,
		},
		MaxTokens: maxTokens,
		Tokens:    tokens,
	}
}

// InvalidRequestError represents an invalid request error (400).
// This occurs when the request parameters are malformed or invalid.
type InvalidRequestError struct {
	SlateError
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError(message string, vendor string, err error) *InvalidRequestError {
	return &InvalidRequestError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    400,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// TimeoutError represents a request timeout error.
// This is retryable as it may be due to temporary network issues.
type TimeoutError struct {
	SlateError
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(message string, vendor string, err error) *TimeoutError {
	return &TimeoutError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    0, // No HTTP status for timeouts
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// IsRetryable returns true for timeout errors.
// Timeouts are often transient and worth retrying.
func (e *TimeoutError) IsRetryable() bool {
	return true
}

// ServiceUnavailableError represents a service unavailable error (503).
// This is retryable as the service may recover shortly.
type ServiceUnavailableError struct {
	SlateError
}

// NewServiceUnavailableError creates a new service unavailable error.
func NewServiceUnavailableError(message string, vendor string, err error) *ServiceUnavailableError {
	return &ServiceUnavailableError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    503,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// IsRetryable returns true for service unavailable errors.
// These are typically temporary outages that may resolve quickly.
func (e *ServiceUnavailableError) IsRetryable() bool {
	return true
}

// BadRequestError represents a bad request error (400).
// This is a general 400 error that doesn't fit other categories.
type BadRequestError struct {
	SlateError
}

// NewBadRequestError creates a new bad request error.
func NewBadRequestError(message string, vendor string, err error) *BadRequestError {
	return &BadRequestError{
		SlateError: SlateError{
			Message:       message,
			StatusCode:    400,
			Vendor:        vendor,
			OriginalError: err,
		},
	}
}

// ParseVendorError parses a vendor error response into a typed slate error.
// This function attempts to parse JSON error responses and maps HTTP status codes
// to appropriate error types.
//
// The function handles the error envelope formats the five vendor
// families return and performs error classification based on status
// codes and message content.
//
// Parameters:
//   - vendor: The vendor family name (e.g., "openai", "anthropic")
//   - statusCode: The HTTP status code from the error response
//   - body: The raw response body bytes
//   - err: The original error (if any)
//
// Returns an appropriate error type based on the status code and message content.
func ParseVendorError(vendor string, statusCode int, body []byte, err error) error {
	// Attempt to parse JSON error response
	var errorResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := ""
	if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Error.Message != "" {
		message = errorResp.Error.Message
	} else {
		// Fall back to raw body if JSON parsing fails
		message = string(body)
	}

	// Use a descriptive message if body is empty
	if message == "" {
		message = fmt.Sprintf("HTTP %d error", statusCode)
	}

	// Map status codes to specific error types
	switch statusCode {
	case 401:
		return NewAuthenticationError(message, vendor, err)

	case 403:
		return NewPermissionError(message, vendor, err)

	case 429:
		// Rate limit errors are retryable
		return NewRateLimitError(message, vendor, 0, err)

	case 400:
		// 400 errors require content analysis to categorize properly
		lowerMsg := strings.ToLower(message)

		// Check for context window errors
		if strings.Contains(lowerMsg, "context") ||
			strings.Contains(lowerMsg, "token limit") ||
			strings.Contains(lowerMsg, "maximum context length") ||
			strings.Contains(lowerMsg, "too many tokens") {
			return NewContextWindowExceededError(message, vendor, 0, 0, err)
		}

		// Check for invalid request
		if strings.Contains(lowerMsg, "invalid") ||
			strings.Contains(lowerMsg, "malformed") ||
			strings.Contains(lowerMsg, "missing required") {
			return NewInvalidRequestError(message, vendor, err)
		}

		// Generic bad request if no specific pattern matches
		return NewBadRequestError(message, vendor, err)

	case 503:
		// Service unavailable is retryable
		return NewServiceUnavailableError(message, vendor, err)

	case 500, 502, 504:
		// Server errors are generally retryable
		// Note: We preserve the actual status code for these server errors
		serviceErr := NewServiceUnavailableError(message, vendor, err)
		serviceErr.StatusCode = statusCode
		return serviceErr

	default:
		// Generic API error for unhandled status codes
		return NewAPIError(message, statusCode, vendor, err)
	}
}
