package deepseek

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// ErrorKind classifies a non-2xx API response.
type ErrorKind string

const (
	KindBadRequest         ErrorKind = "bad_request"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInsufficientFunds  ErrorKind = "insufficient_funds"
	KindInvalidParameters  ErrorKind = "invalid_parameters"
	KindRateLimited        ErrorKind = "rate_limited"
	KindServerError        ErrorKind = "server_error"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindUnknown            ErrorKind = "unknown"
)

// APIError is returned when the service answers with a documented error
// status. Message carries the response body, or the API's error message when
// the body is the standard JSON error envelope.
type APIError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
}

// NewAPIError classifies an HTTP status code.
func NewAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Kind: classify(status), Message: message}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deepseek: HTTP %d %s: %s", e.StatusCode, e.Kind, e.Message)
}

// Retryable reports whether repeating the same request may succeed.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

func classify(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusPaymentRequired:
		return KindInsufficientFunds
	case http.StatusUnprocessableEntity:
		return KindInvalidParameters
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError:
		return KindServerError
	case http.StatusServiceUnavailable:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}
