package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ClientError represents a classified Browsergrid API failure
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error. Values match the wire
// representation used in the service's error response bodies.
type ErrorType string

const (
	InvalidRequest      ErrorType = "INVALID_REQUEST"
	Unauthorized        ErrorType = "UNAUTHORIZED"
	SessionNotFound     ErrorType = "SESSION_NOT_FOUND"
	RateLimitExceeded   ErrorType = "RATE_LIMIT_EXCEEDED"
	InternalServerError ErrorType = "INTERNAL_SERVER_ERROR"
	NetworkError        ErrorType = "NETWORK_ERROR"
	TimeoutError        ErrorType = "TIMEOUT_ERROR"
	UnknownError        ErrorType = "UNKNOWN_ERROR"
)

// defaultRetryDelay holds the per-kind delay used before a retry when the
// server did not suggest one.
var defaultRetryDelay = map[ErrorType]time.Duration{
	InvalidRequest:      1 * time.Second,
	Unauthorized:        1 * time.Second,
	SessionNotFound:     1 * time.Second,
	RateLimitExceeded:   60 * time.Second,
	InternalServerError: 5 * time.Second,
	NetworkError:        1 * time.Second,
	TimeoutError:        2 * time.Second,
	UnknownError:        1 * time.Second,
}

// apiError is the single concrete ClientError implementation. Fields beyond
// kind and message are populated only when the failure mode provides them:
// statusCode for response-derived errors, timeout for aborted attempts,
// wrapped for transport causes.
type apiError struct {
	kind       ErrorType
	message    string
	statusCode int
	details    map[string]any
	retryAfter *int
	timeout    time.Duration
	wrapped    error
}

func (e *apiError) Error() string {
	switch {
	case e.statusCode > 0:
		return fmt.Sprintf("browsergrid: %s: %s (status: %d)", e.kind, e.message, e.statusCode)
	case e.kind == TimeoutError && e.timeout > 0:
		return fmt.Sprintf("browsergrid: %s: %s (timeout: %v)", e.kind, e.message, e.timeout)
	case e.wrapped != nil:
		return fmt.Sprintf("browsergrid: %s: %s: %v", e.kind, e.message, e.wrapped)
	default:
		return fmt.Sprintf("browsergrid: %s: %s", e.kind, e.message)
	}
}

func (e *apiError) Type() ErrorType {
	return e.kind
}

func (e *apiError) Unwrap() error {
	return e.wrapped
}

// StatusCode returns the HTTP status the error was derived from, or 0 for
// transport and timeout failures.
func (e *apiError) StatusCode() int {
	return e.statusCode
}

// Details returns the structured diagnostic data attached by the server, if any.
func (e *apiError) Details() map[string]any {
	return e.details
}

// RetryAfter returns the server-suggested retry delay in seconds, if present.
func (e *apiError) RetryAfter() (int, bool) {
	if e.retryAfter == nil {
		return 0, false
	}
	return *e.retryAfter, true
}

// NewError creates a classified error of the given kind
func NewError(kind ErrorType, message string) ClientError {
	return &apiError{kind: kind, message: message}
}

// NewNetworkError creates a NETWORK_ERROR wrapping the transport cause
func NewNetworkError(message string, wrapped error) ClientError {
	return &apiError{kind: NetworkError, message: message, wrapped: wrapped}
}

// NewTimeoutError creates a TIMEOUT_ERROR for an attempt aborted after the given timeout
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &apiError{kind: TimeoutError, message: message, timeout: timeout}
}

// NewUnauthorizedError creates an UNAUTHORIZED error. Used both for 401
// responses and for a missing API key at client construction.
func NewUnauthorizedError(message string) ClientError {
	return &apiError{kind: Unauthorized, message: message}
}

// errorBody is the service's error response shape
type errorBody struct {
	Error      string         `json:"error"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	RetryAfter *int           `json:"retryAfter,omitempty"`
}

// knownKinds are the body kinds accepted from a structured error response.
// TIMEOUT_ERROR and NETWORK_ERROR only arise from transport failures and are
// deliberately absent.
var knownKinds = map[ErrorType]struct{}{
	InvalidRequest:      {},
	Unauthorized:        {},
	SessionNotFound:     {},
	RateLimitExceeded:   {},
	InternalServerError: {},
	UnknownError:        {},
}

// ClassifyResponse turns a non-2xx HTTP response into a ClientError.
// A parseable body with a recognized error kind wins; otherwise the kind is
// derived from the status code alone. The status code is recorded either way.
func ClassifyResponse(statusCode int, body []byte) ClientError {
	if len(body) > 0 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
			kind := ErrorType(eb.Error)
			if _, ok := knownKinds[kind]; !ok {
				kind = UnknownError
			}
			message := eb.Message
			if message == "" {
				message = statusMessage(statusCode)
			}
			return &apiError{
				kind:       kind,
				message:    message,
				statusCode: statusCode,
				details:    eb.Details,
				retryAfter: eb.RetryAfter,
			}
		}
	}

	kind, message := classifyStatus(statusCode)
	return &apiError{kind: kind, message: message, statusCode: statusCode}
}

func classifyStatus(statusCode int) (ErrorType, string) {
	switch statusCode {
	case 400:
		return InvalidRequest, "invalid request"
	case 401:
		return Unauthorized, "unauthorized: invalid or missing API key"
	case 404:
		return SessionNotFound, "session not found"
	case 429:
		return RateLimitExceeded, "rate limit exceeded"
	case 500, 502, 503, 504:
		return InternalServerError, "internal server error"
	default:
		return UnknownError, statusMessage(statusCode)
	}
}

func statusMessage(statusCode int) string {
	return fmt.Sprintf("request failed with status %d", statusCode)
}

// IsRetryable reports whether the error represents a transient failure the
// engine may retry: rate limiting, 5xx responses, network failures, timeouts.
func IsRetryable(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.kind {
	case RateLimitExceeded, InternalServerError, NetworkError, TimeoutError:
		return true
	default:
		return false
	}
}

// RetryDelay returns the base delay to wait before retrying after err.
// A server-suggested retryAfter takes precedence over the per-kind default.
func RetryDelay(err error) time.Duration {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return 1 * time.Second
	}
	if apiErr.retryAfter != nil {
		return time.Duration(*apiErr.retryAfter) * time.Second
	}
	if d, ok := defaultRetryDelay[apiErr.kind]; ok {
		return d
	}
	return 1 * time.Second
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError checks if an error was derived from a specific HTTP status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.statusCode == statusCode
	}
	return false
}

// IsSessionNotFound reports whether err is a SESSION_NOT_FOUND error
func IsSessionNotFound(err error) bool { return IsErrorType(err, SessionNotFound) }

// IsUnauthorized reports whether err is an UNAUTHORIZED error
func IsUnauthorized(err error) bool { return IsErrorType(err, Unauthorized) }

// IsRateLimited reports whether err is a RATE_LIMIT_EXCEEDED error
func IsRateLimited(err error) bool { return IsErrorType(err, RateLimitExceeded) }

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
