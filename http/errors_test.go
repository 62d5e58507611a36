package http

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyResponseStatusFallback(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorType
	}{
		{400, InvalidRequest},
		{401, Unauthorized},
		{404, SessionNotFound},
		{429, RateLimitExceeded},
		{500, InternalServerError},
		{502, InternalServerError},
		{503, InternalServerError},
		{504, InternalServerError},
		{418, UnknownError},
		{302, UnknownError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			err := ClassifyResponse(tt.statusCode, nil)
			assert.Equal(t, tt.expected, err.Type())
			assert.True(t, IsHTTPStatusError(err, tt.statusCode))
		})
	}
}

func TestClassifyResponseStructuredBody(t *testing.T) {
	t.Run("recognized kind wins over status", func(t *testing.T) {
		body := []byte(`{"error":"SESSION_NOT_FOUND","message":"session sess-42 has expired"}`)
		err := ClassifyResponse(400, body)

		assert.Equal(t, SessionNotFound, err.Type())
		assert.Contains(t, err.Error(), "session sess-42 has expired")
		assert.True(t, IsHTTPStatusError(err, 400))
	})

	t.Run("details and retryAfter carried through", func(t *testing.T) {
		body := []byte(`{"error":"RATE_LIMIT_EXCEEDED","message":"slow down","details":{"limit":100},"retryAfter":30}`)
		err := ClassifyResponse(429, body)

		var apiErr *apiError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, map[string]any{"limit": float64(100)}, apiErr.Details())
		after, ok := apiErr.RetryAfter()
		require.True(t, ok)
		assert.Equal(t, 30, after)
	})

	t.Run("unrecognized kind becomes UNKNOWN_ERROR", func(t *testing.T) {
		body := []byte(`{"error":"QUOTA_EXCEEDED","message":"monthly quota spent"}`)
		err := ClassifyResponse(400, body)

		assert.Equal(t, UnknownError, err.Type())
		assert.Contains(t, err.Error(), "monthly quota spent")
	})

	t.Run("transport-only kinds not accepted from a body", func(t *testing.T) {
		body := []byte(`{"error":"TIMEOUT_ERROR","message":"fake"}`)
		err := ClassifyResponse(400, body)
		assert.Equal(t, UnknownError, err.Type())
	})

	t.Run("unparseable body falls back to status", func(t *testing.T) {
		err := ClassifyResponse(503, []byte("<html>Bad Gateway</html>"))
		assert.Equal(t, InternalServerError, err.Type())
	})

	t.Run("body without error field falls back to status", func(t *testing.T) {
		err := ClassifyResponse(404, []byte(`{"message":"nope"}`))
		assert.Equal(t, SessionNotFound, err.Type())
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		kind      ErrorType
		retryable bool
	}{
		{InvalidRequest, false},
		{Unauthorized, false},
		{SessionNotFound, false},
		{RateLimitExceeded, true},
		{InternalServerError, true},
		{NetworkError, true},
		{TimeoutError, true},
		{UnknownError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(NewError(tt.kind, "test")))
		})
	}

	t.Run("nil and untyped errors are not retryable", func(t *testing.T) {
		assert.False(t, IsRetryable(nil))
		assert.False(t, IsRetryable(errors.New("plain error")))
	})
}

func TestRetryDelay(t *testing.T) {
	t.Run("per-kind defaults", func(t *testing.T) {
		tests := []struct {
			kind     ErrorType
			expected time.Duration
		}{
			{RateLimitExceeded, 60 * time.Second},
			{InternalServerError, 5 * time.Second},
			{NetworkError, 1 * time.Second},
			{TimeoutError, 2 * time.Second},
			{InvalidRequest, 1 * time.Second},
			{Unauthorized, 1 * time.Second},
			{SessionNotFound, 1 * time.Second},
			{UnknownError, 1 * time.Second},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, RetryDelay(NewError(tt.kind, "test")), string(tt.kind))
		}
	})

	t.Run("server retryAfter takes precedence", func(t *testing.T) {
		err := ClassifyResponse(429, []byte(`{"error":"RATE_LIMIT_EXCEEDED","message":"slow down","retryAfter":30}`))
		assert.Equal(t, 30*time.Second, RetryDelay(err))
	})

	t.Run("untyped error gets the generic default", func(t *testing.T) {
		assert.Equal(t, 1*time.Second, RetryDelay(errors.New("plain")))
	})
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		error    ClientError
		contains []string
	}{
		{
			name:     "response-derived error includes status",
			error:    ClassifyResponse(404, nil),
			contains: []string{"SESSION_NOT_FOUND", "session not found", "404"},
		},
		{
			name:     "timeout error includes timeout value",
			error:    NewTimeoutError("request timed out after 30s", 30*time.Second),
			contains: []string{"TIMEOUT_ERROR", "request timed out after 30s", "30s"},
		},
		{
			name:     "network error includes cause",
			error:    NewNetworkError("request execution failed", errors.New("connection refused")),
			contains: []string{"NETWORK_ERROR", "request execution failed", "connection refused"},
		},
		{
			name:     "construction-time unauthorized",
			error:    NewUnauthorizedError("missing API key"),
			contains: []string{"UNAUTHORIZED", "missing API key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.error.Error()
			for _, expected := range tt.contains {
				assert.Contains(t, msg, expected)
			}
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	underlying := errors.New("connection refused")
	netErr := NewNetworkError("request execution failed", underlying)

	assert.True(t, errors.Is(netErr, underlying))

	var apiErr *apiError
	require.True(t, errors.As(netErr, &apiErr))
	assert.Equal(t, "request execution failed", apiErr.message)

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewError(UnknownError, "no cause")
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			assert.Nil(t, unwrapper.Unwrap())
		}
	})
}

func TestErrorTypeUtilities(t *testing.T) {
	t.Run("IsErrorType", func(t *testing.T) {
		assert.False(t, IsErrorType(nil, NetworkError))
		assert.True(t, IsErrorType(NewNetworkError("test", nil), NetworkError))
		assert.False(t, IsErrorType(NewNetworkError("test", nil), TimeoutError))
		assert.False(t, IsErrorType(errors.New("standard error"), NetworkError))
	})

	t.Run("wrapped client errors still match", func(t *testing.T) {
		wrapped := fmt.Errorf("create session: %w", ClassifyResponse(404, nil))
		assert.True(t, IsErrorType(wrapped, SessionNotFound))
		assert.True(t, IsSessionNotFound(wrapped))
		assert.True(t, IsHTTPStatusError(wrapped, 404))
	})

	t.Run("kind predicates", func(t *testing.T) {
		assert.True(t, IsUnauthorized(ClassifyResponse(401, nil)))
		assert.True(t, IsRateLimited(ClassifyResponse(429, nil)))
		assert.False(t, IsSessionNotFound(ClassifyResponse(401, nil)))
	})

	t.Run("IsSuccessStatus", func(t *testing.T) {
		tests := []struct {
			statusCode int
			expected   bool
		}{
			{199, false},
			{200, true},
			{204, true},
			{299, true},
			{300, false},
			{404, false},
			{500, false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, IsSuccessStatus(tt.statusCode), "status %d", tt.statusCode)
		}
	})
}
