package trace

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderConstant(t *testing.T) {
	assert.Equal(t, "X-Request-ID", HeaderXRequestID)
}

func TestEnsureRequestIDUsesExisting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "existing-request-id")
	got := EnsureRequestID(ctx)
	assert.Equal(t, "existing-request-id", got)
}

func TestEnsureRequestIDGeneratesWhenMissing(t *testing.T) {
	got := EnsureRequestID(context.Background())
	// UUID v4 format: 36 chars with hyphens
	re := regexp.MustCompile(`^[a-f0-9\-]{36}$`)
	assert.True(t, re.MatchString(strings.ToLower(got)))
}

func TestIDFromContext(t *testing.T) {
	_, ok := IDFromContext(context.Background())
	require.False(t, ok)

	ctx := WithRequestID(context.Background(), "req-123")
	id, ok := IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-123", id)

	// Empty values are treated as absent
	ctx = WithRequestID(context.Background(), "")
	_, ok = IDFromContext(ctx)
	assert.False(t, ok)
}
