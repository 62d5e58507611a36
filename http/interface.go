package http

import (
	nethttp "net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/browsergrid/browsergrid-go/logger"
)

// Doer executes a single HTTP request. *net/http.Client satisfies it; tests
// substitute stubs to script transport behavior.
type Doer interface {
	Do(req *nethttp.Request) (*nethttp.Response, error)
}

// Param is one query parameter. Params are appended to the URL in the order
// supplied. A nil Value omits the parameter entirely; false and 0 are
// serialized like any other defined value.
type Param struct {
	Key   string
	Value any
}

// Q is a convenience constructor for a query parameter
func Q(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// Request carries the per-call inputs for one logical HTTP operation.
// Zero values defer to the engine's configured defaults. A Request is not
// mutated by the engine and is not retained after the call completes.
type Request struct {
	// Query parameters appended to the URL in order; nil values omitted
	Query []Param
	// Body is JSON-serialized when non-nil
	Body any
	// Headers override the engine defaults key-by-key
	Headers map[string]string
	// Timeout overrides the default per-attempt timeout when > 0
	Timeout time.Duration
	// Retries overrides the default retry budget when non-nil
	Retries *int
}

// Response represents a successful (2xx) HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// IsJSON reports whether the response declared a JSON content type.
// An absent Content-Type is treated as JSON, matching the service default.
func (r *Response) IsJSON() bool {
	ct := r.Headers.Get("Content-Type")
	return ct == "" || strings.Contains(ct, "application/json")
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	Attempts    int
}

// Config holds the engine configuration. It is treated as a read-only
// snapshot after the engine is constructed.
type Config struct {
	// APIKey is sent as the x-api-key header on every request
	APIKey string
	// BaseURL is the service root requests are resolved against
	BaseURL string
	// Timeout is the default per-attempt timeout
	Timeout time.Duration
	// MaxRetries is the default retry budget (total attempts = MaxRetries + 1)
	MaxRetries int
	// UserAgent identifies the SDK build in request headers
	UserAgent string
	// DefaultHeaders are applied before per-request overrides
	DefaultHeaders map[string]string
	// Doer executes attempts; defaults to a plain net/http client
	Doer Doer
	// Limiter optionally gates attempt starts client-side
	Limiter *rate.Limiter
	// Logger receives request/response events; defaults to a no-op logger
	Logger logger.Logger
	// LogPayloads enables debug-level logging of request and response bodies
	LogPayloads bool
}
