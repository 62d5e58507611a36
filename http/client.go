package http

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/browsergrid/browsergrid-go/logger"
	"github.com/browsergrid/browsergrid-go/trace"
)

const (
	// DefaultTimeout is the default per-attempt timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default retry budget for failed requests
	DefaultMaxRetries = 3

	// maxBackoff caps the wait between attempts regardless of how large the
	// exponential term grows
	maxBackoff = 60 * time.Second

	// maxJitter is the upper bound of the random delay added to each backoff
	maxJitter = time.Second

	headerAPIKey      = "x-api-key"
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"

	contentTypeJSON = "application/json"
)

// Engine executes HTTP operations against the Browsergrid API with typed
// error classification and bounded retries. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	doer   Doer
	logger logger.Logger
	config *Config

	// backoff computes the inter-attempt delay; swapped out in tests
	backoff func(ClientError, int) time.Duration
}

// NewEngine creates an engine from the given configuration. Zero-value
// fields fall back to defaults; cfg is not retained by reference for fields
// that callers might mutate.
func NewEngine(cfg *Config) *Engine {
	c := *cfg
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.UserAgent == "" {
		c.UserAgent = "browsergrid-go/dev"
	}
	headers := make(map[string]string, len(c.DefaultHeaders))
	for k, v := range c.DefaultHeaders {
		headers[k] = v
	}
	c.DefaultHeaders = headers

	doer := c.Doer
	if doer == nil {
		doer = &nethttp.Client{}
	}
	log := c.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	return &Engine{doer: doer, logger: log, config: &c, backoff: backoffDelay}
}

// Get performs a GET request
func (e *Engine) Get(ctx context.Context, path string, req *Request) (*Response, error) {
	return e.Do(ctx, nethttp.MethodGet, path, req)
}

// Post performs a POST request
func (e *Engine) Post(ctx context.Context, path string, req *Request) (*Response, error) {
	return e.Do(ctx, nethttp.MethodPost, path, req)
}

// Put performs a PUT request
func (e *Engine) Put(ctx context.Context, path string, req *Request) (*Response, error) {
	return e.Do(ctx, nethttp.MethodPut, path, req)
}

// Patch performs a PATCH request
func (e *Engine) Patch(ctx context.Context, path string, req *Request) (*Response, error) {
	return e.Do(ctx, nethttp.MethodPatch, path, req)
}

// Delete performs a DELETE request
func (e *Engine) Delete(ctx context.Context, path string, req *Request) (*Response, error) {
	return e.Do(ctx, nethttp.MethodDelete, path, req)
}

// Do executes one logical HTTP operation, retrying transient failures up to
// the effective retry budget. On success it returns the raw response; on
// failure it returns a ClientError, never a bare transport error.
//
// Retries do not inspect whether a failed attempt had server-side effects:
// a POST that dies on the wire after the server processed it will be sent
// again. Callers issuing non-idempotent writes can set Retries to zero on
// the Request to opt out.
func (e *Engine) Do(ctx context.Context, method, path string, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}

	fullURL, err := e.buildURL(path, req.Query)
	if err != nil {
		return nil, NewError(InvalidRequest, fmt.Sprintf("invalid request path %q: %v", path, err))
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, NewError(InvalidRequest, fmt.Sprintf("failed to encode request body: %v", err))
		}
	}

	timeout := e.config.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	budget := e.config.MaxRetries
	if req.Retries != nil && *req.Retries >= 0 {
		budget = *req.Retries
	}

	start := time.Now()
	var lastErr ClientError

	for attempt := 0; attempt <= budget; attempt++ {
		if e.config.Limiter != nil {
			if err := e.config.Limiter.Wait(ctx); err != nil {
				return nil, NewNetworkError("rate limiter wait aborted", err)
			}
		}

		resp, cerr := e.attempt(ctx, method, fullURL, req.Headers, body, timeout)
		if cerr == nil {
			resp.Stats = Stats{ElapsedTime: time.Since(start), Attempts: attempt + 1}
			e.logResponse(method, fullURL, resp)
			return resp, nil
		}

		lastErr = cerr
		if attempt == budget || !IsRetryable(cerr) {
			e.logFailure(method, fullURL, attempt+1, cerr)
			return nil, cerr
		}

		delay := e.backoff(cerr, attempt)
		e.logger.Warn().
			Str("method", method).
			Str("url", fullURL).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Err(cerr).
			Msg("Retrying request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, NewNetworkError("request canceled during backoff", ctx.Err())
		}
	}

	// Unreachable: the last-attempt check above returns inside the loop
	return nil, lastErr
}

// attempt executes a single HTTP attempt under its own timeout. The timeout
// context is released on every exit path via defer.
func (e *Engine) attempt(ctx context.Context, method, fullURL string, headers map[string]string, body []byte, timeout time.Duration) (*Response, ClientError) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := nethttp.NewRequestWithContext(attemptCtx, method, fullURL, reader)
	if err != nil {
		return nil, NewNetworkError("failed to build HTTP request", err)
	}
	e.applyHeaders(httpReq, headers)

	e.logRequest(method, fullURL, httpReq, body)

	httpResp, err := e.doer.Do(httpReq)
	if err != nil {
		if e.isTimeout(ctx, attemptCtx, err) {
			return nil, NewTimeoutError(fmt.Sprintf("request timed out after %v", timeout), timeout)
		}
		return nil, NewNetworkError("request execution failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	if !IsSuccessStatus(httpResp.StatusCode) {
		return nil, ClassifyResponse(httpResp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// buildURL resolves path against the base URL and appends defined query
// parameters in the order supplied.
func (e *Engine) buildURL(path string, params []Param) (string, error) {
	base := strings.TrimRight(e.config.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(base + path)
	if err != nil {
		return "", err
	}

	if len(params) > 0 {
		var q strings.Builder
		for _, p := range params {
			s, ok := paramString(p.Value)
			if !ok {
				continue
			}
			if q.Len() > 0 {
				q.WriteByte('&')
			}
			q.WriteString(url.QueryEscape(p.Key))
			q.WriteByte('=')
			q.WriteString(url.QueryEscape(s))
		}
		u.RawQuery = q.String()
	}
	return u.String(), nil
}

// paramString serializes a query value; ok is false for nil values, which
// are omitted from the URL.
func paramString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// applyHeaders sets engine defaults, then authentication and identification
// headers, then per-request overrides (overrides win key-by-key).
func (e *Engine) applyHeaders(httpReq *nethttp.Request, overrides map[string]string) {
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerUserAgent, e.config.UserAgent)
	if e.config.APIKey != "" {
		httpReq.Header.Set(headerAPIKey, e.config.APIKey)
	}
	httpReq.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(httpReq.Context()))

	for key, value := range e.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range overrides {
		httpReq.Header.Set(key, value)
	}
}

// isTimeout distinguishes a per-attempt timeout from other transport
// failures. A caller-initiated cancellation is not a timeout.
func (e *Engine) isTimeout(callerCtx, attemptCtx context.Context, err error) bool {
	if callerCtx.Err() != nil {
		return false
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// backoffDelay computes the wait before retrying after the failed attempt
// with 0-based index attempt: RetryDelay(err) * 2^attempt plus random jitter
// in [0, 1s), clamped at maxBackoff.
func backoffDelay(err ClientError, attempt int) time.Duration {
	base := RetryDelay(err)
	// Cap attempt to avoid overflow when computing the multiplier
	if attempt > 20 {
		attempt = 20
	}
	d := base * time.Duration(1<<attempt)
	if d < 0 || d > maxBackoff {
		return maxBackoff
	}
	d += jitter()
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// jitter returns a random duration in [0, maxJitter) to spread concurrent
// retrying callers apart.
func jitter() time.Duration {
	n, err := crand.Int(crand.Reader, big.NewInt(int64(maxJitter)))
	if err != nil {
		// On RNG failure, skip jitter rather than fail the retry
		return 0
	}
	return time.Duration(n.Int64())
}

// logRequest logs the outgoing request
func (e *Engine) logRequest(method, fullURL string, httpReq *nethttp.Request, body []byte) {
	logEvent := e.logger.Info().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", fullURL)
	logEvent.Msg("Browsergrid API request")

	if e.config.LogPayloads {
		debugEvent := e.logger.Debug().
			Str("method", method).
			Str("url", fullURL).
			Interface("headers", headerMap(httpReq.Header))
		if len(body) > 0 {
			debugEvent = debugEvent.Bytes("body", body)
		}
		debugEvent.Msg("Browsergrid API request payload")
	}
}

// logResponse logs the successful response
func (e *Engine) logResponse(method, fullURL string, resp *Response) {
	logEvent := e.logger.Info().
		Str("direction", "inbound").
		Str("method", method).
		Str("url", fullURL).
		Int("status", resp.StatusCode).
		Int("attempts", resp.Stats.Attempts).
		Dur("elapsed", resp.Stats.ElapsedTime)
	logEvent.Msg("Browsergrid API response")

	if e.config.LogPayloads && len(resp.Body) > 0 {
		e.logger.Debug().
			Str("url", fullURL).
			Bytes("body", resp.Body).
			Msg("Browsergrid API response payload")
	}
}

// logFailure logs a request that exhausted its retries or failed terminally
func (e *Engine) logFailure(method, fullURL string, attempts int, cerr ClientError) {
	e.logger.Error().
		Str("method", method).
		Str("url", fullURL).
		Int("attempts", attempts).
		Str("error_type", string(cerr.Type())).
		Err(cerr).
		Msg("Browsergrid API request failed")
}

// headerMap flattens an http.Header into a map for structured logging so
// the sensitive-data filter can mask credential headers.
func headerMap(h nethttp.Header) map[string]string {
	m := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			m[k] = v[0]
		}
	}
	return m
}
