// Package client is the entry point of the Browsergrid SDK. A Client owns
// an immutable configuration snapshot and exposes the typed resource
// services backed by the shared request engine.
package client

import (
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/browsergrid/browsergrid-go/config"
	bghttp "github.com/browsergrid/browsergrid-go/http"
	"github.com/browsergrid/browsergrid-go/logger"
	"github.com/browsergrid/browsergrid-go/sessions"
)

// Version identifies the SDK build in the User-Agent header
const Version = "0.4.0"

// Client is the Browsergrid API client. It is safe for concurrent use; all
// configuration is fixed at construction.
type Client struct {
	engine   *bghttp.Engine
	sessions *sessions.Service
	snapshot Snapshot
}

// Snapshot is the read-only view of the client configuration. The API key
// is pre-masked; the full key never leaves the client.
type Snapshot struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type options struct {
	apiKey      string
	baseURL     string
	timeout     time.Duration
	maxRetries  int
	headers     map[string]string
	doer        bghttp.Doer
	limiter     *rate.Limiter
	logger      logger.Logger
	logPayloads bool
}

// Option configures a Client during construction
type Option func(*options)

// WithAPIKey sets the API key sent as the x-api-key header
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the service host
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithTimeout sets the default per-attempt request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithMaxRetries sets the default retry budget for transient failures
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) { o.maxRetries = maxRetries }
}

// WithHeader adds a default header sent with every request
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHTTPDoer substitutes the transport used for requests. Mainly for
// tests and for applications that tune their own http.Client.
func WithHTTPDoer(doer bghttp.Doer) Option {
	return func(o *options) { o.doer = doer }
}

// WithRateLimit caps outgoing requests client-side at rps requests per
// second with the given burst
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) { o.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger directs SDK log output to the given logger
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithPayloadLogging enables debug-level logging of request and response
// bodies. Credential headers are masked before they reach the log output.
func WithPayloadLogging() Option {
	return func(o *options) { o.logPayloads = true }
}

// New creates a client from options alone. The API key is required and is
// resolved exactly once, here: a missing key fails immediately with a typed
// UNAUTHORIZED error rather than on the first request.
func New(opts ...Option) (*Client, error) {
	o := &options{
		baseURL:    config.DefaultBaseURL,
		timeout:    bghttp.DefaultTimeout,
		maxRetries: bghttp.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return build(o)
}

// NewFromConfig creates a client from a loaded configuration. Options are
// applied on top and win over the configuration values.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	o := &options{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		logPayloads: cfg.Log.LogPayloads,
	}
	if cfg.RateLimit > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	if cfg.Log.Level != "" {
		o.logger = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	}
	for _, opt := range opts {
		opt(o)
	}
	return build(o)
}

func build(o *options) (*Client, error) {
	if strings.TrimSpace(o.apiKey) == "" {
		return nil, bghttp.NewUnauthorizedError("missing API key: pass WithAPIKey or set BROWSERGRID_API_KEY")
	}
	if o.baseURL == "" {
		o.baseURL = config.DefaultBaseURL
	}
	log := o.logger
	if log == nil {
		log = logger.NewNoop()
	}

	engine := bghttp.NewEngine(&bghttp.Config{
		APIKey:         o.apiKey,
		BaseURL:        o.baseURL,
		Timeout:        o.timeout,
		MaxRetries:     o.maxRetries,
		UserAgent:      "browsergrid-go/" + Version,
		DefaultHeaders: o.headers,
		Doer:           o.doer,
		Limiter:        o.limiter,
		Logger:         log,
		LogPayloads:    o.logPayloads,
	})

	return &Client{
		engine:   engine,
		sessions: sessions.NewService(engine),
		snapshot: Snapshot{
			APIKey:     maskKey(o.apiKey),
			BaseURL:    o.baseURL,
			Timeout:    o.timeout,
			MaxRetries: o.maxRetries,
		},
	}, nil
}

// Sessions returns the browser-session resource service
func (c *Client) Sessions() *sessions.Service {
	return c.sessions
}

// Config returns the read-only configuration snapshot
func (c *Client) Config() Snapshot {
	return c.snapshot
}

// maskKey keeps the last four characters of the key for identification
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
