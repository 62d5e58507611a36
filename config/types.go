package config

import "time"

// Config holds the SDK settings resolved from defaults, an optional YAML
// file, and environment variables. It is immutable after Load returns.
type Config struct {
	// APIKey authenticates every request. Not required here; the client
	// surfaces a typed UNAUTHORIZED error at construction when absent.
	APIKey string `koanf:"api_key" validate:"omitempty,min=8"`
	// BaseURL is the service root, default the production host
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// Timeout is the default per-attempt request timeout
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// MaxRetries is the default retry budget for transient failures
	MaxRetries int `koanf:"max_retries" validate:"gte=0,lte=10"`
	// RateLimit optionally caps outgoing requests per second; 0 disables
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	Log LogConfig `koanf:"log"`
}

// LogConfig controls the SDK's structured logging output
type LogConfig struct {
	Level       string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Pretty      bool   `koanf:"pretty"`
	LogPayloads bool   `koanf:"payloads"`
}
