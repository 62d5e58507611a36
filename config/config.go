// Package config loads SDK configuration from layered sources: built-in
// defaults, an optional browsergrid.yaml file, and BROWSERGRID_* environment
// variables, in increasing priority. The result is validated once and read
// only thereafter; nothing in the request path consults the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultBaseURL is the production service host
	DefaultBaseURL = "https://api.browsergrid.com"

	// envPrefix scopes the environment variables read by Load
	envPrefix = "BROWSERGRID_"

	// configFile is the optional YAML file consulted by Load
	configFile = "browsergrid.yaml"
)

// Load resolves configuration from all sources with priority:
// 1. Environment variables (highest priority)
// 2. browsergrid.yaml in the working directory
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFrom(configFile)
}

// LoadFrom is Load with an explicit YAML path, used by tests and by
// applications keeping SDK settings in a custom location. The file is
// optional; a missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// YAML file is optional
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	// Environment variables win. BROWSERGRID_API_KEY -> api_key,
	// BROWSERGRID_LOG__LEVEL -> log.level (double underscore nests).
	if err := k.Load(envprovider.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"base_url":    DefaultBaseURL,
		"timeout":     "30s",
		"max_retries": 3,
		"rate_limit":  0,

		"log.level":    "info",
		"log.pretty":   false,
		"log.payloads": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
