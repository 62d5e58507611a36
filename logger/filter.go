package logger

import (
	"strings"
)

const (
	// DefaultMaskValue is the replacement used for masked values
	DefaultMaskValue = "***"
)

// FilterConfig defines the configuration for sensitive data filtering
type FilterConfig struct {
	// SensitiveFields contains field names that should be masked in logs
	SensitiveFields []string
	// MaskValue is the value used to replace sensitive data (default: "***")
	MaskValue string
}

// DefaultFilterConfig returns a default configuration with common sensitive field names.
// The list covers the credential-bearing headers and config keys the SDK handles.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"api_key", "apikey", "x-api-key",
			"password", "secret", "key",
			"token", "access_token",
			"auth", "authorization",
			"credential", "credentials",
			"proxy_url", "proxyurl",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive fields before they reach log output
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a new filter with the given configuration
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString filters sensitive data from string values
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	return value
}

// FilterValue filters sensitive data from arbitrary values. String maps
// (header maps, config maps) are filtered key-by-key; other values pass
// through unless the key itself is sensitive.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	switch m := value.(type) {
	case map[string]string:
		filtered := make(map[string]string, len(m))
		for k, v := range m {
			filtered[k] = f.FilterString(k, v)
		}
		return filtered
	case map[string]any:
		return f.FilterFields(m)
	default:
		return value
	}
}

// FilterFields filters a map of log fields, masking sensitive entries
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for k, v := range fields {
		filtered[k] = f.FilterValue(k, v)
	}
	return filtered
}

// isSensitiveField checks if a field name matches any configured sensitive name
func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(fieldName, "-", "_"))
	for _, sensitive := range f.config.SensitiveFields {
		s := strings.ReplaceAll(sensitive, "-", "_")
		if normalized == s || strings.HasSuffix(normalized, "_"+s) {
			return true
		}
	}
	return false
}
