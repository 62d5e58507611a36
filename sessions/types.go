package sessions

import "time"

// Session lifecycle states owned by the service and passed through verbatim.
// The SDK does not validate transitions; new states may appear server-side.
const (
	StatusPending  = "PENDING"
	StatusRunning  = "RUNNING"
	StatusExpired  = "EXPIRED"
	StatusReleased = "RELEASED"
)

// Browser types accepted by the service
const (
	BrowserChrome   = "chrome"
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
)

// Session is one remote browser session resource
type Session struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Browser    string            `json:"browser"`
	Region     string            `json:"region,omitempty"`
	ConnectURL string            `json:"connectUrl,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	ExpiresAt  *time.Time        `json:"expiresAt,omitempty"`
}

// Viewport is the browser window size in pixels
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CreateOptions shapes the body of a session create request. Zero-value
// fields are omitted and the service applies its defaults.
type CreateOptions struct {
	Browser    string            `json:"browser,omitempty"`
	Headless   *bool             `json:"headless,omitempty"`
	Viewport   *Viewport         `json:"viewport,omitempty"`
	ProxyURL   string            `json:"proxyUrl,omitempty"`
	Region     string            `json:"region,omitempty"`
	TTLSeconds int               `json:"ttlSeconds,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}

// ListOptions filters a session listing. Pointer fields distinguish
// "unset" from explicit zero values: a Limit of 0 is sent when set.
type ListOptions struct {
	Status string
	Region string
	Limit  *int
	Offset *int
}

// SessionList is one page of sessions
type SessionList struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// LogEntry is one console or network log line captured in a session
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// DebugInfo carries the live debugging endpoints of a running session
type DebugInfo struct {
	WSEndpoint  string `json:"wsEndpoint"`
	DevtoolsURL string `json:"devtoolsUrl,omitempty"`
}
