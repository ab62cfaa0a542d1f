package config

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://positions.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CompressionEnabled enables gzip compression for text responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}

	h.CookieDomain = strings.ToLower(strings.TrimSpace(h.CookieDomain))
	if IsPublicSuffix(h.CookieDomain) {
		// Browsers reject cookies scoped to a public suffix; fall back to host-only cookies.
		h.CookieDomain = ""
	}
}

// IsPublicSuffix reports whether domain is itself a public suffix such as "com" or "co.uk".
func IsPublicSuffix(domain string) bool {
	d := strings.TrimPrefix(strings.TrimSuffix(domain, "."), ".")
	if d == "" {
		return false
	}
	suffix, _ := publicsuffix.PublicSuffix(d)
	return suffix == d
}
