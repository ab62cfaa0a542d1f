package config

import (
	"strings"
	"time"
)

// DefaultAPIBaseURL is used when API_BASE_URL is unset.
const DefaultAPIBaseURL = "http://localhost:4000"

// APIConfig configures the outbound client for the remote positions API.
type APIConfig struct {
	// BaseURL is prepended to every request path (e.g. "/positions").
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:4000"`

	// Timeout bounds a single outbound request.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`

	// TokenPath is the JMESPath expression that selects the bearer token from the login response.
	TokenPath string `env:"API_TOKEN_PATH" envDefault:"accessToken"`

	// MessagePath is the JMESPath expression that selects the error message from a failed response.
	MessagePath string `env:"API_MESSAGE_PATH" envDefault:"message"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.BaseURL == "" {
		a.BaseURL = DefaultAPIBaseURL
	}
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(a.TokenPath) == "" {
		a.TokenPath = "accessToken"
	}
	if strings.TrimSpace(a.MessagePath) == "" {
		a.MessagePath = "message"
	}
}
