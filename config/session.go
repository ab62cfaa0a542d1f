package config

import (
	"strings"
	"time"
)

const (
	minSessionTTL     = time.Minute
	defaultSessionTTL = 24 * time.Hour
)

// SessionConfig controls how browser sessions and their view state are persisted.
type SessionConfig struct {
	// TTL is how long a session (and the credential it carries) lives in Redis.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// KeyPrefix namespaces session records in Redis.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`

	// ViewStateKeyPrefix namespaces the persisted positions view state.
	ViewStateKeyPrefix string `env:"VIEW_STATE_KEY_PREFIX" envDefault:"view:positions:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = defaultSessionTTL
	}
	if s.TTL < minSessionTTL {
		s.TTL = minSessionTTL
	}
	if strings.TrimSpace(s.KeyPrefix) == "" {
		s.KeyPrefix = "session:"
	}
	if strings.TrimSpace(s.ViewStateKeyPrefix) == "" {
		s.ViewStateKeyPrefix = "view:positions:"
	}
}
