package ports

// Package ports defines interfaces (hexagonal ports) for sessions, credentials
// and the remote positions API. Implementations live in internal/adapters and
// internal/apiclient; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/positions-ui/internal/domain/auth"
)

// ErrNoCredential is returned by CredentialStore.Get when no token is stored.
var ErrNoCredential = errors.New("no credential stored")

// ErrSessionNotFound is matched (via errors.Is) by SessionStore.Get errors for
// unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// CredentialStore holds the current bearer token for one browser session or CLI user.
// After Save(t), Get returns t until the next Save or Clear.
type CredentialStore interface {
	Save(ctx context.Context, token string) error
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// SessionStore persists and retrieves browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SignupInput is the registration form forwarded to the remote API.
type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// AccountAPI covers the unauthenticated endpoints of the remote API.
type AccountAPI interface {
	// Login exchanges a username and password for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)
	// Signup registers a new account.
	Signup(ctx context.Context, in SignupInput) error
}
