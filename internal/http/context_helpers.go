package httpx

import (
	"context"

	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/ports"
)

// Unexported context key types to avoid collisions across packages.
type (
	sessionKey     struct{}
	credentialsKey struct{}
)

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session stored by RequireSession, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && s != nil {
		return s
	}
	return nil
}

// SetCredentialsInContext stores the credential store bound to the request's session.
func SetCredentialsInContext(ctx context.Context, creds ports.CredentialStore) context.Context {
	if creds == nil {
		return ctx
	}
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// GetCredentialsFromContext returns the session's credential store and whether one is present.
func GetCredentialsFromContext(ctx context.Context) (ports.CredentialStore, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(ports.CredentialStore)
	return creds, ok && creds != nil
}
