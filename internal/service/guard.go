package service

import (
	"context"
	"errors"
	"fmt"

	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/ports"
)

// Reasons a Decision is unauthorized.
const (
	ReasonNoCookie     = "no session cookie"
	ReasonNoSession    = "session not found"
	ReasonNoCredential = "no credential"
	ReasonLookupFailed = "session lookup failed"
)

// Decision is the outcome of a guard check. Protected content may only be
// produced once a Decision with Authorized set has been obtained.
type Decision struct {
	Authorized  bool
	Session     *domainauth.Session
	Credentials ports.CredentialStore
	// Reason is set when Authorized is false.
	Reason string
}

// SessionGuard decides whether a request may see protected screens. It only
// checks that a credential is present; the remote API remains the authority
// on whether that credential is still valid.
type SessionGuard struct {
	auth *AuthService
}

// NewSessionGuard constructs a guard over auth's session store.
func NewSessionGuard(auth *AuthService) *SessionGuard {
	if auth == nil {
		panic("SessionGuard: auth service is required")
	}
	return &SessionGuard{auth: auth}
}

// Check resolves sessionID to a Decision. A non-nil error is returned only for
// infrastructure failures; the Decision is unauthorized in that case too.
func (g *SessionGuard) Check(ctx context.Context, sessionID string) (Decision, error) {
	if sessionID == "" {
		return unauthorized(ReasonNoCookie), nil
	}

	session, err := g.auth.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return unauthorized(ReasonNoSession), nil
		}
		return unauthorized(ReasonLookupFailed), fmt.Errorf("guard: %w", err)
	}

	if !session.HasCredential() {
		return unauthorized(ReasonNoCredential), nil
	}

	return Decision{
		Authorized:  true,
		Session:     session,
		Credentials: g.auth.Credentials(session.ID),
	}, nil
}

func unauthorized(reason string) Decision {
	return Decision{Reason: reason}
}
