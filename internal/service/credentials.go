package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/target/positions-ui/internal/ports"
)

var _ ports.CredentialStore = (*SessionCredentials)(nil)

// SessionCredentials is the credential store of one browser session. The
// token is the AccessToken field of the session record, so it lives exactly
// as long as the session does.
type SessionCredentials struct {
	sessions  ports.SessionStore
	sessionID string
}

// NewSessionCredentials binds a credential store to sessionID.
func NewSessionCredentials(sessions ports.SessionStore, sessionID string) *SessionCredentials {
	if sessions == nil {
		panic("SessionCredentials: sessions is required")
	}
	return &SessionCredentials{sessions: sessions, sessionID: sessionID}
}

// SessionID returns the session this store is bound to.
func (c *SessionCredentials) SessionID() string { return c.sessionID }

// Save replaces the session's token. The session must already exist.
func (c *SessionCredentials) Save(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	sess, err := c.sessions.Get(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	sess.AccessToken = token
	if err := c.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns ports.ErrNoCredential when the session is gone or carries no token.
func (c *SessionCredentials) Get(ctx context.Context) (string, error) {
	if c.sessionID == "" {
		return "", ports.ErrNoCredential
	}
	sess, err := c.sessions.Get(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return "", ports.ErrNoCredential
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	if !sess.HasCredential() {
		return "", ports.ErrNoCredential
	}
	return sess.AccessToken, nil
}

// Clear removes the token and keeps the session record. A missing session is
// already clear.
func (c *SessionCredentials) Clear(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	sess, err := c.sessions.Get(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}
	if !sess.HasCredential() {
		return nil
	}
	sess.AccessToken = ""
	if err := c.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
