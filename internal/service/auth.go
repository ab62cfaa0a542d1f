package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
	apperrors "github.com/target/positions-ui/internal/errors"
	"github.com/target/positions-ui/internal/ports"
)

// DefaultSessionTTL is used when AuthServiceConfig.TTL is zero.
const DefaultSessionTTL = 24 * time.Hour

// Fallback messages shown when the API rejects a request without a message.
const (
	LoginFailedMessage    = "Login failed"
	RegisterFailedMessage = "Registration failed"
)

// AuthServiceConfig holds the tunables for AuthService.
type AuthServiceConfig struct {
	TTL    time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Accounts ports.AccountAPI   // Required
	Sessions ports.SessionStore // Required
	Config   AuthServiceConfig
}

// AuthService exchanges credentials with the remote API and keeps the
// resulting bearer token in a server-side session.
type AuthService struct {
	accounts ports.AccountAPI
	sessions ports.SessionStore
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Accounts == nil {
		panic("AuthService: Accounts is required")
	}
	if opts.Sessions == nil {
		panic("AuthService: Sessions is required")
	}

	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		accounts: opts.Accounts,
		sessions: opts.Sessions,
		ttl:      ttl,
		now:      now,
		logger:   logger.With("component", "auth_service"),
	}
}

// Login authenticates against the remote API and opens a session holding the
// returned token. Rejections from the API are returned unwrapped of any
// session context so callers can read the API message.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	username = strings.TrimSpace(username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "Username is required."
	}
	if password == "" {
		fields["password"] = "Password is required."
	}
	if err := apperrors.ValidationFields(fields); err != nil {
		return nil, err
	}

	token, err := s.accounts.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	now := s.now()
	session := domainauth.Session{
		ID:        generateSessionID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	if saveErr := s.Credentials(session.ID).Save(ctx, token); saveErr != nil {
		return nil, fmt.Errorf("store credential: %w", saveErr)
	}
	session.AccessToken = token

	s.logger.InfoContext(ctx, "user logged in", "session_id_prefix", idPrefix(session.ID))
	return &session, nil
}

// Signup registers a new account. It does not sign the user in.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)

	fields := map[string]string{}
	if in.FirstName == "" {
		fields["firstName"] = "First name is required."
	}
	if in.LastName == "" {
		fields["lastName"] = "Last name is required."
	}
	if in.Username == "" {
		fields["username"] = "Username is required."
	}
	if in.Password == "" {
		fields["password"] = "Password is required."
	}
	if err := apperrors.ValidationFields(fields); err != nil {
		return err
	}

	if err := s.accounts.Signup(ctx, in); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. Expired sessions are deleted and
// reported as not found.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, ports.ErrSessionNotFound, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errors.Join(errSessionExpired, ports.ErrSessionNotFound)
	}

	return &session, nil
}

// Credentials returns the credential store bound to sessionID.
func (s *AuthService) Credentials(sessionID string) *SessionCredentials {
	return NewSessionCredentials(s.sessions, sessionID)
}

// Logout clears the session's credential and deletes the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.Credentials(sessionID).Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "user logged out", "session_id_prefix", idPrefix(sessionID))
	return nil
}

func generateSessionID() string {
	return uuid.NewString()
}

// idPrefix keeps session IDs out of logs while still correlating entries.
func idPrefix(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
