package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/positions-ui/internal/apiclient"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/http/validation"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/service"
)

const (
	maxNameLen     = 100
	maxUsernameLen = 100
	maxPasswordLen = 256

	registerSuccessMessage = "Account created successfully!"
)

// AuthService covers login, registration and logout.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domainauth.Session, error)
	Signup(ctx context.Context, in ports.SignupInput) error
	Logout(ctx context.Context, sessionID string) error
}

// PositionsService runs controller operations against a session's persisted view.
type PositionsService interface {
	Run(ctx context.Context, sessionID string, creds ports.CredentialStore, fn func(*service.PositionController) error) error
	Dashboard(ctx context.Context, sessionID string, creds ports.CredentialStore) (position.ViewState, error)
	Forget(ctx context.Context, sessionID string) error
}

var (
	_ AuthService      = (*service.AuthService)(nil)
	_ PositionsService = (*service.PositionsService)(nil)
	_ SessionChecker   = (*service.SessionGuard)(nil)
)

// AuthHandlers serves the login, registration and logout screens.
type AuthHandlers struct {
	Svc          AuthService
	Guard        SessionChecker
	Positions    PositionsService
	T            *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginForm struct {
	Username string
	Password string
}

type registerForm struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
}

// LoginPage renders the login form.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, NewTemplateData(r, loginMeta).Build())
}

// Login exchanges the submitted credentials for a session.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var session *domainauth.Session
	HandleForm(FormHandlerOpts[loginForm]{
		W: w, R: r,
		Parser: parseLoginForm,
		Submit: func(ctx context.Context, f loginForm) error {
			s, err := h.Svc.Login(ctx, f.Username, f.Password)
			session = s
			return err
		},
		Renderer: h.renderForm,
		PageMeta: loginMeta,
		HandleError: func(err error) (map[string]string, string) {
			h.logger().InfoContext(r.Context(), "login rejected", "error", err)
			return nil, apiclient.UserMessage(err, service.LoginFailedMessage)
		},
		OnSuccess: func(w http.ResponseWriter, r *http.Request) {
			h.replaceSession(w, r, session)
			redirect(w, r, pathDashboard)
		},
	})
}

// replaceSession ends any session the browser still carries and issues the new cookie.
func (h *AuthHandlers) replaceSession(w http.ResponseWriter, r *http.Request, s *domainauth.Session) {
	if old := sessionIDFromRequest(r); old != "" && old != s.ID {
		h.endSession(r.Context(), old)
	}
	setCookie(w, r, cookieParams{
		Name:    SessionCookieName,
		Value:   s.ID,
		Domain:  h.CookieDomain,
		Expires: s.ExpiresAt,
	})
}

// RegisterPage renders the registration form.
// GET /register and GET /signup.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, NewTemplateData(r, registerMeta).Build())
}

// Register creates an account and shows a success page that moves on to the login screen.
// POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	HandleForm(FormHandlerOpts[registerForm]{
		W: w, R: r,
		Parser: parseRegisterForm,
		Submit: func(ctx context.Context, f registerForm) error {
			return h.Svc.Signup(ctx, ports.SignupInput{
				FirstName: f.FirstName,
				LastName:  f.LastName,
				Username:  f.Username,
				Password:  f.Password,
			})
		},
		Renderer: h.renderForm,
		PageMeta: registerMeta,
		HandleError: func(err error) (map[string]string, string) {
			h.logger().InfoContext(r.Context(), "registration rejected", "error", err)
			return nil, apiclient.UserMessage(err, service.RegisterFailedMessage)
		},
		OnSuccess: func(w http.ResponseWriter, r *http.Request) {
			data := NewTemplateData(r, PageMeta{Title: "Account created", CurrentPage: PageRegisterSuccess}).
				With("Message", registerSuccessMessage).
				With("RedirectToLogin", true).
				Build()
			if err := h.T.Render(w, r, data); err != nil {
				http.Error(w, registerSuccessMessage, http.StatusInternalServerError)
			}
		},
	})
}

// Logout clears the session's credential and view state, drops the cookie and
// returns to the login screen.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		h.endSession(r.Context(), id)
	}
	clearCookie(w, r, cookieParams{Name: SessionCookieName, Domain: h.CookieDomain})
	redirect(w, r, pathLogin)
}

func (h *AuthHandlers) endSession(ctx context.Context, id string) {
	if err := h.Svc.Logout(ctx, id); err != nil {
		h.logger().WarnContext(ctx, "logout failed", "error", err)
	}
	if h.Positions != nil {
		if err := h.Positions.Forget(ctx, id); err != nil {
			h.logger().WarnContext(ctx, "forget view state failed", "error", err)
		}
	}
}

// SessionStatus reports whether the request carries an authorized session.
// The token itself is never returned.
// GET /api/session.
func (h *AuthHandlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	decision, err := h.Guard.Check(r.Context(), sessionIDFromRequest(r))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session status check failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_store_unavailable",
			Err:     errors.New("session store unavailable"),
		})
		return
	}
	if !decision.Authorized {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user := map[string]any{"username": domainauth.GuestName}
	if token, err := decision.Credentials.Get(r.Context()); err == nil {
		id := service.DisplayIdentity(token)
		user["username"] = id.DisplayName()
		if id.Subject != "" {
			user["subject"] = id.Subject
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
		"expires_at":    decision.Session.ExpiresAt,
	})
}

//nolint:gochecknoglobals // static page metadata
var (
	loginMeta    = PageMeta{Title: "Login", CurrentPage: PageLogin}
	registerMeta = PageMeta{Title: "Sign Up", CurrentPage: PageRegister}
)

func (h *AuthHandlers) renderForm(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if err := h.T.Render(w, r, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render form failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func parseLoginForm(r *http.Request) (loginForm, map[string]string) {
	f := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	errs := validation.New().
		Validate("username", f.Username, validation.Required("Username", maxUsernameLen)).
		Validate("password", f.Password, validation.Required("Password", maxPasswordLen)).
		Errors()
	return f, errs
}

func parseRegisterForm(r *http.Request) (registerForm, map[string]string) {
	f := registerForm{
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password:  r.PostFormValue("password"),
	}
	errs := validation.New().
		Validate("firstName", f.FirstName, validation.Required("First name", maxNameLen)).
		Validate("lastName", f.LastName, validation.Required("Last name", maxNameLen)).
		Validate("username", f.Username, validation.Required("Username", maxUsernameLen), validation.NoSpaces("Username")).
		Validate("password", f.Password, validation.Required("Password", maxPasswordLen)).
		Errors()
	return f, errs
}

// cookieParams groups cookie attributes for setCookie and clearCookie.
type cookieParams struct {
	Name    string
	Value   string
	Domain  string
	Expires time.Time
}

func setCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	c := &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
	if !p.Expires.IsZero() {
		c.MaxAge = max(int(time.Until(p.Expires).Seconds()), 1)
	}
	http.SetCookie(w, c)
}

// clearCookie mirrors the attributes used by setCookie so browsers match and drop it.
func clearCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
