package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/target/positions-ui/internal/observability/metrics"
	"github.com/target/positions-ui/internal/observability/statsd"
	"github.com/target/positions-ui/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Metrics records a count and a timing per request, tagged by route group
// and status class.
func Metrics(sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			metrics.EmitRequest(sink, metrics.Request{
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   ww.status,
				Duration: time.Since(start),
			})
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionChecker resolves a session cookie to a guard decision.
type SessionChecker interface {
	Check(ctx context.Context, sessionID string) (service.Decision, error)
}

// SessionMiddlewareConfig configures RequireSession and OptionalSession.
type SessionMiddlewareConfig struct {
	Guard        SessionChecker // Required
	CookieDomain string
	Logger       *slog.Logger
}

func (c SessionMiddlewareConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// RequireSession gates protected screens on a session that carries a credential.
// Unauthorized requests get exactly one redirect to the login page and no body:
// Hx-Redirect for htmx, 303 for plain browser requests, 401 JSON for API calls.
// Authorized requests carry the session and its credential store in the context.
func RequireSession(cfg SessionMiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		panic("RequireSession: Guard is required")
	}
	logger := cfg.logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := cfg.Guard.Check(r.Context(), sessionIDFromRequest(r))
			if err != nil {
				logger.ErrorContext(r.Context(), "session check failed", "error", err)
			}

			if !decision.Authorized {
				// A cookie that no longer resolves to a usable session is dropped.
				if err == nil && decision.Reason != service.ReasonNoCookie {
					clearCookie(w, r, cookieParams{Name: SessionCookieName, Domain: cfg.CookieDomain})
				}
				denyUnauthorized(w, r)
				return
			}

			ctx := SetSessionInContext(r.Context(), decision.Session)
			ctx = SetCredentialsInContext(ctx, decision.Credentials)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession adds the session to the context when the request carries
// an authorized one and otherwise passes the request through untouched.
func OptionalSession(cfg SessionMiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		panic("OptionalSession: Guard is required")
	}
	logger := cfg.logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := cfg.Guard.Check(r.Context(), sessionIDFromRequest(r))
			if err != nil {
				logger.WarnContext(r.Context(), "optional session check failed", "error", err)
			}
			if decision.Authorized {
				ctx := SetSessionInContext(r.Context(), decision.Session)
				r = r.WithContext(SetCredentialsInContext(ctx, decision.Credentials))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthorized(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	redirect(w, r, pathLogin)
}

func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that records whether the request came
// from a browser, so handlers can choose between HTML and JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats /api/ and /static/ paths as non-browser, htmx as
// browser, and otherwise looks for text/html in Accept (absent Accept counts
// as a browser).
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}
