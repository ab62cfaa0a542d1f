package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
	mockauth "github.com/target/positions-ui/internal/mocks/auth"
	"github.com/target/positions-ui/internal/service"
)

type fakeChecker struct {
	decision service.Decision
	err      error
	seen     string
}

func (f *fakeChecker) Check(_ context.Context, sessionID string) (service.Decision, error) {
	f.seen = sessionID
	return f.decision, f.err
}

func protectedHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		sess := GetSessionFromContext(r.Context())
		creds, ok := GetCredentialsFromContext(r.Context())
		if sess == nil || !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		token, err := creds.Get(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(sess.ID + ":" + token))
	})
}

func sessionCookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRequireSession_Authorized(t *testing.T) {
	ctx := context.Background()
	sessions := mockauth.NewMemorySessionStore()
	sess := domainauth.Session{ID: "sid-1", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, sess))

	checker := &fakeChecker{decision: service.Decision{
		Authorized:  true,
		Session:     &sess,
		Credentials: service.NewSessionCredentials(sessions, sess.ID),
	}}

	var reached bool
	handler := RequireSession(SessionMiddlewareConfig{Guard: checker})(protectedHandler(&reached))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid-1"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sid-1:tok", w.Body.String())
	assert.Equal(t, "sid-1", checker.seen)
	assert.Nil(t, sessionCookieFrom(w))
}

func TestRequireSession_Unauthorized(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		htmx        bool
		cookie      string
		reason      string
		err         error
		status      int
		location    string
		hxRedirect  string
		clearCookie bool
	}{
		{
			name:     "browser without cookie",
			path:     "/dashboard",
			reason:   service.ReasonNoCookie,
			status:   http.StatusSeeOther,
			location: "/login",
		},
		{
			name:        "browser with stale cookie",
			path:        "/dashboard",
			cookie:      "gone",
			reason:      service.ReasonNoSession,
			status:      http.StatusSeeOther,
			location:    "/login",
			clearCookie: true,
		},
		{
			name:        "htmx request without credential",
			path:        "/dashboard/positions/refresh",
			htmx:        true,
			cookie:      "sid",
			reason:      service.ReasonNoCredential,
			status:      http.StatusNoContent,
			hxRedirect:  "/login",
			clearCookie: true,
		},
		{
			name:   "api request",
			path:   "/api/session",
			reason: service.ReasonNoCookie,
			status: http.StatusUnauthorized,
		},
		{
			name:     "lookup failure keeps cookie",
			path:     "/dashboard",
			cookie:   "sid",
			reason:   service.ReasonLookupFailed,
			err:      errors.New("redis down"),
			status:   http.StatusSeeOther,
			location: "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeChecker{decision: service.Decision{Reason: tt.reason}, err: tt.err}
			var reached bool
			handler := RequireSession(SessionMiddlewareConfig{Guard: checker})(protectedHandler(&reached))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", "text/html")
			if tt.htmx {
				req.Header.Set("Hx-Request", "true")
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, reached, "protected handler must not run")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
			assert.Equal(t, tt.hxRedirect, w.Header().Get("Hx-Redirect"))

			if tt.status == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "authentication_required", body["error"])
			} else {
				assert.NotContains(t, w.Body.String(), "Welcome")
			}

			c := sessionCookieFrom(w)
			if tt.clearCookie {
				require.NotNil(t, c)
				assert.Empty(t, c.Value)
				assert.Negative(t, c.MaxAge)
			} else {
				assert.Nil(t, c)
			}
		})
	}
}

func TestOptionalSession(t *testing.T) {
	sess := &domainauth.Session{ID: "sid"}

	handler := func(checker SessionChecker) http.Handler {
		return OptionalSession(SessionMiddlewareConfig{Guard: checker})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := GetSessionFromContext(r.Context()); s != nil {
				_, _ = w.Write([]byte(s.ID))
				return
			}
			_, _ = w.Write([]byte("anonymous"))
		}))
	}

	t.Run("authorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(&fakeChecker{decision: service.Decision{Authorized: true, Session: sess}}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "sid", w.Body.String())
	})

	t.Run("unauthorized passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(&fakeChecker{decision: service.Decision{Reason: service.ReasonNoCookie}}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("lookup failure passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(&fakeChecker{err: errors.New("boom")}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "anonymous", w.Body.String())
	})
}

func TestSessionMiddleware_RequiresGuard(t *testing.T) {
	assert.Panics(t, func() { RequireSession(SessionMiddlewareConfig{}) })
	assert.Panics(t, func() { OptionalSession(SessionMiddlewareConfig{}) })
}
