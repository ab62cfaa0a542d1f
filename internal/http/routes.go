package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	positionsui "github.com/target/positions-ui"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth      AuthService      // Required
	Guard     SessionChecker   // Required
	Positions PositionsService // Required
	// Health is pinged by /healthz; nil reports healthy.
	Health       Pinger
	CookieDomain string
	// TemplateFS overrides where templates are read from (tests).
	TemplateFS fs.FS
	IsDev      bool // read templates from disk
	Logger     *slog.Logger
}

// NewRouter wires the browser screens, the session API and the health check
// behind CSRF protection, custom 404 handling and browser detection.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Guard == nil || services.Positions == nil {
		return nil, errors.New("router: Auth, Guard and Positions are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := resolveAssetFS(services.IsDev)
	if err != nil {
		return nil, err
	}
	if services.TemplateFS != nil {
		templateFS = services.TemplateFS
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{Positions: services.Positions, T: tr, Logger: logger}
	auth := &AuthHandlers{
		Svc:          services.Auth,
		Guard:        services.Guard,
		Positions:    services.Positions,
		T:            tr,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	sessions := SessionMiddlewareConfig{Guard: services.Guard, CookieDomain: services.CookieDomain, Logger: logger}

	mux := http.NewServeMux()
	health := HealthHandler(services.Health, logger)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	registerAuthRoutes(mux, auth)
	registerUIRoutes(mux, ui, sessions)

	var h http.Handler = &notFoundHandler{mux: mux, ui: ui}
	h = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(h)
	return BrowserDetection()(h), nil
}

// resolveAssetFS returns the template and static filesystems: from disk in
// dev mode, embedded otherwise.
func resolveAssetFS(isDev bool) (fs.FS, fs.FS, error) {
	if isDev {
		return os.DirFS(TemplatePathFromRoot), os.DirFS(StaticPathFromRoot), nil
	}
	templates, err := fs.Sub(positionsui.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded templates: %w", err)
	}
	static, err := fs.Sub(positionsui.StaticFS, StaticPathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded static assets: %w", err)
	}
	return templates, static, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("GET /signup", h.RegisterPage)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.SessionStatus)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg SessionMiddlewareConfig) {
	mux.Handle("GET /{$}", OptionalSession(cfg)(http.HandlerFunc(h.Landing)))

	guarded := RequireSession(cfg)
	protect := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, guarded(fn))
	}
	protect("GET /dashboard", h.Dashboard)
	protect("POST /dashboard/positions", h.CreatePosition)
	protect("POST /dashboard/positions/cancel", h.CancelEdit)
	protect("POST /dashboard/positions/refresh", h.RefreshPositions)
	protect("POST /dashboard/positions/{id}/edit", h.EditPosition)
	protect("POST /dashboard/positions/{id}", h.UpdatePosition)
	protect("GET /dashboard/positions/{id}/delete", h.DeleteConfirm)
	protect("POST /dashboard/positions/{id}/delete", h.DeletePosition)
}

// notFoundHandler wraps a ServeMux and renders its 404s with the app's page.
type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound {
		h.ui.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	// Client disconnects can't be recovered from here.
	_, _ = c.buf.WriteTo(w)
}
