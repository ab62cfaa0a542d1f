package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/service"
)

// UIHandlers serves the landing page and the positions dashboard.
type UIHandlers struct {
	Positions PositionsService
	T         *TemplateRenderer
	Logger    *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Dashboard renders the welcome line, the bearer token, the positions table,
// the create/edit form and any inline error.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, creds, ok := sessionFromRequest(r)
	if !ok {
		redirect(w, r, pathLogin)
		return
	}

	// Both loads always run to completion so a failed token read does not
	// leave a cancelled list request behind in the persisted view.
	var (
		g     errgroup.Group
		view  position.ViewState
		token string
	)
	g.Go(func() error {
		v, err := h.Positions.Dashboard(r.Context(), session.ID, creds)
		view = v
		return err
	})
	g.Go(func() error {
		t, err := creds.Get(r.Context())
		token = t
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ports.ErrNoCredential) {
			redirect(w, r, pathLogin)
			return
		}
		h.logger().ErrorContext(r.Context(), "load dashboard failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The dashboard could not be loaded. Please try again.")
		return
	}

	identity := service.DisplayIdentity(token)
	data := NewTemplateData(r, PageMeta{Title: "Dashboard", CurrentPage: PageDashboard}).
		WithError(view.Error).
		WithFieldErrors(view.FieldErrors).
		With("Username", identity.DisplayName()).
		With("Token", token).
		With("Positions", view.Positions).
		With("Loaded", view.Loaded).
		With("State", view.State.String()).
		With("Draft", view.Draft)
	if id, editing := view.Draft.Editing(); editing {
		data.With("Mode", FormModeEdit).With("EditingID", id)
	} else {
		data.With("Mode", FormModeCreate)
	}

	if err := h.T.Render(w, r, data.Build()); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// CreatePosition submits the form as a new position.
// POST /dashboard/positions.
func (h *UIHandlers) CreatePosition(w http.ResponseWriter, r *http.Request) {
	in := positionInputFromForm(r)
	h.mutate(w, r, func(ctx context.Context, c *service.PositionController) error {
		return c.Create(ctx, in)
	})
}

// EditPosition loads a cached position into the form.
// POST /dashboard/positions/{id}/edit.
func (h *UIHandlers) EditPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.positionID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(_ context.Context, c *service.PositionController) error {
		if p, found := position.Find(c.Snapshot().Positions, id); found {
			c.BeginEdit(p)
		}
		return nil
	})
}

// UpdatePosition submits the form for an existing position.
// POST /dashboard/positions/{id}.
func (h *UIHandlers) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.positionID(w, r)
	if !ok {
		return
	}
	in := positionInputFromForm(r)
	h.mutate(w, r, func(ctx context.Context, c *service.PositionController) error {
		return c.Update(ctx, id, in)
	})
}

// CancelEdit clears the form.
// POST /dashboard/positions/cancel.
func (h *UIHandlers) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, c *service.PositionController) error {
		c.CancelEdit()
		return nil
	})
}

// RefreshPositions re-fetches the list.
// POST /dashboard/positions/refresh.
func (h *UIHandlers) RefreshPositions(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, c *service.PositionController) error {
		return c.List(ctx)
	})
}

// DeleteConfirm asks the user to confirm a delete.
// GET /dashboard/positions/{id}/delete.
func (h *UIHandlers) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.positionID(w, r)
	if !ok {
		return
	}
	session, creds, ok := sessionFromRequest(r)
	if !ok {
		redirect(w, r, pathLogin)
		return
	}

	var (
		target position.Position
		found  bool
	)
	err := h.Positions.Run(r.Context(), session.ID, creds, func(c *service.PositionController) error {
		target, found = position.Find(c.Snapshot().Positions, id)
		return nil
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "load view state failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The position could not be loaded. Please try again.")
		return
	}
	if !found {
		redirect(w, r, pathDashboard)
		return
	}

	data := NewTemplateData(r, PageMeta{Title: "Delete position", CurrentPage: PageDeleteConfirm}).
		With("Position", target).
		Build()
	if err := h.T.Render(w, r, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// DeletePosition deletes a position once the form carries confirm=yes.
// POST /dashboard/positions/{id}/delete.
func (h *UIHandlers) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.positionID(w, r)
	if !ok {
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"
	confirm := ports.ConfirmFunc(func(context.Context, position.Position) bool { return confirmed })
	h.mutate(w, r, func(ctx context.Context, c *service.PositionController) error {
		return c.Delete(ctx, id, confirm)
	})
}

// mutate runs fn on the session's controller and redirects back to the
// dashboard, where any failure is shown inline from the persisted view.
func (h *UIHandlers) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, *service.PositionController) error) {
	session, creds, ok := sessionFromRequest(r)
	if !ok {
		redirect(w, r, pathLogin)
		return
	}

	err := h.Positions.Run(r.Context(), session.ID, creds, func(c *service.PositionController) error {
		return fn(r.Context(), c)
	})
	switch {
	case err == nil, errors.Is(err, service.ErrDeleteNotConfirmed):
	case errors.Is(err, ports.ErrNoCredential):
		redirect(w, r, pathLogin)
		return
	default:
		h.logger().InfoContext(r.Context(), "positions operation failed", "error", err)
	}
	redirect(w, r, pathDashboard)
}

func (h *UIHandlers) positionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := NewTemplateData(r, PageMeta{Title: http.StatusText(status)}).
		WithStatus(status).
		With("Code", strconv.Itoa(status)).
		With("Message", message).
		Build()
	if err := h.T.RenderError(w, r, data); err != nil {
		http.Error(w, message, status)
	}
}

func sessionFromRequest(r *http.Request) (*domainauth.Session, ports.CredentialStore, bool) {
	session := GetSessionFromContext(r.Context())
	creds, ok := GetCredentialsFromContext(r.Context())
	if session == nil || !ok {
		return nil, nil, false
	}
	return session, creds, true
}

func positionInputFromForm(r *http.Request) position.Input {
	return position.Input{
		PositionCode: r.PostFormValue("positionCode"),
		PositionName: r.PostFormValue("positionName"),
	}
}
