package httpx

import (
	"errors"
	"net/http"
)

// Landing offers the login and sign-up links. A signed-in browser goes
// straight to the dashboard.
// GET /{$}.
func (h *UIHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	if GetSessionFromContext(r.Context()) != nil {
		redirect(w, r, pathDashboard)
		return
	}
	data := NewTemplateData(r, PageMeta{CurrentPage: PageLanding}).Build()
	if err := h.T.Render(w, r, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFound renders an HTML 404 page for browsers and a JSON error otherwise.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("not found"),
		})
		return
	}

	data := NewTemplateData(r, PageMeta{Title: "Page Not Found", CurrentPage: PageNotFound}).
		WithStatus(http.StatusNotFound).
		With("Code", "404").
		With("Message", "The page you're looking for doesn't exist.").
		Build()
	if h.T == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	if err := h.T.Render(w, r, data); err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}
