package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMXDetection(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		htmx    bool
		partial bool
	}{
		{name: "plain request"},
		{name: "htmx request", headers: map[string]string{"Hx-Request": "true"}, htmx: true, partial: true},
		{name: "case insensitive", headers: map[string]string{"Hx-Request": "TRUE"}, htmx: true, partial: true},
		{name: "boosted navigation", headers: map[string]string{"Hx-Request": "true", "Hx-Boosted": "true"}, htmx: true},
		{name: "boosted without htmx header", headers: map[string]string{"Hx-Boosted": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.htmx, IsHTMX(r))
			assert.Equal(t, tt.partial, WantsPartial(r))
		})
	}
}

func TestHTMXRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	HTMX(w).Redirect("/login")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Hx-Redirect"))
	assert.Empty(t, w.Body.String())
}

func TestRedirect_ChoosesByClient(t *testing.T) {
	t.Run("browser gets 303", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/dashboard/positions", nil)
		redirect(w, r, "/dashboard")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
		assert.Empty(t, w.Header().Get("Hx-Redirect"))
	})

	t.Run("htmx gets Hx-Redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/dashboard/positions", nil)
		r.Header.Set("Hx-Request", "true")
		redirect(w, r, "/dashboard")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Hx-Redirect"))
		assert.Empty(t, w.Header().Get("Location"))
	})
}
