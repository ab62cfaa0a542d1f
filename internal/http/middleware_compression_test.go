package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	body := strings.Repeat("<tr><td>P1</td><td>Engineer</td></tr>", 200)

	serve := func(contentType string, status int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			w.WriteHeader(status)
			if status != http.StatusNoContent {
				_, _ = io.WriteString(w, body)
			}
		})
	}

	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		contentType    string
		status         int
		level          int
		wantGzip       bool
	}{
		{name: "html with gzip", acceptEncoding: "gzip, deflate", contentType: "text/html; charset=utf-8", status: 200, level: 6, wantGzip: true},
		{name: "json with gzip", acceptEncoding: "gzip", contentType: "application/json", status: 200, level: 1, wantGzip: true},
		{name: "best compression", acceptEncoding: "br, gzip", contentType: "text/css", status: 200, level: 9, wantGzip: true},
		{name: "level out of range uses default", acceptEncoding: "gzip", contentType: "text/html", status: 200, level: 42, wantGzip: true},
		{name: "client without gzip", acceptEncoding: "deflate", contentType: "text/html", status: 200, level: 6},
		{name: "no accept-encoding", contentType: "text/html", status: 200, level: 6},
		{name: "gzip disabled with q=0", acceptEncoding: "gzip;q=0, deflate", contentType: "text/html", status: 200, level: 6},
		{name: "binary content", acceptEncoding: "gzip", contentType: "image/png", status: 200, level: 6},
		{name: "no content", acceptEncoding: "gzip", contentType: "text/html", status: http.StatusNoContent, level: 6},
		{name: "head request", method: http.MethodHead, acceptEncoding: "gzip", contentType: "text/html", status: 200, level: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/dashboard", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			Compression(CompressionConfig{Level: tt.level})(serve(tt.contentType, tt.status)).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if !tt.wantGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			assert.Contains(t, w.Header().Values("Vary"), "Accept-Encoding")
			assert.Less(t, w.Body.Len(), len(body))

			gr, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			got, err := io.ReadAll(gr)
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
		})
	}
}

func TestCompression_DetectsContentType(t *testing.T) {
	handler := Compression(CompressionConfig{Level: 6})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<!DOCTYPE html><html><body>"+strings.Repeat("x", 2048)+"</body></html>")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestCompression_RespectsExistingEncoding(t *testing.T) {
	handler := Compression(CompressionConfig{Level: 6})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		_, _ = io.WriteString(w, "already encoded")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "already encoded", w.Body.String())
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("deflate, GZIP;q=0.5"))
	assert.False(t, acceptsGzip(""))
	assert.False(t, acceptsGzip("x-gzip2"))
	assert.False(t, acceptsGzip("gzip; q=0"))
	assert.False(t, acceptsGzip("gzip;q=0.0"))
}
