package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/positions-ui/internal/domain/position"
	mockauth "github.com/target/positions-ui/internal/mocks/auth"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "http://api", MessagePath: "[invalid"})
	require.Error(t, err)
}

func TestClient_AttachesBearerAndJSONHeaders(t *testing.T) {
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		assert.Equal(t, "/v1/positions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore("T")
	c := newTestClient(t, srv.URL+"/v1/").WithCredentials(store)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/positions", nil, nil))
	assert.Equal(t, "Bearer T", seen.Get("Authorization"))
	assert.Equal(t, "application/json", seen.Get("Content-Type"))
}

func TestClient_ReadsTokenFreshOnEveryCall(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	first := api.IssueToken("alice")
	second := api.IssueToken("bob")

	store := mockauth.NewMemoryCredentialStore(first)
	positions := NewPositionsClient(newTestClient(t, api.URL()), store)
	ctx := context.Background()

	_, err := positions.List(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, second))
	_, err = positions.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer " + first, "Bearer " + second}, api.Authorizations())
}

func TestClient_AuthMissingSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL).WithCredentials(mockauth.NewMemoryCredentialStore(""))
	err := c.Do(context.Background(), http.MethodPost, "/positions", position.Input{PositionCode: "P1"}, nil)

	require.ErrorIs(t, err, ErrAuthMissing)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestClient_StoreFailureIsNotAuthMissing(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1").WithCredentials(failingStore{})
	err := c.Do(context.Background(), http.MethodGet, "/positions", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthMissing)
	assert.Contains(t, err.Error(), "read credential")
}

type failingStore struct{}

func (failingStore) Save(context.Context, string) error { return nil }
func (failingStore) Get(context.Context) (string, error) {
	return "", errors.New("redis down")
}
func (failingStore) Clear(context.Context) error { return nil }

var _ ports.CredentialStore = failingStore{}

func TestClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantUser    string
	}{
		{
			name:        "json message",
			status:      http.StatusBadRequest,
			body:        `{"message":"Position code already exists"}`,
			wantMessage: "Position code already exists",
			wantUser:    "Position code already exists",
		},
		{
			name:     "json without message",
			status:   http.StatusInternalServerError,
			body:     `{"error":"boom"}`,
			wantUser: "Request failed with status 500.",
		},
		{
			name:     "non json body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantUser: "Request failed with status 502.",
		},
		{
			name:     "non string message",
			status:   http.StatusConflict,
			body:     `{"message":{"nested":true}}`,
			wantUser: "Request failed with status 409.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := newTestClient(t, srv.URL).Do(context.Background(), http.MethodGet, "/anything", nil, nil)
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			assert.Equal(t, tt.wantUser, reqErr.UserMessage())
			assert.Equal(t, tt.wantUser, UserMessage(err, ""))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestClient(t, url).Do(context.Background(), http.MethodGet, "/positions", nil, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.Status)
	assert.Contains(t, reqErr.UserMessage(), "Unable to reach")
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"`)
	}))
	defer srv.Close()

	var out []position.Position
	err := newTestClient(t, srv.URL).Do(context.Background(), http.MethodGet, "/positions", nil, &out)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, decErr.UserMessage(), UserMessage(err, "fallback"))
}

func TestClient_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in position.Input
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/positions/4", r.URL.Path)
		_ = json.NewEncoder(w).Encode(position.Position{ID: 4, PositionCode: in.PositionCode, PositionName: in.PositionName})
	}))
	defer srv.Close()

	positions := NewPositionsClient(newTestClient(t, srv.URL), mockauth.NewMemoryCredentialStore("T"))
	got, err := positions.Update(context.Background(), 4, position.Input{PositionCode: "P4", PositionName: "Lead"})
	require.NoError(t, err)
	assert.Equal(t, position.Position{ID: 4, PositionCode: "P4", PositionName: "Lead"}, got)
}

type callSink struct{ results []string }

func (s *callSink) Count(name string, _ int64, tags map[string]string) {
	if name == "api.calls" {
		s.results = append(s.results, tags["method"]+" "+tags["status"]+" "+tags["result"])
	}
}

func (s *callSink) Timing(string, time.Duration, map[string]string) {}

func TestClient_EmitsCallMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	sink := &callSink{}
	c, err := New(Config{BaseURL: srv.URL, Metrics: sink})
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/positions", nil, nil))
	require.Error(t, c.Do(context.Background(), http.MethodDelete, "/positions/1", nil, nil))

	// No request is sent without a credential, so nothing is recorded.
	err = c.WithCredentials(mockauth.NewMemoryCredentialStore("")).Do(context.Background(), http.MethodGet, "/positions", nil, nil)
	require.ErrorIs(t, err, ErrAuthMissing)

	assert.Equal(t, []string{"GET 2xx ok", "DELETE 4xx rejected"}, sink.results)
}
