package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/target/positions-ui/internal/domain/position"
)

// FakeAPI is an in-memory stand-in for the remote positions API.
// It implements /login, /signup and the /positions resource and records the
// Authorization header of every positions request.
type FakeAPI struct {
	Server *httptest.Server

	t         TestingTB
	mu        sync.Mutex
	users     map[string]string
	tokens    map[string]string
	positions []position.Position
	nextID    int
	auth      []string
	failures  map[string][]fakeFailure
	hits      map[string]int
}

type fakeFailure struct {
	status int
	body   string
}

// NewFakeAPI starts the fake server; it is closed on test cleanup.
func NewFakeAPI(t TestingTB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		t:        t,
		users:    map[string]string{},
		tokens:   map[string]string{},
		nextID:   1,
		failures: map[string][]fakeFailure{},
		hits:     map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", f.handleLogin)
	mux.HandleFunc("POST /signup", f.handleSignup)
	mux.HandleFunc("GET /positions", f.authed(f.handleList))
	mux.HandleFunc("POST /positions", f.authed(f.handleCreate))
	mux.HandleFunc("PATCH /positions/{id}", f.authed(f.handleUpdate))
	mux.HandleFunc("DELETE /positions/{id}", f.authed(f.handleDelete))

	f.Server = httptest.NewServer(f.withFailures(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL of the fake API.
func (f *FakeAPI) URL() string { return f.Server.URL }

// AddUser registers an account that can log in.
func (f *FakeAPI) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// IssueToken returns a valid bearer token for username without going through /login.
func (f *FakeAPI) IssueToken(username string) string {
	token := MakeToken(f.t, jwt.MapClaims{
		"sub":      username,
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	f.mu.Lock()
	f.tokens[token] = username
	f.mu.Unlock()
	return token
}

// Seed inserts positions directly and returns them with their assigned IDs.
func (f *FakeAPI) Seed(inputs ...position.Input) []position.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]position.Position, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, f.insertLocked(in))
	}
	return out
}

// Positions returns a copy of the server-side list.
func (f *FakeAPI) Positions() []position.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]position.Position(nil), f.positions...)
}

// Authorizations returns the Authorization headers seen on positions requests, in order.
func (f *FakeAPI) Authorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

// Hits returns how many requests reached "METHOD /path".
func (f *FakeAPI) Hits(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

// FailNext makes the next request to "METHOD /path" return status with body.
func (f *FakeAPI) FailNext(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.failures[key] = append(f.failures[key], fakeFailure{status: status, body: body})
}

func (f *FakeAPI) withFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.hits[key]++
		queued := f.failures[key]
		var fail *fakeFailure
		if len(queued) > 0 {
			fail = &queued[0]
			f.failures[key] = queued[1:]
		}
		f.mu.Unlock()

		if fail != nil {
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		f.mu.Lock()
		f.auth = append(f.auth, header)
		_, ok := f.tokens[strings.TrimPrefix(header, "Bearer ")]
		f.mu.Unlock()
		if !strings.HasPrefix(header, "Bearer ") || !ok {
			writeFakeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	f.mu.Lock()
	password, ok := f.users[body.Username]
	f.mu.Unlock()
	if !ok || password != body.Password {
		writeFakeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
		return
	}
	writeFakeJSON(w, http.StatusOK, map[string]string{"accessToken": f.IssueToken(body.Username)})
}

func (f *FakeAPI) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Username  string `json:"username"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[body.Username]; exists {
		writeFakeJSON(w, http.StatusConflict, map[string]string{"message": "Username already taken"})
		return
	}
	f.users[body.Username] = body.Password
	writeFakeJSON(w, http.StatusCreated, map[string]string{})
}

func (f *FakeAPI) handleList(w http.ResponseWriter, _ *http.Request) {
	list := f.Positions()
	if list == nil {
		list = []position.Position{}
	}
	writeFakeJSON(w, http.StatusOK, list)
}

func (f *FakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in position.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.PositionCode == "" || in.PositionName == "" {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "positionCode and positionName are required"})
		return
	}
	f.mu.Lock()
	p := f.insertLocked(in)
	f.mu.Unlock()
	writeFakeJSON(w, http.StatusCreated, p)
}

func (f *FakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid id"})
		return
	}
	var in position.Input
	if decodeErr := json.NewDecoder(r.Body).Decode(&in); decodeErr != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.positions {
		if f.positions[i].ID == id {
			f.positions[i].PositionCode = in.PositionCode
			f.positions[i].PositionName = in.PositionName
			writeFakeJSON(w, http.StatusOK, f.positions[i])
			return
		}
	}
	writeFakeJSON(w, http.StatusNotFound, map[string]string{"message": "Position not found"})
}

func (f *FakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid id"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.positions {
		if f.positions[i].ID == id {
			f.positions = append(f.positions[:i], f.positions[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeFakeJSON(w, http.StatusNotFound, map[string]string{"message": "Position not found"})
}

func (f *FakeAPI) insertLocked(in position.Input) position.Position {
	p := position.Position{ID: f.nextID, PositionCode: in.PositionCode, PositionName: in.PositionName}
	f.nextID++
	f.positions = append(f.positions, p)
	return p
}

func writeFakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
