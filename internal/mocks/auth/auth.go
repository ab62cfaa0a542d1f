package auth

// Package auth contains simple hand-written test doubles for session and credential ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.ViewStateStore  = (*MemoryViewStateStore)(nil)
)

// MemoryCredentialStore holds a single token in memory.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	token string

	// SaveErr and ClearErr, when set, are returned instead of mutating state.
	SaveErr  error
	ClearErr error
}

// NewMemoryCredentialStore returns a store pre-loaded with token (may be empty).
func NewMemoryCredentialStore(token string) *MemoryCredentialStore {
	return &MemoryCredentialStore{token: token}
}

func (m *MemoryCredentialStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	return nil
}

func (m *MemoryCredentialStore) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ports.ErrNoCredential
	}
	return m.token, nil
}

func (m *MemoryCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.token = ""
	return nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryViewStateStore keeps positions view state per session in memory. It
// applies the same stale-save rule as the Redis store.
type MemoryViewStateStore struct {
	mu     sync.Mutex
	states map[string]position.ViewState
	seqs   map[string]uint64
}

// NewMemoryViewStateStore creates an empty view state store.
func NewMemoryViewStateStore() *MemoryViewStateStore {
	return &MemoryViewStateStore{
		states: make(map[string]position.ViewState),
		seqs:   make(map[string]uint64),
	}
}

// Load returns the zero ViewState when nothing is stored.
func (m *MemoryViewStateStore) Load(_ context.Context, sessionID string) (position.ViewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[sessionID].Clone(), nil
}

func (m *MemoryViewStateStore) Save(_ context.Context, sessionID string, state position.ViewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.states[sessionID]; ok && stored.Applied > state.Applied {
		return ports.ErrStaleViewState
	}
	m.states[sessionID] = state.Clone()
	return nil
}

func (m *MemoryViewStateStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	delete(m.seqs, sessionID)
	return nil
}

func (m *MemoryViewStateStore) NextSeq(_ context.Context, sessionID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[sessionID]++
	return m.seqs[sessionID], nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Is(target error) bool { return target == ports.ErrSessionNotFound }

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}
