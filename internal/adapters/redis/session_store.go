package redis

// Package redis provides Redis-based adapters for sessions and dashboard view state.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
	"github.com/target/positions-ui/internal/ports"
)

// DefaultSessionPrefix namespaces session keys when no prefix is configured.
const DefaultSessionPrefix = "session:"

// SessionStore is a Redis-based session store for production use.
// It handles TTL semantics automatically based on session ExpiresAt.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, DefaultSessionPrefix)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return &SessionStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Session is already expired, don't save it
		return errors.New("session is expired")
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL normally removes the key first; clock skew between hosts can leave it briefly.
	if sess.Expired(s.now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// SessionInfo summarizes a stored session without exposing its token.
type SessionInfo struct {
	ID            string
	HasCredential bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
	TTL           time.Duration
}

// List returns a summary of every stored session. Records that fail to decode are skipped.
func (s *SessionStore) List(ctx context.Context) ([]SessionInfo, error) {
	var out []SessionInfo
	err := s.scan(ctx, func(key string) error {
		id := strings.TrimPrefix(key, s.prefix)
		sess, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil
			}
			return err
		}
		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis ttl: %w", err)
		}
		out = append(out, SessionInfo{
			ID:            sess.ID,
			HasCredential: sess.HasCredential(),
			CreatedAt:     sess.CreatedAt,
			ExpiresAt:     sess.ExpiresAt,
			TTL:           ttl,
		})
		return nil
	})
	return out, err
}

// Purge deletes every stored session and returns how many keys were removed.
func (s *SessionStore) Purge(ctx context.Context) (int, error) {
	removed := 0
	err := s.scan(ctx, func(key string) error {
		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis del %s: %w", key, err)
		}
		removed += int(n)
		return nil
	})
	return removed, err
}

func (s *SessionStore) scan(ctx context.Context, fn func(key string) error) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// ErrNotFound is returned when a session is not found.
type notFoundError struct{}

func (notFoundError) Is(target error) bool { return target == ports.ErrSessionNotFound }

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
