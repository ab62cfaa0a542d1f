package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
)

// DefaultViewStatePrefix namespaces persisted positions view state.
const DefaultViewStatePrefix = "view:positions:"

// Hash fields of a session's view record. Both share the key and its TTL.
const (
	fieldState = "state"
	fieldSeq   = "seq"
)

const maxSaveAttempts = 5

var errSaveContended = errors.New("view state save: too many concurrent writers")

// ViewStateStore persists the positions dashboard state of each session as a
// hash holding the JSON view and the session's list sequence counter.
type ViewStateStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// ViewStateStoreOptions configures a ViewStateStore.
type ViewStateStoreOptions struct {
	Client redis.UniversalClient
	Prefix string
	// TTL should match the session TTL so state never outlives its session.
	TTL time.Duration
}

var _ ports.ViewStateStore = (*ViewStateStore)(nil)

// NewViewStateStore creates a Redis-backed view state store.
func NewViewStateStore(opts ViewStateStoreOptions) *ViewStateStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultViewStatePrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ViewStateStore{client: opts.Client, prefix: prefix, ttl: ttl}
}

// Load returns the stored state, or the zero ViewState when none exists.
func (s *ViewStateStore) Load(ctx context.Context, sessionID string) (position.ViewState, error) {
	if sessionID == "" {
		return position.ViewState{}, nil
	}
	data, err := s.client.HGet(ctx, s.prefix+sessionID, fieldState).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return position.ViewState{}, nil
		}
		return position.ViewState{}, fmt.Errorf("redis hget: %w", err)
	}
	return decodeViewState(data)
}

// Save writes state unless the stored view has applied a newer list response,
// in which case it returns ports.ErrStaleViewState and leaves the record alone.
// The check and the write run under WATCH so a concurrent save cannot slip in
// between them.
func (s *ViewStateStore) Save(ctx context.Context, sessionID string, state position.ViewState) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}
	key := s.prefix + sessionID

	save := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldState).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis hget: %w", err)
		default:
			// An unreadable record is overwritten.
			if stored, decErr := decodeViewState(current); decErr == nil && stored.Applied > state.Applied {
				return ports.ErrStaleViewState
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldState, data)
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		return err
	}

	for range maxSaveAttempts {
		err := s.client.Watch(ctx, save, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errSaveContended
}

// NextSeq increments the session's list sequence counter.
func (s *ViewStateStore) NextSeq(ctx context.Context, sessionID string) (uint64, error) {
	if sessionID == "" {
		return 0, errors.New("session ID cannot be empty")
	}
	key := s.prefix + sessionID
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, fieldSeq, 1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis hincrby: %w", err)
	}
	return uint64(incr.Val()), nil //nolint:gosec // the counter only grows from zero
}

func (s *ViewStateStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}

func decodeViewState(data []byte) (position.ViewState, error) {
	var state position.ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return position.ViewState{}, fmt.Errorf("unmarshal view state: %w", err)
	}
	return state, nil
}
