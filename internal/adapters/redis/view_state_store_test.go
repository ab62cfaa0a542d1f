package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/testutil"
)

func TestViewStateStore_RoundTrip(t *testing.T) {
	r := testutil.SetupTestRedis(t)
	store := NewViewStateStore(ViewStateStoreOptions{Client: r.Client, TTL: time.Hour})
	ctx := context.Background()

	empty, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, position.ViewState{}, empty)

	state := position.ViewState{
		State:     position.Editing(2),
		Positions: []position.Position{{ID: 2, PositionCode: "P2", PositionName: "Analyst"}},
		Loaded:    true,
		Draft:     position.DraftFrom(position.Position{ID: 2, PositionCode: "P2", PositionName: "Analyst"}),
		Error:     "Server exploded",
		Applied:   4,
	}
	require.NoError(t, store.Save(ctx, "s1", state))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	ttl := r.Client.TTL(ctx, DefaultViewStatePrefix+"s1").Val()
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Hour)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.Loaded)
}

func TestViewStateStore_Errors(t *testing.T) {
	r := testutil.SetupTestRedis(t)
	store := NewViewStateStore(ViewStateStoreOptions{Client: r.Client, Prefix: "vs:"})
	ctx := context.Background()

	require.Error(t, store.Save(ctx, "", position.ViewState{}))

	require.NoError(t, r.Client.HSet(ctx, "vs:broken", fieldState, "{").Err())
	_, err := store.Load(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal view state")
}

func TestViewStateStore_NextSeq(t *testing.T) {
	r := testutil.SetupTestRedis(t)
	store := NewViewStateStore(ViewStateStoreOptions{Client: r.Client, Prefix: "seq:", TTL: time.Hour})
	ctx := context.Background()

	first, err := store.NextSeq(ctx, "s1")
	require.NoError(t, err)
	second, err := store.NextSeq(ctx, "s1")
	require.NoError(t, err)
	other, err := store.NextSeq(ctx, "s2")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, uint64(1), other)
	assert.Positive(t, r.Client.TTL(ctx, "seq:s1").Val())

	_, err = store.NextSeq(ctx, "")
	require.Error(t, err)

	require.NoError(t, store.Delete(ctx, "s1"))
	again, err := store.NextSeq(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), again)
}

func TestViewStateStore_RejectsStaleSave(t *testing.T) {
	r := testutil.SetupTestRedis(t)
	store := NewViewStateStore(ViewStateStoreOptions{Client: r.Client, Prefix: "stale:"})
	ctx := context.Background()

	newer := position.ViewState{
		Positions: []position.Position{{ID: 1, PositionCode: "NEW", PositionName: "Newer"}},
		Loaded:    true,
		Applied:   3,
	}
	require.NoError(t, store.Save(ctx, "s1", newer))

	older := position.ViewState{
		Positions: []position.Position{{ID: 1, PositionCode: "OLD", PositionName: "Older"}},
		Loaded:    true,
		Applied:   2,
	}
	err := store.Save(ctx, "s1", older)
	require.ErrorIs(t, err, ports.ErrStaleViewState)

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	// Saves that did not list again keep the same sequence and are accepted.
	newer.Error = "Duplicate code"
	require.NoError(t, store.Save(ctx, "s1", newer))
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Duplicate code", got.Error)
}

func TestViewStateStore_SaveKeepsSequence(t *testing.T) {
	r := testutil.SetupTestRedis(t)
	store := NewViewStateStore(ViewStateStoreOptions{Client: r.Client, Prefix: "keep:"})
	ctx := context.Background()

	_, err := store.NextSeq(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "s1", position.ViewState{Loaded: true, Applied: 1}))

	next, err := store.NextSeq(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}
