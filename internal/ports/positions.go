package ports

import (
	"context"
	"errors"

	"github.com/target/positions-ui/internal/domain/position"
)

// PositionsAPI is the authenticated positions resource of the remote API.
type PositionsAPI interface {
	List(ctx context.Context) ([]position.Position, error)
	Create(ctx context.Context, in position.Input) (position.Position, error)
	Update(ctx context.Context, id int, in position.Input) (position.Position, error)
	Delete(ctx context.Context, id int) error
}

// Confirmer gates destructive operations on an explicit user decision.
type Confirmer interface {
	Confirm(ctx context.Context, p position.Position) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p position.Position) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, p position.Position) bool { return f(ctx, p) }

// ErrStaleViewState is returned by ViewStateStore.Save when the stored view
// already carries a newer list response than the one being saved.
var ErrStaleViewState = errors.New("stale view state")

// ViewStateStore persists the positions view state between requests of one session.
//
// NextSeq hands out list sequence numbers that increase across every request
// of the session. Save refuses, with ErrStaleViewState, a state whose Applied
// is lower than the stored one.
type ViewStateStore interface {
	Load(ctx context.Context, sessionID string) (position.ViewState, error)
	Save(ctx context.Context, sessionID string, state position.ViewState) error
	Delete(ctx context.Context, sessionID string) error
	NextSeq(ctx context.Context, sessionID string) (uint64, error)
}
