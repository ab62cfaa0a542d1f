package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/target/positions-ui/internal/domain/position"
	apperrors "github.com/target/positions-ui/internal/errors"
	"github.com/target/positions-ui/internal/ports"
)

// ErrDeleteNotConfirmed is returned by Delete when the confirmer declines.
// Nothing is sent to the API in that case.
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// Controller events recorded in the transition log.
const (
	EventList           = "list"
	EventListOK         = "list_ok"
	EventListFailed     = "list_failed"
	EventListStale      = "list_stale"
	EventCreate         = "create"
	EventUpdate         = "update"
	EventDelete         = "delete"
	EventDeleteDeclined = "delete_declined"
	EventResync         = "resync"
	EventRejected       = "rejected"
	EventBeginEdit      = "begin_edit"
	EventCancelEdit     = "cancel_edit"
)

const (
	listFailedMessage   = "Failed to load positions."
	createFailedMessage = "Failed to create position."
	updateFailedMessage = "Failed to update position."
	deleteFailedMessage = "Failed to delete position."
)

// Transition is one entry of the controller's transition log.
type Transition struct {
	Event string
	From  position.State
	To    position.State
}

// PositionControllerOptions groups dependencies for PositionController.
type PositionControllerOptions struct {
	API ports.PositionsAPI // Required
	// Sequence numbers list calls. When nil, or when it fails, the controller
	// counts on from the restored view on its own.
	Sequence func(ctx context.Context) (uint64, error)
	Logger   *slog.Logger // Optional
}

// PositionController drives the positions panel: the cached list, the
// create/edit draft and the idle/loading/error/editing state.
//
// The cached list is never patched locally; every successful mutation is
// followed by a resync. List responses carry a sequence number and a response
// older than the newest one applied is dropped.
type PositionController struct {
	api      ports.PositionsAPI
	sequence func(ctx context.Context) (uint64, error)
	logger   *slog.Logger

	// mutating serializes create/update/delete together with their resync.
	mutating sync.Mutex

	mu          sync.Mutex
	view        position.ViewState
	seq         uint64
	transitions []Transition
}

// NewPositionController constructs a controller in the idle state.
func NewPositionController(opts PositionControllerOptions) *PositionController {
	if opts.API == nil {
		panic("PositionController: API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionController{
		api:      opts.API,
		sequence: opts.Sequence,
		logger:   logger.With("component", "position_controller"),
		view:     position.ViewState{State: position.Idle()},
	}
}

// Restore replaces the controller's view with a persisted snapshot.
func (c *PositionController) Restore(v position.ViewState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v.Clone()
	if c.view.State.Status == "" {
		c.view.State = position.Idle()
	}
	c.seq = c.view.Applied
}

// Snapshot returns a copy of the current view.
func (c *PositionController) Snapshot() position.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Clone()
}

// State returns the current state.
func (c *PositionController) State() position.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.State
}

// Transitions returns the transitions recorded since construction.
func (c *PositionController) Transitions() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transition(nil), c.transitions...)
}

// ClearFeedback drops the inline error and field errors once they have been shown.
func (c *PositionController) ClearFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Error = ""
	c.view.FieldErrors = nil
}

// List fetches the positions. On failure the previous list stays visible
// next to the error.
func (c *PositionController) List(ctx context.Context) error {
	seq := c.nextSeq(ctx)

	c.mu.Lock()
	c.transition(EventList, position.Loading())
	c.mu.Unlock()

	list, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.view.Applied {
		c.logger.DebugContext(ctx, "discarding superseded list response", "seq", seq, "applied", c.view.Applied)
		c.record(EventListStale, c.view.State, c.view.State)
		return nil
	}
	c.view.Applied = seq

	if err != nil {
		c.view.FieldErrors = nil
		c.view.Error = feedbackFor(err, listFailedMessage)
		c.transition(EventListFailed, position.Failed())
		return fmt.Errorf("list positions: %w", err)
	}

	if list == nil {
		list = []position.Position{}
	}
	c.view.Positions = list
	c.view.Loaded = true
	c.view.Error = ""
	c.view.FieldErrors = nil

	next := position.Idle()
	if id, ok := c.view.Draft.Editing(); ok {
		if _, found := position.Find(list, id); found {
			next = position.Editing(id)
		} else {
			// Deleted elsewhere; the edit cannot be submitted any more.
			c.view.Draft = position.Draft{}
		}
	}
	c.transition(EventListOK, next)
	return nil
}

func (c *PositionController) nextSeq(ctx context.Context) uint64 {
	if c.sequence != nil {
		n, err := c.sequence(ctx)
		if err == nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			if n > c.seq {
				c.seq = n
			}
			return n
		}
		c.logger.WarnContext(ctx, "list sequence unavailable, counting locally", "error", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Create submits in as a new position and resyncs on success.
func (c *PositionController) Create(ctx context.Context, in position.Input) error {
	return c.mutate(ctx, EventCreate, createFailedMessage, in, nil, func(ctx context.Context, in position.Input) error {
		_, err := c.api.Create(ctx, in)
		return err
	})
}

// Update submits in for position id and resyncs on success. On failure the
// controller keeps the draft and is left in editing(id).
func (c *PositionController) Update(ctx context.Context, id int, in position.Input) error {
	return c.mutate(ctx, EventUpdate, updateFailedMessage, in, &id, func(ctx context.Context, in position.Input) error {
		_, err := c.api.Update(ctx, id, in)
		return err
	})
}

// Delete removes position id once confirm agrees, then resyncs. When the
// confirmer declines, or is nil, no request is sent and ErrDeleteNotConfirmed
// is returned.
func (c *PositionController) Delete(ctx context.Context, id int, confirm ports.Confirmer) error {
	c.mutating.Lock()
	defer c.mutating.Unlock()

	c.mu.Lock()
	target, ok := position.Find(c.view.Positions, id)
	c.mu.Unlock()
	if !ok {
		target = position.Position{ID: id}
	}

	if confirm == nil || !confirm.Confirm(ctx, target) {
		c.mu.Lock()
		c.record(EventDeleteDeclined, c.view.State, c.view.State)
		c.mu.Unlock()
		return ErrDeleteNotConfirmed
	}

	if err := c.api.Delete(ctx, id); err != nil {
		c.reject(err, deleteFailedMessage, nil)
		return fmt.Errorf("delete position %d: %w", id, err)
	}

	c.mu.Lock()
	c.view.Error = ""
	next := c.view.State
	if editing, ok := c.view.Draft.Editing(); ok && editing == id {
		c.view.Draft = position.Draft{}
		next = position.Idle()
	}
	c.transition(EventDelete, next)
	c.mu.Unlock()

	return c.resync(ctx, EventDelete)
}

// BeginEdit loads p into the draft and enters editing(p.ID).
func (c *PositionController) BeginEdit(p position.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Draft = position.DraftFrom(p)
	c.view.Error = ""
	c.view.FieldErrors = nil
	c.transition(EventBeginEdit, position.Editing(p.ID))
}

// CancelEdit clears the draft and returns to idle.
func (c *PositionController) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Draft = position.Draft{}
	c.view.Error = ""
	c.view.FieldErrors = nil
	c.transition(EventCancelEdit, position.Idle())
}

type mutation func(ctx context.Context, in position.Input) error

func (c *PositionController) mutate(ctx context.Context, event, fallback string, in position.Input, editing *int, call mutation) error {
	c.mutating.Lock()
	defer c.mutating.Unlock()

	c.mu.Lock()
	c.view.Draft = c.view.Draft.WithInput(in)
	if editing != nil {
		id := *editing
		c.view.Draft.EditingID = &id
	}
	c.mu.Unlock()

	if err := in.Validate(); err != nil {
		c.reject(err, fallback, editing)
		return err
	}

	if err := call(ctx, in); err != nil {
		c.reject(err, fallback, editing)
		return fmt.Errorf("%s position: %w", event, err)
	}

	c.mu.Lock()
	c.view.Draft = position.Draft{}
	c.view.Error = ""
	c.view.FieldErrors = nil
	c.transition(event, position.Idle())
	c.mu.Unlock()

	return c.resync(ctx, event)
}

func (c *PositionController) resync(ctx context.Context, after string) error {
	c.mu.Lock()
	c.record(EventResync, c.view.State, c.view.State)
	c.mu.Unlock()

	if err := c.List(ctx); err != nil {
		return fmt.Errorf("resync after %s: %w", after, err)
	}
	return nil
}

// reject surfaces a failed mutation and keeps the draft. A failed update
// always lands in editing(id), whatever state it started from; other
// failures keep the current state.
func (c *PositionController) reject(err error, fallback string, editing *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if apperrors.IsValidation(err) {
		c.view.Error = ""
		c.view.FieldErrors = apperrors.GetFieldErrors(err)
	} else {
		c.view.FieldErrors = nil
		c.view.Error = feedbackFor(err, fallback)
	}
	if editing != nil {
		c.transition(EventRejected, position.Editing(*editing))
		return
	}
	c.record(EventRejected, c.view.State, c.view.State)
}

// transition must be called with mu held.
func (c *PositionController) transition(event string, to position.State) {
	c.record(event, c.view.State, to)
	c.view.State = to
}

func (c *PositionController) record(event string, from, to position.State) {
	c.transitions = append(c.transitions, Transition{Event: event, From: from, To: to})
}

type userMessager interface {
	UserMessage() string
}

// feedbackFor returns the inline text for err. A missing credential yields no
// text because it is handled by redirecting to the login screen.
func feedbackFor(err error, fallback string) string {
	if errors.Is(err, ports.ErrNoCredential) {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return apperrors.UserMessage(err, fallback)
}

// PositionsServiceOptions groups dependencies for PositionsService.
type PositionsServiceOptions struct {
	Views  ports.ViewStateStore                                 // Required
	API    func(creds ports.CredentialStore) ports.PositionsAPI // Required
	Logger *slog.Logger                                         // Optional
}

// PositionsService restores a session's PositionController from the view
// state store, runs an operation on it and persists the result.
type PositionsService struct {
	views  ports.ViewStateStore
	api    func(creds ports.CredentialStore) ports.PositionsAPI
	logger *slog.Logger
}

// NewPositionsService constructs a new PositionsService.
func NewPositionsService(opts PositionsServiceOptions) *PositionsService {
	if opts.Views == nil {
		panic("PositionsService: Views is required")
	}
	if opts.API == nil {
		panic("PositionsService: API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionsService{views: opts.Views, api: opts.API, logger: logger}
}

// Open returns the session's controller, bound to creds.
func (s *PositionsService) Open(ctx context.Context, sessionID string, creds ports.CredentialStore) (*PositionController, error) {
	view, err := s.views.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load view state: %w", err)
	}
	seq := func(ctx context.Context) (uint64, error) { return s.views.NextSeq(ctx, sessionID) }
	ctrl := NewPositionController(PositionControllerOptions{API: s.api(creds), Sequence: seq, Logger: s.logger})
	ctrl.Restore(view)
	return ctrl, nil
}

// Save persists ctrl's view for the session. It returns
// ports.ErrStaleViewState when another request of the session has already
// saved a newer list.
func (s *PositionsService) Save(ctx context.Context, sessionID string, ctrl *PositionController) error {
	if err := s.views.Save(ctx, sessionID, ctrl.Snapshot()); err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

// Run opens the controller, calls fn and saves the view, also when fn fails,
// so the inline error and the draft survive the redirect that follows a POST.
// fn's error is returned; a save failure is returned only when fn succeeded.
//
// Concurrent requests of one session draw list sequence numbers from the
// store, so a request whose list response is older than one already saved
// loses the save and the newer view stays.
func (s *PositionsService) Run(ctx context.Context, sessionID string, creds ports.CredentialStore, fn func(*PositionController) error) error {
	ctrl, err := s.Open(ctx, sessionID, creds)
	if err != nil {
		return err
	}
	fnErr := fn(ctrl)
	saveErr := s.Save(ctx, sessionID, ctrl)
	if errors.Is(saveErr, ports.ErrStaleViewState) {
		s.logger.DebugContext(ctx, "newer view state already saved, dropping this one", "session", idPrefix(sessionID))
		return fnErr
	}
	if saveErr != nil {
		if fnErr != nil {
			s.logger.ErrorContext(ctx, "save view state after failed operation", "error", saveErr)
			return fnErr
		}
		return saveErr
	}
	return fnErr
}

// Dashboard returns the view to render. The list is fetched unless the view
// still carries feedback from the previous POST; that feedback is returned
// once and then cleared.
func (s *PositionsService) Dashboard(ctx context.Context, sessionID string, creds ports.CredentialStore) (position.ViewState, error) {
	var snapshot position.ViewState
	err := s.Run(ctx, sessionID, creds, func(ctrl *PositionController) error {
		current := ctrl.Snapshot()
		pending := current.Error != "" || len(current.FieldErrors) > 0
		if !current.Loaded || !pending {
			if err := ctrl.List(ctx); err != nil && errors.Is(err, ports.ErrNoCredential) {
				return err
			}
		}
		snapshot = ctrl.Snapshot()
		ctrl.ClearFeedback()
		return nil
	})
	return snapshot, err
}

// Forget drops the session's view state.
func (s *PositionsService) Forget(ctx context.Context, sessionID string) error {
	if err := s.views.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete view state: %w", err)
	}
	return nil
}
