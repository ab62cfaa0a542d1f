package position

import "strconv"

// Status is the controller's coarse state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEditing Status = "editing"
)

// State is a Status plus the ID being edited when Status is StatusEditing.
type State struct {
	Status    Status `json:"status"`
	EditingID int    `json:"editingId,omitempty"`
}

// Idle is the resting state.
func Idle() State { return State{Status: StatusIdle} }

// Loading is entered while a list request is outstanding.
func Loading() State { return State{Status: StatusLoading} }

// Failed is entered when a list request fails.
func Failed() State { return State{Status: StatusError} }

// Editing is entered by BeginEdit.
func Editing(id int) State { return State{Status: StatusEditing, EditingID: id} }

// IsEditing reports whether s is editing(id) and returns the id.
func (s State) IsEditing() (int, bool) {
	if s.Status != StatusEditing {
		return 0, false
	}
	return s.EditingID, true
}

func (s State) String() string {
	if s.Status == "" {
		return string(StatusIdle)
	}
	if s.Status == StatusEditing {
		return "editing(" + strconv.Itoa(s.EditingID) + ")"
	}
	return string(s.Status)
}

// ViewState is everything the dashboard needs to redraw the positions panel.
// It is persisted per session so the draft and inline error survive a
// post/redirect/get round trip.
type ViewState struct {
	State       State             `json:"state"`
	Positions   []Position        `json:"positions"`
	Loaded      bool              `json:"loaded"`
	Draft       Draft             `json:"draft"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	// Applied is the sequence number of the newest list response applied.
	Applied uint64 `json:"applied"`
}

// Clone returns a deep copy of v.
func (v ViewState) Clone() ViewState {
	out := v
	if v.Positions != nil {
		out.Positions = append([]Position(nil), v.Positions...)
	}
	if v.Draft.EditingID != nil {
		id := *v.Draft.EditingID
		out.Draft.EditingID = &id
	}
	if v.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(v.FieldErrors))
		for k, val := range v.FieldErrors {
			out.FieldErrors[k] = val
		}
	}
	return out
}
