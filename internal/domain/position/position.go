// Package position holds the positions resource and the view state the
// dashboard keeps for it between requests.
package position

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/target/positions-ui/internal/errors"
)

const maxFieldLen = 255

// Position is owned by the remote API; IDs are server-assigned.
type Position struct {
	ID           int    `json:"id"`
	PositionCode string `json:"positionCode"`
	PositionName string `json:"positionName"`
}

// Input is the body sent on create and update.
type Input struct {
	PositionCode string `json:"positionCode"`
	PositionName string `json:"positionName"`
}

// Normalize trims surrounding whitespace from all fields.
func (in *Input) Normalize() {
	in.PositionCode = strings.TrimSpace(in.PositionCode)
	in.PositionName = strings.TrimSpace(in.PositionName)
}

// Validate normalizes the input and reports every invalid field at once.
func (in *Input) Validate() error {
	in.Normalize()
	fields := map[string]string{}
	checkField(fields, "positionCode", "Position code", in.PositionCode)
	checkField(fields, "positionName", "Position name", in.PositionName)
	if err := apperrors.ValidationFields(fields); err != nil {
		return err
	}
	return nil
}

func checkField(fields map[string]string, key, label, value string) {
	switch {
	case value == "":
		fields[key] = label + " is required."
	case utf8.RuneCountInString(value) > maxFieldLen:
		fields[key] = fmt.Sprintf("%s cannot exceed %d characters.", label, maxFieldLen)
	}
}

// Draft is the unsaved create/edit form. EditingID is set while an existing
// position is being edited.
type Draft struct {
	PositionCode string `json:"positionCode"`
	PositionName string `json:"positionName"`
	EditingID    *int   `json:"editingId,omitempty"`
}

// DraftFrom copies a position into a draft for editing.
func DraftFrom(p Position) Draft {
	id := p.ID
	return Draft{PositionCode: p.PositionCode, PositionName: p.PositionName, EditingID: &id}
}

// Input returns the draft's fields as a request body.
func (d Draft) Input() Input {
	return Input{PositionCode: d.PositionCode, PositionName: d.PositionName}
}

// IsZero reports whether the draft is empty and not editing.
func (d Draft) IsZero() bool {
	return d.PositionCode == "" && d.PositionName == "" && d.EditingID == nil
}

// Editing returns the ID being edited, if any.
func (d Draft) Editing() (int, bool) {
	if d.EditingID == nil {
		return 0, false
	}
	return *d.EditingID, true
}

// WithInput returns a copy of d with the form fields replaced by in.
func (d Draft) WithInput(in Input) Draft {
	d.PositionCode = in.PositionCode
	d.PositionName = in.PositionName
	return d
}

// Find returns the position with id from list.
func Find(list []Position, id int) (Position, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}
