package position

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/positions-ui/internal/errors"
)

func TestInput_Validate(t *testing.T) {
	t.Run("trims and accepts", func(t *testing.T) {
		in := Input{PositionCode: " P1 ", PositionName: " Engineer "}
		require.NoError(t, in.Validate())
		assert.Equal(t, Input{PositionCode: "P1", PositionName: "Engineer"}, in)
	})

	t.Run("reports every missing field", func(t *testing.T) {
		in := Input{PositionCode: "  "}
		err := in.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		fields := apperrors.GetFieldErrors(err)
		assert.Equal(t, "Position code is required.", fields["positionCode"])
		assert.Equal(t, "Position name is required.", fields["positionName"])
	})

	t.Run("rejects long values", func(t *testing.T) {
		in := Input{PositionCode: "P1", PositionName: strings.Repeat("x", maxFieldLen+1)}
		err := in.Validate()
		require.Error(t, err)
		assert.Contains(t, apperrors.GetFieldErrors(err)["positionName"], "cannot exceed")
	})
}

func TestDraft(t *testing.T) {
	d := DraftFrom(Position{ID: 7, PositionCode: "P7", PositionName: "Lead"})
	id, ok := d.Editing()
	assert.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, Input{PositionCode: "P7", PositionName: "Lead"}, d.Input())
	assert.False(t, d.IsZero())
	assert.True(t, Draft{}.IsZero())

	changed := d.WithInput(Input{PositionCode: "P8", PositionName: "Staff"})
	assert.Equal(t, "P8", changed.PositionCode)
	assert.Equal(t, d.EditingID, changed.EditingID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", State{}.String())
	assert.Equal(t, "loading", Loading().String())
	assert.Equal(t, "error", Failed().String())
	assert.Equal(t, "editing(3)", Editing(3).String())

	id, ok := Editing(3).IsEditing()
	assert.True(t, ok)
	assert.Equal(t, 3, id)
	_, ok = Idle().IsEditing()
	assert.False(t, ok)
}

func TestViewState_Clone(t *testing.T) {
	id := 1
	v := ViewState{
		Positions:   []Position{{ID: 1}},
		Draft:       Draft{EditingID: &id},
		FieldErrors: map[string]string{"positionCode": "x"},
	}
	c := v.Clone()
	c.Positions[0].ID = 2
	*c.Draft.EditingID = 5
	c.FieldErrors["positionCode"] = "y"

	assert.Equal(t, 1, v.Positions[0].ID)
	assert.Equal(t, 1, *v.Draft.EditingID)
	assert.Equal(t, "x", v.FieldErrors["positionCode"])
}

func TestFind(t *testing.T) {
	list := []Position{{ID: 1, PositionCode: "A"}, {ID: 2, PositionCode: "B"}}
	p, ok := Find(list, 2)
	assert.True(t, ok)
	assert.Equal(t, "B", p.PositionCode)
	_, ok = Find(list, 3)
	assert.False(t, ok)
}
