package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		value  string
		want   string
	}{
		{name: "valid input", maxLen: 10, value: "alice"},
		{name: "empty string", maxLen: 10, value: "", want: "Username is required."},
		{name: "whitespace only", maxLen: 10, value: "   ", want: "Username is required."},
		{name: "exceeds max length", maxLen: 5, value: "toolong", want: "Username cannot exceed 5 characters."},
		{name: "exactly max length", maxLen: 5, value: "exact"},
		{name: "counts runes not bytes", maxLen: 5, value: "héllo"},
		{name: "surrounding space ignored", maxLen: 5, value: "  bob  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required("Username", tt.maxLen)(tt.value))
		})
	}
}

func TestNoSpaces(t *testing.T) {
	v := NoSpaces("Username")
	assert.Empty(t, v("alice"))
	assert.Empty(t, v(""))
	assert.Equal(t, "Username cannot contain spaces.", v("al ice"))
	assert.Equal(t, "Username cannot contain spaces.", v("al\tice"))
}

func TestFieldValidator(t *testing.T) {
	t.Run("collects errors per field", func(t *testing.T) {
		errs := New().
			Validate("username", "", Required("Username", 50)).
			Validate("password", "secret", Required("Password", 50)).
			Validate("firstName", "", Required("First name", 50)).
			Errors()
		assert.Equal(t, map[string]string{
			"username":  "Username is required.",
			"firstName": "First name is required.",
		}, errs)
	})

	t.Run("stops at first error", func(t *testing.T) {
		errs := New().Validate("username", "", Required("Username", 50), NoSpaces("Username")).Errors()
		assert.Equal(t, "Username is required.", errs["username"])
	})

	t.Run("second validator triggers", func(t *testing.T) {
		errs := New().Validate("username", "a b", Required("Username", 50), NoSpaces("Username")).Errors()
		assert.Equal(t, "Username cannot contain spaces.", errs["username"])
	})

	t.Run("no errors", func(t *testing.T) {
		assert.Empty(t, New().Validate("username", "ok", Required("Username", 5)).Errors())
	})
}
