package auth

// Package auth contains domain-level types for sessions and the credential they carry.
// It is pure and free of framework/adapter concerns.

import "time"

// GuestName is shown when no username can be read from the bearer token.
const GuestName = "Guest"

// Session is the server-side record we persist for a signed-in browser.
// ID is the opaque value of the session_id cookie; AccessToken is the bearer
// token issued by the remote API and never leaves the server.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// HasCredential reports whether the session currently carries a bearer token.
func (s Session) HasCredential() bool { return s.AccessToken != "" }

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Identity is what the UI displays about the signed-in user.
// It is decoded from the bearer token without verification and must never be
// used to make an authorization decision.
type Identity struct {
	Username  string
	Subject   string
	ExpiresAt time.Time
}

// DisplayName returns the username, or GuestName when none is known.
func (i Identity) DisplayName() string {
	if i.Username == "" {
		return GuestName
	}
	return i.Username
}
