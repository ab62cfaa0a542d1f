package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/target/positions-ui/internal/ports"
)

// ErrAuthMissing is returned when an authenticated call is attempted without a stored credential.
// No request is sent in that case. It matches ports.ErrNoCredential.
var ErrAuthMissing = fmt.Errorf("apiclient: no bearer token available: %w", ports.ErrNoCredential)

// RequestError is a failed call to the remote API: either a non-2xx response
// (Status set) or a transport failure (Status 0, Cause set).
type RequestError struct {
	Method string
	Path   string
	Status int
	// Message is the server-provided "message" field, when the error body had one.
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
}

func (e *RequestError) Unwrap() error { return e.Cause }

// UserMessage is the text shown next to the form or list that triggered the call.
func (e *RequestError) UserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Status == 0:
		return "Unable to reach the positions service. Please try again."
	default:
		return fmt.Sprintf("Request failed with status %d.", e.Status)
	}
}

// Unauthorized reports whether the API rejected the bearer token.
func (e *RequestError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Method string
	Path   string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decode response: %v", e.Method, e.Path, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// UserMessage is the text shown for a malformed response.
func (e *DecodeError) UserMessage() string {
	return "The positions service returned an unexpected response."
}

// UserMessage returns the display text for err, or fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Message == "" && fallback != "" && reqErr.Status != 0 {
			return fallback
		}
		return reqErr.UserMessage()
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.UserMessage()
	}
	return fallback
}
