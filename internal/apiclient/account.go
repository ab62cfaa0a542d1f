package apiclient

import (
	"context"
	"net/http"

	"github.com/target/positions-ui/internal/ports"
)

var _ ports.AccountAPI = (*AccountClient)(nil)

// AccountClient calls the unauthenticated /login and /signup endpoints.
type AccountClient struct {
	c *Client
}

// NewAccountClient wraps c. Any credentials attached to c are ignored.
func NewAccountClient(c *Client) *AccountClient {
	cp := *c
	cp.creds = nil
	return &AccountClient{c: &cp}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (a *AccountClient) Login(ctx context.Context, username, password string) (string, error) {
	const path = "/login"
	body, err := a.c.send(ctx, http.MethodPost, path, loginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	token := a.c.extract.Token(body)
	if token == "" {
		return "", &DecodeError{Method: http.MethodPost, Path: path, Cause: errMissingToken}
	}
	return token, nil
}

// Signup registers a new account. The 2xx body is ignored.
func (a *AccountClient) Signup(ctx context.Context, in ports.SignupInput) error {
	return a.c.Do(ctx, http.MethodPost, "/signup", in, nil)
}

type missingTokenError struct{}

func (missingTokenError) Error() string { return "login response has no access token" }

var errMissingToken error = missingTokenError{}
