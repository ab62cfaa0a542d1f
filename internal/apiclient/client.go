// Package apiclient talks to the remote positions API.
//
// Every authenticated call reads the bearer token from a ports.CredentialStore
// at the moment it is sent; nothing is cached between calls.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/target/positions-ui/internal/observability/metrics"
	"github.com/target/positions-ui/internal/observability/statsd"
	"github.com/target/positions-ui/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the remote API settings shared by every client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	TokenPath   string
	MessagePath string
	// Transport overrides the base round tripper (tests, proxies).
	Transport http.RoundTripper
	// Metrics receives one api.calls sample per request; nil disables.
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// Client issues JSON requests against BaseURL.
type Client struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	creds     ports.CredentialStore
	extract   *Extractor
	metrics   statsd.Sink
	logger    *slog.Logger
}

// New builds an unauthenticated client. Use WithCredentials for bearer calls.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	extract, err := NewExtractor(cfg.TokenPath, cfg.MessagePath)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   baseURL,
		timeout:   timeout,
		transport: transport,
		extract:   extract,
		metrics:   cfg.Metrics,
		logger:    logger.With("component", "apiclient"),
	}, nil
}

// MustNew is New that panics on error.
func MustNew(cfg Config) *Client {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// WithCredentials returns a copy of c that authenticates every call with the
// token currently held by store.
func (c *Client) WithCredentials(store ports.CredentialStore) *Client {
	cp := *c
	cp.creds = store
	return &cp
}

// Extractor exposes the JMESPath field extractor used by this client.
func (c *Client) Extractor() *Extractor { return c.extract }

// Do sends a JSON request to BaseURL+path. body may be nil. When out is
// non-nil a 2xx body is decoded into it.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Method: method, Path: path, Cause: err}
	}
	return nil
}

// send performs the request and returns the raw 2xx body.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient(ctx).Do(req)
	if err != nil {
		if errors.Is(err, ErrAuthMissing) {
			return nil, ErrAuthMissing
		}
		c.logger.WarnContext(ctx, "api request failed", "method", method, "path", path, "error", err)
		reqErr := &RequestError{Method: method, Path: path, Cause: err}
		metrics.EmitAPICall(c.metrics, metrics.APICall{Method: method, Duration: time.Since(start), Err: reqErr})
		return nil, reqErr
	}

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if closeErr := resp.Body.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: c.extract.Message(respBody),
		}
		metrics.EmitAPICall(c.metrics, metrics.APICall{
			Method: method, Status: resp.StatusCode, Duration: time.Since(start), Err: reqErr,
		})
		return nil, reqErr
	}
	metrics.EmitAPICall(c.metrics, metrics.APICall{Method: method, Status: resp.StatusCode, Duration: time.Since(start)})
	if readErr != nil {
		return nil, &DecodeError{Method: method, Path: path, Cause: readErr}
	}
	return respBody, nil
}

// httpClient attaches the bearer token through oauth2.Transport. The token
// source is rebuilt per call around ctx and deliberately not wrapped in
// oauth2.ReuseTokenSource.
func (c *Client) httpClient(ctx context.Context) *http.Client {
	if c.creds == nil {
		return &http.Client{Transport: c.transport, Timeout: c.timeout}
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: storeTokenSource{ctx: ctx, store: c.creds},
			Base:   c.transport,
		},
		Timeout: c.timeout,
	}
}

// storeTokenSource adapts a CredentialStore to oauth2.TokenSource.
type storeTokenSource struct {
	ctx   context.Context
	store ports.CredentialStore
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Get(s.ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNoCredential) {
			return nil, ErrAuthMissing
		}
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if token == "" {
		return nil, ErrAuthMissing
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
