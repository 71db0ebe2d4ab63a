// Package financeapi is the data-access layer for the remote finance REST API.
//
// Every method issues exactly one HTTP request, authenticated with the caller's
// bearer token. The token is never stored on the client. Failures are returned as
// *Error values whose message can be shown to the end user; the original cause is
// written to the operational log.
package financeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"finweb/internal/log"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyLog     = 512
)

// Client talks to the finance API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped per call to
// attach the bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentFinance)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// clientFor returns an HTTP client that sends token as a bearer credential.
// An empty token yields the unauthenticated base client.
func (c *Client) clientFor(token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		},
	}
}

// do performs one request. body, when non-nil, is JSON encoded; out, when non-nil,
// receives the decoded JSON response.
func (c *Client) do(ctx context.Context, token, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return c.fail(ctx, op, method, path, 0, nil, fmt.Errorf("encode request: %w", err), "Failed to "+op+".")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return c.fail(ctx, op, method, path, 0, nil, fmt.Errorf("build request: %w", err), "Failed to "+op+".")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(token).Do(req)
	if err != nil {
		return c.fail(ctx, op, method, path, 0, nil, err, unreachableMessage)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, op, method, path, resp.StatusCode, nil, fmt.Errorf("read response: %w", err), "Failed to "+op+".")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := remoteMessage(respBody)
		if msg == "" {
			msg = fallbackMessage(op, resp.StatusCode)
		}
		return c.fail(ctx, op, method, path, resp.StatusCode, respBody,
			fmt.Errorf("remote returned %s", resp.Status), msg)
	}

	c.logger.DebugContext(ctx, "Finance API call completed",
		log.FieldOperation, op,
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldRemoteStatus, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return c.fail(ctx, op, method, path, resp.StatusCode, respBody, fmt.Errorf("decode response: %w", err), "Failed to "+op+".")
	}
	return nil
}

// fail logs the original cause and returns the user-facing error.
func (c *Client) fail(ctx context.Context, op, method, path string, status int, body []byte, cause error, msg string) error {
	fields := log.NewFields().
		WithOperation(op).
		WithRemote(method, path, status).
		WithErrorType(errorType(status))
	if len(body) > 0 {
		if len(body) > maxBodyLog {
			body = body[:maxBodyLog]
		}
		fields[log.FieldRemoteBody] = string(body)
	}
	c.logger.LogError(ctx, "Finance API call failed", cause, op, fields)

	return &Error{
		Op:         op,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    msg,
		Err:        cause,
	}
}

// errorType classifies a failed call by its remote status; zero means the
// request never got an answer.
func errorType(status int) string {
	switch {
	case status == 0:
		return log.ErrorTypeNetwork
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return log.ErrorTypeAuth
	case status == http.StatusNotFound:
		return log.ErrorTypeNotFound
	case status >= 400 && status < 500:
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeRemote
	}
}
