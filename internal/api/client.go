// Package api talks to the learning-platform REST API. It owns the bearer
// token handshake, the error taxonomy and the conversion of the server's
// inconsistent payloads into one canonical shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/learnhub/internal/logger"
)

// TokenSource hands out access tokens without prompting.
type TokenSource interface {
	AcquireTokenSilent(ctx context.Context, scopes []string) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string

	// Scopes identify the API resource, e.g. api://<app-id>/access_as_user.
	Scopes []string

	Tokens TokenSource

	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration

	Logger *logger.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	scopes  []string
	tokens  TokenSource
	http    *http.Client
	log     *logger.Logger
}

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("api: base url is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("api: token source is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		scopes:  opts.Scopes,
		tokens:  opts.Tokens,
		http:    hc,
		log:     log,
	}, nil
}

// Do sends body as JSON and decodes a 2xx response into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// call is Do for typed endpoints: the raw body is checked against the named
// schema before it is decoded into the wire struct.
func (c *Client) call(ctx context.Context, method, path string, body any, schema string, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := validate(schema, raw); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	token, err := c.tokens.AcquireTokenSilent(ctx, c.scopes)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(raw)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: text}
	}
	return raw, nil
}
