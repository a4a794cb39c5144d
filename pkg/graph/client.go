// Package graph is a thin Microsoft Graph REST client: bearer auth from an
// injected TokenProvider, JSON in, gjson out, typed errors, no retries.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Observer receives the outcome of every remote call.
type Observer func(op string, duration time.Duration, err error)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Tokens     TokenProvider
	HTTPClient *http.Client
	Timeout    time.Duration
	Observer   Observer
}

// Client performs authenticated Graph requests.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	observe    Observer
}

// RemoteError describes a failed Graph call. StatusCode is zero when the
// request never produced a response.
type RemoteError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("graph %s: %v", e.Op, e.Err)
	case e.Code != "":
		return fmt.Sprintf("graph %s: %d %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("graph %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a Graph 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// New creates a Graph client.
func New(cfg Config) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	observe := cfg.Observer
	if observe == nil {
		observe = func(string, time.Duration, error) {}
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		observe:    observe,
	}, nil
}

// DoJSON sends payload (may be nil) as JSON and parses the JSON response.
func (c *Client) DoJSON(ctx context.Context, op, method, path string, payload interface{}) (gjson.Result, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return gjson.Result{}, &RemoteError{Op: op, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.DoRaw(ctx, op, method, path, body, contentType)
}

// DoRaw sends an arbitrary body and parses the JSON response.
func (c *Client) DoRaw(ctx context.Context, op, method, path string, body io.Reader, contentType string) (result gjson.Result, err error) {
	start := time.Now()
	defer func() { c.observe(op, time.Since(start), err) }()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return gjson.Result{}, &RemoteError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return gjson.Result{}, &RemoteError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		parsed := gjson.ParseBytes(raw)
		return gjson.Result{}, &RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Code:       parsed.Get("error.code").String(),
			Message:    parsed.Get("error.message").String(),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("invalid JSON response")}
	}
	return gjson.ParseBytes(raw), nil
}

// EscapePath escapes each segment of a drive path, keeping the separators.
func EscapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/")
}
