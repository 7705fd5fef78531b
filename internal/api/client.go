// Package api is the HTTP client for the devark backend: auth
// session endpoints, token verification, and the size-batched
// session upload.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "https://app.devark.dev"

const defaultTimeout = 30 * time.Second

// Interceptor mutates an outgoing request before it is sent.
type Interceptor func(*http.Request)

// Client talks to the devark backend. The bearer token is
// settable after construction; the auth service owns it.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	interceptors []Interceptor

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInterceptor appends a request interceptor.
func WithInterceptor(fn Interceptor) Option {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, fn)
	}
}

// NewClient returns a client for the given base URL. A trailing
// slash on the base URL is stripped; empty means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token attached to all requests.
// An empty string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, possibly empty.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, body)
}

// IsNetworkError reports whether err is a transport-level
// failure (connection refused, DNS, timeout, canceled request)
// rather than an HTTP status error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// newRequest builds a request with auth header and interceptors
// applied. path must start with a slash.
func (c *Client) newRequest(
	ctx context.Context, method, path string, body any,
) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, reader,
	)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, fn := range c.interceptors {
		fn(req)
	}
	return req, nil
}

// doJSON performs a request and decodes a JSON response into
// out (out may be nil to discard the body). Non-2xx responses
// return a *StatusError.
func (c *Client) doJSON(
	ctx context.Context, method, path string, body, out any,
) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Status: resp.StatusCode,
			Body:   string(data),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// stream opens a long-lived response (used for the auth event
// stream). The caller owns the returned body.
func (c *Client) stream(
	ctx context.Context, path string, accept string,
) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)

	// The client-wide timeout would cut the stream short; rely
	// on the caller's context deadline instead.
	hc := *c.httpClient
	hc.Timeout = 0

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{
			Status: resp.StatusCode,
			Body:   string(data),
		}
	}
	return resp.Body, nil
}
