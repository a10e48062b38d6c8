// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/rbac-console/internal/logging"
)

const (
	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultUserAgent is sent when no other agent is configured.
	DefaultUserAgent = "rbac-console"
)

// sharedTransport pools connections for every client in the process.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// TokenSource supplies the bearer token. An empty token means no session.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns the fixed token.
func (s StaticToken) Token() string { return string(s) }

// Response is a successful (2xx) backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client sends requests relative to a base URL.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	requestIDs bool
	userAgent  string
	log        zerolog.Logger
}

// NewClient creates a client for baseURL. tokens may be nil.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Transport: sharedTransport},
		userAgent:  DefaultUserAgent,
		log:        logging.Component("api"),
	}
}

// WithTimeout sets an overall per-request timeout. Zero means none.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRateLimit spaces requests to at most rps per second. Zero disables.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return c
}

// WithRequestIDs tags each request with an X-Request-ID header.
func (c *Client) WithRequestIDs(enabled bool) *Client {
	c.requestIDs = enabled
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger replaces the request logger.
func (c *Client) WithLogger(l zerolog.Logger) *Client {
	c.log = l
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path onto the base URL with exactly one slash.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post is Do with POST.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, payload)
}

// Do sends one request. Any returned error is a *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, payload interface{}) (*Response, error) {
	body, contentType, err := encodeBody(payload)
	if err != nil {
		return nil, setupFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, setupFailed(err)
	}
	c.setHeaders(req, contentType)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, setupFailed(err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	// Never keep the token around on the request.
	req.Header.Del("Authorization")
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", req.URL.Path).Err(err).Msg("no response")
		return nil, noResponse(err)
	}
	defer resp.Body.Close()

	data, readErr := readResponse(resp)
	c.log.Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverRejected(resp.StatusCode, data)
	}
	if readErr != nil {
		return nil, noResponse(readErr)
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// setHeaders applies content type, identity and the bearer token. Headers
// and bodies are never logged.
func (c *Client) setHeaders(req *http.Request, contentType string) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if c.requestIDs {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
}

// readResponse reads at most MaxResponseSize bytes. A body at the limit is
// treated as truncated.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return data, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) == MaxResponseSize {
		return data, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}
