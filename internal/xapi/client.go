// Package xapi is a small client for the X API v2 endpoints used to read
// posts and perform follow and bookmark actions.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/tweetkeep/internal/oauth1"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.twitter.com/2"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 200
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string // first 200 bytes of the response body
}

func (e *APIError) Error() string {
	return fmt.Sprintf("x api: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to the X API v2 with a single authentication mode.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (e.g. for tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewBearer returns a client that sends token as a Bearer credential.
// It serves both app-only bearer tokens and OAuth 2.0 user access tokens.
func NewBearer(token string, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return newClient(&oauth2.Transport{Source: ts, Base: http.DefaultTransport}, opts)
}

// NewOAuth1 returns a client that signs every request with signer.
func NewOAuth1(signer *oauth1.Signer, opts ...Option) *Client {
	return newClient(&oauth1Transport{signer: signer, base: http.DefaultTransport}, opts)
}

func newClient(rt http.RoundTripper, opts []Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout, Transport: rt},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// oauth1Transport adds an OAuth 1.0a Authorization header to every request.
// Only URL query parameters are signed; JSON bodies are not part of the
// signature base string.
type oauth1Transport struct {
	signer *oauth1.Signer
	base   http.RoundTripper
}

func (t *oauth1Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	header, err := t.signer.Header(req.Method, req.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", header)
	return t.base.RoundTrip(req2)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiProblem is an entry of the "errors" array X returns alongside (or
// instead of) "data" on partial failures.
type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func problemsError(what string, problems []apiProblem) error {
	if len(problems) == 0 {
		return fmt.Errorf("%s: empty response", what)
	}
	p := problems[0]
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	return fmt.Errorf("%s: %s", what, msg)
}
