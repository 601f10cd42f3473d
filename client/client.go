// Package client is the Go SDK for the Attendsheets API. It translates
// between the camelCase in-memory model and the backend's snake_case
// wire shapes, and fills in threshold defaults the backend omits.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL points at a local development server.
const DefaultBaseURL = "http://localhost:8000"

// TokenProvider supplies the bearer credential attached to requests.
// Implementations decide where the token lives; a nil provider or an
// empty token means requests go out unauthenticated.
type TokenProvider interface {
	Token() string
}

// StaticToken is a TokenProvider holding a fixed credential.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// APIError is a non-2xx response. Message is the backend's detail or
// message field when one was parseable, otherwise the HTTP status text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) authHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
	}
	return h
}

// apiCall is the single chokepoint for network I/O. body is marshalled
// as JSON when non-nil; a successful response is decoded into out.
func (c *Client) apiCall(ctx context.Context, method string, endpoint string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header = c.authHeaders()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}

	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

func errorMessage(body []byte, status int) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return http.StatusText(status)
}
