package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the marketplace engagement API.
// It handles session authentication, CSRF token management for mutating
// calls, and JSON (de)serialization. No other component in this module
// reaches the network directly.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	sessionToken string
	csrf         *csrfSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSessionToken attaches a token credential to every request.
func WithSessionToken(token string) Option {
	return func(c *Client) { c.sessionToken = token }
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. https://market.example.com/api).
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.csrf = &csrfSource{
		now:    time.Now,
		cookie: c.csrfCookie,
		fetch:  c.fetchCSRFToken,
	}
	return c
}

// csrfCookie reads the CSRF token cookie from the client's jar, if the
// server has set one on a prior response.
func (c *Client) csrfCookie() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// fetchCSRFToken retrieves a fresh token from the session endpoint.
func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"csrfToken"`
	}
	if err := c.get(ctx, "/csrf", &resp); err != nil {
		return "", fmt.Errorf("fetching csrf token: %w", err)
	}
	return resp.Token, nil
}

// get performs a GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// do is the core request method. Mutating methods carry the CSRF token;
// all methods carry session credentials.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Token "+c.sessionToken)
	}

	if method != http.MethodGet && method != http.MethodHead {
		token, err := c.csrf.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusForbidden {
			// A rotated session invalidates the cached token.
			c.csrf.Invalidate()
		}
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(respBody),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

// errorMessage extracts the server's error text from a failure body.
func errorMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
