// Package transport implements the oembed HTTP capability on top of net/http.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"
)

const defaultMaxBody = 4 << 20

// StatusError is returned when a server answers with a non-200 status.
// oEmbed providers use 404 for unknown URLs, 401 for private content and
// 501 for unsupported formats.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.URL, e.Code)
	}
	return fmt.Sprintf("%s returned %d: %s", e.URL, e.Code, e.Body)
}

// Client is a net/http client that implements oembed.HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
	ctx        context.Context
}

// New creates a new Client. timeout bounds every request.
func New(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxBody:    defaultMaxBody,
		ctx:        context.Background(),
	}
}

// WithContext returns a copy of c whose requests are bound to ctx.
func (c *Client) WithContext(ctx context.Context) *Client {
	cp := *c
	cp.ctx = ctx
	return &cp
}

// URLEncode query-escapes s.
func (c *Client) URLEncode(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("url is not valid UTF-8")
	}
	return url.QueryEscape(s), nil
}

// Get returns the body of rawURL as a string.
func (c *Client) Get(rawURL string) (string, error) {
	body, err := c.GetBytes(c.ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetBytes fetches rawURL and returns its body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("response body exceeds %d bytes", c.maxBody)
	}
	return body, nil
}
