// Package api talks to the discussion site's public JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fragmede/livethread/internal/domain"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "livethread/1.0"

	defaultTimeout = 15 * time.Second
	defaultLimit   = 100
	maxErrorBody   = 512
)

// RawListing is an undecoded comment listing exactly as served.
type RawListing []byte

// Options configure a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	FetchLimit int
	HTTPClient *http.Client
}

// Client is the discussion site client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limit     int
	now       func() time.Time
}

// NewClient creates a new client.
func NewClient(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limit:     opts.FetchLimit,
		now:       time.Now,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.limit <= 0 {
		c.limit = defaultLimit
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// getRaw fetches a URL and returns the body. Every failure is a
// *domain.TransportError.
func (c *Client) getRaw(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.TransportError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, op, url string, dst any) error {
	body, err := c.getRaw(ctx, op, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &domain.TransportError{Op: op, URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
