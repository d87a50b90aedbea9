// Package remote provides the HTTP client that downloads puzzle input.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Defaults for the puzzle site.
const (
	DefaultBaseURL   = "https://adventofcode.com"
	DefaultUserAgent = "advent-runner (github.com/MyCarrier-DevOps/advent-runner)"
	DefaultTimeout   = 30 * time.Second
)

// Logger defines the logging interface for the remote client.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Client fetches puzzle input over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     Logger
}

// NewClient creates a Client. Empty arguments fall back to the defaults.
func NewClient(baseURL, userAgent string, httpClient *http.Client, log Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     log,
	}
}

// InputURL returns the input endpoint for key.
func (c *Client) InputURL(key domain.DayKey) string {
	return fmt.Sprintf("%s/%d/day/%d/input", c.baseURL, key.Year, key.Day)
}

// Fetch issues a single authenticated GET for key and streams the body to w.
// Non-2xx responses are reported as *StatusError and nothing is written.
func (c *Client) Fetch(ctx context.Context, key domain.DayKey, cred domain.Credential, w io.Writer) error {
	url := c.InputURL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: cred.Name, Value: cred.Value})
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug(ctx, "downloading puzzle input", map[string]interface{}{
		"url": url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug(ctx, "downloaded puzzle input", map[string]interface{}{
		"url":   url,
		"bytes": n,
	})

	return nil
}
