// Package sheets fetches spreadsheet exports as CSV tables and memoizes them
// for a short freshness window.
package sheets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/locavail/locavail/server/internal/config"
)

const userAgent = "locavail/1"

// Loader returns the table published at url.
type Loader interface {
	Load(ctx context.Context, url string) (*Table, error)
}

// FetchError reports a failure retrieving or decoding a remote table.
// Status is the HTTP status code when the server answered, otherwise 0.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sheets: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is the network Loader. It performs one GET per call with no retry.
type Client struct {
	http *http.Client
}

// NewClient builds a Client from the sheets configuration. A zero timeout
// leaves the request bounded only by its context.
func NewClient(cfg config.SheetsConfig) *Client {
	return &Client{
		http: &http.Client{
			Transport: &headerRoundTripper{base: http.DefaultTransport, auth: cfg.Auth},
			Timeout:   cfg.Timeout,
		},
	}
}

// headerRoundTripper sets the user agent and, for private exports, a bearer
// token on every outgoing request.
type headerRoundTripper struct {
	base http.RoundTripper
	auth config.SheetsAuth
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	if tok := t.auth.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return t.base.RoundTrip(req)
}

// Load performs an HTTP GET to url and parses the body as CSV.
// Every failure is returned as a *FetchError.
func (c *Client) Load(ctx context.Context, url string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("http get: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	t, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("parse csv: %w", err)}
	}
	return t, nil
}
