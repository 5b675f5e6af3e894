// Package filebackend fetches generated source files from the
// file-serving backend.
package filebackend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a file-backend instance over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client against baseURL. The key is sent as X-API-Key
// on every request.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// UpstreamError reports a non-2xx response from the file backend.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("file backend returned status %d", e.StatusCode)
}

// FetchCode retrieves the file at path. When baseOverride is non-empty
// it replaces the configured base URL for this call.
func (c *Client) FetchCode(ctx context.Context, path, baseOverride string) (json.RawMessage, error) {
	base := c.baseURL
	if baseOverride != "" {
		base = baseOverride
	}

	endpoint := fmt.Sprintf("%s/code?path=%s", base, url.QueryEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("file backend returned invalid JSON")
	}

	return json.RawMessage(body), nil
}
