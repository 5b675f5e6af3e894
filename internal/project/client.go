// Package project talks to the project lifecycle service that owns
// generated app containers and their storage.
package project

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client deletes projects on the lifecycle service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client for the service at baseURL.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DeleteProject removes the project and everything it owns. Deleting a
// project that is already gone returns nil.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	endpoint := fmt.Sprintf("%s/projects/%s", c.baseURL, projectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("project service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("project service returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
