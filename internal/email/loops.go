// Package email sends transactional email and contact events through
// the Loops API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://app.loops.so/api/v1"

// Client is a minimal Loops API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client authenticated with apiKey.
func New(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type createContactRequest struct {
	Email      string `json:"email"`
	Source     string `json:"source,omitempty"`
	Subscribed bool   `json:"subscribed"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateContact registers email as a subscribed contact with the given
// source tag.
func (c *Client) CreateContact(ctx context.Context, email, source string) error {
	payload, err := json.Marshal(createContactRequest{
		Email:      email,
		Source:     source,
		Subscribed: true,
	})
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts/create", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("loops request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Loops returns 409 for contacts that already exist. Signing up
		// twice is not an error worth retrying.
		if resp.StatusCode == http.StatusConflict {
			return nil
		}
		var apiResp apiResponse
		if json.Unmarshal(body, &apiResp) == nil && apiResp.Message != "" {
			return fmt.Errorf("loops returned status %d: %s", resp.StatusCode, apiResp.Message)
		}
		return fmt.Errorf("loops returned status %d", resp.StatusCode)
	}

	return nil
}
