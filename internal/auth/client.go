// Package auth integrates with the hosted auth service (Supabase GoTrue).
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/makex/makex-api/internal/model"
)

const (
	// requestTimeout bounds one auth service round trip.
	requestTimeout = 10 * time.Second

	// maxErrorBodySize caps how much of an upstream error body is kept.
	maxErrorBodySize = 4096
)

var (
	// ErrInvalidToken indicates the auth service rejected the token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// UpstreamError carries a non-2xx auth service response so callers can
// propagate the status and body verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the hosted auth service over HTTP.
// It is stateless; every validation is one network round trip.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates an auth client for the given service base URL.
// anonKey authenticates user-token validation; serviceKey authorizes
// admin operations and must never reach a response body.
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// gotrueUser is the subset of the auth service's user payload we read.
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ValidateToken resolves a bearer token to its user.
// Returns ErrInvalidToken when the service rejects the token and a
// wrapped transport error when the service is unreachable.
func (c *Client) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, ErrInvalidToken
	}

	var u gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}

	return &model.User{ID: u.ID, Email: u.Email}, nil
}

// AdminDeleteUser removes a user through the auth service admin API using
// the privileged service key. A non-2xx response is returned as an
// *UpstreamError so the handler can propagate status and body verbatim.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	return nil
}
