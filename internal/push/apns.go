// Package push delivers notifications to user devices through APNs.
package push

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	productionHost = "https://api.push.apple.com"
	sandboxHost    = "https://api.sandbox.push.apple.com"

	// Apple rejects provider tokens older than an hour; refresh a
	// little earlier than that.
	tokenLifetime = 50 * time.Minute
)

// Config holds the APNs provider credentials.
type Config struct {
	KeyPEM   string
	KeyID    string
	TeamID   string
	BundleID string
	Sandbox  bool
}

// Client sends alert pushes over the APNs HTTP/2 API, signing requests
// with an ES256 provider token.
type Client struct {
	cfg        Config
	key        *ecdsa.PrivateKey
	host       string
	httpClient *http.Client

	mu          sync.Mutex
	cachedToken string
	tokenIssued time.Time
}

// New parses the provider signing key and returns a ready Client.
func New(cfg Config) (*Client, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(cfg.KeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse APNs signing key: %w", err)
	}

	host := productionHost
	if cfg.Sandbox {
		host = sandboxHost
	}

	return &Client{
		cfg:  cfg,
		key:  key,
		host: host,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// providerToken returns a signed ES256 token, reusing the cached one
// while it is still fresh.
func (c *Client) providerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachedToken != "" && time.Since(c.tokenIssued) < tokenLifetime {
		return c.cachedToken, nil
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.cfg.TeamID,
		"iat": now.Unix(),
	})
	tok.Header["kid"] = c.cfg.KeyID

	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign provider token: %w", err)
	}

	c.cachedToken = signed
	c.tokenIssued = now
	return signed, nil
}

// Alert is the visible part of a notification.
type Alert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apsPayload struct {
	APS struct {
		Alert Alert  `json:"alert"`
		Sound string `json:"sound,omitempty"`
	} `json:"aps"`
}

// SendAlert pushes an alert to a single device token.
func (c *Client) SendAlert(ctx context.Context, deviceToken string, alert Alert) error {
	token, err := c.providerToken()
	if err != nil {
		return err
	}

	var payload apsPayload
	payload.APS.Alert = alert
	payload.APS.Sound = "default"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/3/device/%s", c.host, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apns-topic", c.cfg.BundleID)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apns request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("apns returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
