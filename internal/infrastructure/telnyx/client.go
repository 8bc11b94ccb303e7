package telnyx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	baseURL        = "https://api.telnyx.com/v2"
	defaultTimeout = 30 * time.Second
	tokenTTL       = 24 * time.Hour
)

var ErrNotConfigured = errors.New("telnyx is not configured: set TELNYX_API_KEY and TELNYX_CREDENTIAL_ID")

// Client mints access tokens for an on-demand telephony credential.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	credentialID string
}

func NewClient(apiKey, credentialID string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      baseURL,
		apiKey:       apiKey,
		credentialID: credentialID,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.credentialID != ""
}

// Token is a short-lived credential token for the WebRTC SDK.
type Token struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Expiry   time.Time `json:"expiry"`
}

// CreateToken requests a token from the telephony-credentials endpoint.
// The response body is the raw JWT, not JSON.
func (c *Client) CreateToken(ctx context.Context, username string) (*Token, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/telephony_credentials/%s/token", c.baseURL, c.credentialID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("telnyx error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &Token{
		Token:    strings.TrimSpace(string(body)),
		Username: username,
		Expiry:   time.Now().Add(tokenTTL),
	}, nil
}
