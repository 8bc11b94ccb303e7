package gusto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cascadeconnect/internal/domain/integration"
)

const (
	tokenURL       = "https://api.gusto.com/oauth/token"
	defaultTimeout = 30 * time.Second
)

var ErrNotConfigured = errors.New("gusto is not configured: set GUSTO_CLIENT_ID and GUSTO_CLIENT_SECRET")

// Client implements integration.Exchanger against the Gusto token
// endpoint.
type Client struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURL  string
}

var _ integration.Exchanger = (*Client)(nil)

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// ExchangeCode swaps an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*integration.TokenPair, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURL)

	return c.requestToken(ctx, data)
}

// RefreshToken swaps a refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*integration.TokenPair, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return c.requestToken(ctx, data)
}

func (c *Client) requestToken(ctx context.Context, data url.Values) (*integration.TokenPair, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gusto token exchange failed (status %d): %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pair integration.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &pair, nil
}
