package twilio

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("twilio is not configured: set TWILIO_ACCOUNT_SID, TWILIO_API_KEY_SID, TWILIO_API_KEY_SECRET and TWILIO_APP_SID")

// TokenMinter mints Twilio Voice access tokens locally. No network call
// is involved; the token is an HS256 JWT signed with the API key secret.
type TokenMinter struct {
	accountSID   string
	apiKeySID    string
	apiKeySecret string
	appSID       string
	ttl          time.Duration
	now          func() time.Time
}

func NewTokenMinter(accountSID, apiKeySID, apiKeySecret, appSID string, ttl time.Duration) *TokenMinter {
	return &TokenMinter{
		accountSID:   accountSID,
		apiKeySID:    apiKeySID,
		apiKeySecret: apiKeySecret,
		appSID:       appSID,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (m *TokenMinter) Configured() bool {
	return m.accountSID != "" && m.apiKeySID != "" && m.apiKeySecret != "" && m.appSID != ""
}

// Token is a minted voice access token.
type Token struct {
	Token    string    `json:"token"`
	Identity string    `json:"identity"`
	Expiry   time.Time `json:"expiry"`
}

type grants struct {
	Identity string     `json:"identity"`
	Voice    voiceGrant `json:"voice"`
}

type voiceGrant struct {
	Outgoing outgoingGrant `json:"outgoing"`
	Incoming incomingGrant `json:"incoming_allow,omitempty"`
}

type outgoingGrant struct {
	ApplicationSID string `json:"application_sid"`
}

type incomingGrant struct {
	Allow bool `json:"allow"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Grants grants `json:"grants"`
}

// Mint creates a voice access token for the identity.
func (m *TokenMinter) Mint(identity string) (*Token, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}
	if identity == "" {
		return nil, errors.New("identity is required")
	}

	now := m.now()
	expiry := now.Add(m.ttl)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%s", m.apiKeySID, uuid.NewString()),
			Issuer:    m.apiKeySID,
			Subject:   m.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		Grants: grants{
			Identity: identity,
			Voice: voiceGrant{
				Outgoing: outgoingGrant{ApplicationSID: m.appSID},
				Incoming: incomingGrant{Allow: true},
			},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"

	signed, err := token.SignedString([]byte(m.apiKeySecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign voice token: %w", err)
	}

	return &Token{Token: signed, Identity: identity, Expiry: expiry}, nil
}
