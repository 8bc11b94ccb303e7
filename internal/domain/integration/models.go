package integration

import (
	"errors"
	"time"
)

// Linked providers
const (
	ProviderGusto = "gusto"
)

// Link states. A link is pending once an authorization code has been
// received and linked once the exchanged token pair is persisted.
const (
	StatePending = "pending"
	StateLinked  = "linked"
)

var (
	ErrTokenNotFound   = errors.New("integration token not found")
	ErrUnknownProvider = errors.New("unknown integration provider")
)

// Token stores an OAuth access/refresh token pair for a linked
// third-party account, unique per (user, provider).
type Token struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TokenPair is the result of an authorization-code or refresh exchange.
// Field tags follow the OAuth token response wire format.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func IsValidProvider(p string) bool {
	return p == ProviderGusto
}
