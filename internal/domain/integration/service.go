package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exchanger swaps an authorization code (or refresh token) for a token
// pair at the provider's token endpoint. Implemented per provider.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// Service owns the pending → linked transition for third-party account
// links.
type Service struct {
	repo       Repository
	exchangers map[string]Exchanger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, exchangers: make(map[string]Exchanger)}
}

// RegisterExchanger attaches a provider's token-endpoint client.
func (s *Service) RegisterExchanger(provider string, ex Exchanger) {
	s.exchangers[provider] = ex
}

// CompleteLink exchanges the authorization code and persists the token
// pair keyed by (user, provider). Persistence failure is an error: the
// link stays pending and the caller must surface the failure rather than
// redirect as if it succeeded.
func (s *Service) CompleteLink(ctx context.Context, userID, provider, code string) (*Token, error) {
	if !IsValidProvider(provider) {
		return nil, ErrUnknownProvider
	}
	ex, ok := s.exchangers[provider]
	if !ok {
		return nil, fmt.Errorf("no token exchanger registered for provider %q", provider)
	}

	pair, err := ex.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	now := time.Now().UTC()
	token := &Token{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     provider,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(pair.ExpiresIn) * time.Second),
		State:        StateLinked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, err := s.repo.Upsert(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to persist %s token: %w", provider, err)
	}
	return stored, nil
}

// AccessToken returns a live access token for the linked account,
// refreshing through the provider when the stored one is near expiry.
func (s *Service) AccessToken(ctx context.Context, userID, provider string) (string, error) {
	token, err := s.repo.GetByUserAndProvider(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", ErrTokenNotFound
	}

	if time.Until(token.ExpiresAt) > time.Minute {
		return token.AccessToken, nil
	}

	ex, ok := s.exchangers[provider]
	if !ok || token.RefreshToken == "" {
		return "", errors.New("stored token expired and cannot be refreshed")
	}

	pair, err := ex.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	token.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		token.RefreshToken = pair.RefreshToken
	}
	token.ExpiresAt = time.Now().UTC().Add(time.Duration(pair.ExpiresIn) * time.Second)
	token.UpdatedAt = time.Now().UTC()

	if _, err := s.repo.Upsert(ctx, token); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	return token.AccessToken, nil
}

// Unlink removes the stored token pair for the provider.
func (s *Service) Unlink(ctx context.Context, userID, provider string) error {
	if !IsValidProvider(provider) {
		return ErrUnknownProvider
	}
	return s.repo.Delete(ctx, userID, provider)
}

// Status reports the link state for the provider: pending when no token
// row exists yet, otherwise the stored state.
func (s *Service) Status(ctx context.Context, userID, provider string) (string, error) {
	if !IsValidProvider(provider) {
		return "", ErrUnknownProvider
	}
	token, err := s.repo.GetByUserAndProvider(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if token == nil {
		return StatePending, nil
	}
	return token.State, nil
}
