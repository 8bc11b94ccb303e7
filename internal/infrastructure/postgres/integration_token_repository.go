package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cascadeconnect/internal/domain/integration"
	"cascadeconnect/internal/infrastructure/crypto"
)

// IntegrationTokenRepository stores provider token sets. Access and
// refresh tokens are encrypted before they reach the database.
type IntegrationTokenRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

func NewIntegrationTokenRepository(db *DB, encryptor *crypto.Encryptor) *IntegrationTokenRepository {
	return &IntegrationTokenRepository{db: db, encryptor: encryptor}
}

// Upsert stores the provider token set, keyed by (user_id, provider).
// Re-linking a provider replaces the previous token row.
func (r *IntegrationTokenRepository) Upsert(ctx context.Context, token *integration.Token) (*integration.Token, error) {
	query := `
		INSERT INTO integration_tokens (id, user_id, provider, access_token, refresh_token, expires_at, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET access_token = EXCLUDED.access_token,
		              refresh_token = EXCLUDED.refresh_token,
		              expires_at = EXCLUDED.expires_at,
		              state = EXCLUDED.state,
		              updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, provider, access_token, refresh_token, expires_at, state, created_at, updated_at
	`

	id := token.ID
	if id == "" {
		id = uuid.NewString()
	}

	accessToken, err := r.encryptor.Encrypt(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshToken, err := r.encryptor.Encrypt(token.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	var t integration.Token
	err = r.db.QueryRowContext(
		ctx, query,
		id, token.UserID, token.Provider, accessToken, refreshToken,
		token.ExpiresAt, token.State,
	).Scan(
		&t.ID, &t.UserID, &t.Provider, &t.AccessToken, &t.RefreshToken,
		&t.ExpiresAt, &t.State, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert integration token: %w", err)
	}

	if err := r.decryptToken(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *IntegrationTokenRepository) GetByUserAndProvider(ctx context.Context, userID, provider string) (*integration.Token, error) {
	query := `
		SELECT id, user_id, provider, access_token, refresh_token, expires_at, state, created_at, updated_at
		FROM integration_tokens
		WHERE user_id = $1 AND provider = $2
	`

	var t integration.Token
	err := r.db.QueryRowContext(ctx, query, userID, provider).Scan(
		&t.ID, &t.UserID, &t.Provider, &t.AccessToken, &t.RefreshToken,
		&t.ExpiresAt, &t.State, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration token: %w", err)
	}

	if err := r.decryptToken(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *IntegrationTokenRepository) decryptToken(t *integration.Token) error {
	accessToken, err := r.encryptor.Decrypt(t.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refreshToken, err := r.encryptor.Decrypt(t.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	t.AccessToken = accessToken
	t.RefreshToken = refreshToken
	return nil
}

func (r *IntegrationTokenRepository) Delete(ctx context.Context, userID, provider string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM integration_tokens WHERE user_id = $1 AND provider = $2`,
		userID, provider,
	)
	if err != nil {
		return fmt.Errorf("failed to delete integration token: %w", err)
	}
	return nil
}
