package integration

import "context"

// Repository defines persistence for integration tokens. Upsert is keyed
// by the (user_id, provider) uniqueness constraint.
type Repository interface {
	Upsert(ctx context.Context, token *Token) (*Token, error)
	GetByUserAndProvider(ctx context.Context, userID, provider string) (*Token, error)
	Delete(ctx context.Context, userID, provider string) error
}
