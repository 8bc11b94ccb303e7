package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cascadeconnect/internal/domain/push"
)

type PushSubscriptionRepository struct {
	db *DB
}

func NewPushSubscriptionRepository(db *DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

// Upsert registers a device endpoint, keyed by (user_id, endpoint).
// Re-registering an endpoint bumps last_used instead of adding a row.
func (r *PushSubscriptionRepository) Upsert(ctx context.Context, params push.SubscribeParams) (*push.Subscription, error) {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, platform)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, endpoint)
		DO UPDATE SET platform = EXCLUDED.platform, last_used = CURRENT_TIMESTAMP
		RETURNING id, user_id, endpoint, platform, created_at, last_used
	`

	var s push.Subscription
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Endpoint, params.Platform,
	).Scan(&s.ID, &s.UserID, &s.Endpoint, &s.Platform, &s.CreatedAt, &s.LastUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert push subscription: %w", err)
	}

	return &s, nil
}

func (r *PushSubscriptionRepository) ListByUserID(ctx context.Context, userID string) ([]*push.Subscription, error) {
	return r.list(ctx, `
		SELECT id, user_id, endpoint, platform, created_at, last_used
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
}

func (r *PushSubscriptionRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*push.Subscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT id, user_id, endpoint, platform, created_at, last_used
		FROM push_subscriptions
		WHERE user_id = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(userIDs))
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`,
		userID, endpoint,
	)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

// DeleteEndpointEverywhere removes an endpoint for all users. Used when the
// push provider reports the registration token as no longer valid.
func (r *PushSubscriptionRepository) DeleteEndpointEverywhere(ctx context.Context, endpoint string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint,
	)
	if err != nil {
		return fmt.Errorf("failed to delete stale push endpoint: %w", err)
	}
	return nil
}

func (r *PushSubscriptionRepository) list(ctx context.Context, query string, arg any) ([]*push.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*push.Subscription
	for rows.Next() {
		var s push.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.Platform, &s.CreatedAt, &s.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push subscriptions: %w", err)
	}

	return subs, nil
}

// PruneStale deletes subscriptions that have not been used for the given
// duration. Returns the number of rows removed.
func (r *PushSubscriptionRepository) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE last_used < CURRENT_TIMESTAMP - $1::interval`,
		fmt.Sprintf("%.0f seconds", olderThan.Seconds()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune push subscriptions: %w", err)
	}
	return result.RowsAffected()
}
