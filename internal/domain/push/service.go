package push

import (
	"context"
	"log"
)

// Service contains the business logic for push subscriptions and
// delivery.
type Service struct {
	repo      Repository
	messenger Messenger
}

func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger}
}

// Subscribe registers (or reassigns) a subscription endpoint for a user.
func (s *Service) Subscribe(ctx context.Context, params SubscribeParams) (*Subscription, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, params)
}

// Unsubscribe removes the user's subscription for the endpoint.
func (s *Service) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return ErrInvalidEndpoint
	}
	return s.repo.DeleteByEndpoint(ctx, userID, endpoint)
}

// List returns the user's active subscriptions.
func (s *Service) List(ctx context.Context, userID string) ([]*Subscription, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// PushToUsers delivers a notification to every subscription of the given
// users. Satisfies chat.Notifier. A nil messenger means push delivery is
// not configured; that is not an error.
func (s *Service) PushToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) error {
	if s.messenger == nil || len(userIDs) == 0 {
		return nil
	}

	subs, err := s.repo.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	endpoints := make([]string, 0, len(subs))
	for _, sub := range subs {
		endpoints = append(endpoints, sub.Endpoint)
	}

	if err := s.messenger.SendMulticast(ctx, endpoints, title, body, data); err != nil {
		log.Printf("Push delivery failed for %d endpoints: %v", len(endpoints), err)
		return err
	}
	return nil
}
