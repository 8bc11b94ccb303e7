package push

import "context"

// Repository defines persistence for push subscriptions. Defined in the
// domain layer, implemented in the infrastructure layer.
type Repository interface {
	Upsert(ctx context.Context, params SubscribeParams) (*Subscription, error)
	ListByUserID(ctx context.Context, userID string) ([]*Subscription, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*Subscription, error)
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
}

// Messenger delivers push notifications to subscription endpoints.
// Implemented by the Firebase FCM client in the infrastructure layer.
type Messenger interface {
	Send(ctx context.Context, endpoint string, title, body string, data map[string]string) error
	SendMulticast(ctx context.Context, endpoints []string, title, body string, data map[string]string) error
}
