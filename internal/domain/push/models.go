package push

import (
	"errors"
	"time"
)

var (
	ErrSubscriptionNotFound = errors.New("push subscription not found")
	ErrInvalidEndpoint      = errors.New("subscription endpoint is required")
)

// Subscription is a device push registration keyed by (user, endpoint).
// Subscribing again with the same endpoint reassigns it; there is no
// other dedup.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Endpoint  string    `json:"endpoint"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

type SubscribeParams struct {
	UserID   string
	Endpoint string
	Platform string
}

func (p SubscribeParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.Endpoint == "" {
		return ErrInvalidEndpoint
	}
	return nil
}
