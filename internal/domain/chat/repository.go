package chat

import (
	"context"
	"time"
)

// Repository defines persistence for channels, messages and memberships.
type Repository interface {
	CreateChannel(ctx context.Context, ch *Channel, memberIDs []string) (*Channel, error)
	GetChannel(ctx context.Context, id string) (*Channel, error)
	// ListChannelsForUser returns the channels the user belongs to,
	// newest first.
	ListChannelsForUser(ctx context.Context, userID string) ([]*Channel, error)

	CreateMessage(ctx context.Context, m *Message) (*Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	// ListMessages returns channel messages in ascending creation order.
	ListMessages(ctx context.Context, channelID string) ([]*Message, error)
	UpdateMessageContent(ctx context.Context, id, content string) (*Message, error)
	// SoftDeleteMessage sets the deleted flag; the row is retained.
	SoftDeleteMessage(ctx context.Context, id string) error

	AddMember(ctx context.Context, channelID, userID string) error
	GetMembership(ctx context.Context, channelID, userID string) (*Membership, error)
	ListMembers(ctx context.Context, channelID string) ([]*Membership, error)
	SetLastRead(ctx context.Context, channelID, userID string, at time.Time) error
	SetMuted(ctx context.Context, channelID, userID string, muted bool) error
	// CountUnread counts non-deleted messages from other senders created
	// after the membership's lastReadAt.
	CountUnread(ctx context.Context, channelID, userID string) (int, error)
}
