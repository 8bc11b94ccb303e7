package chat

import (
	"errors"
	"time"
)

// Channel types
const (
	ChannelTypePublic = "public"
	ChannelTypeDirect = "direct-message"
)

// Domain errors
var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMember          = errors.New("user is not a member of this channel")
	ErrNotSender          = errors.New("message does not belong to user")
	ErrInvalidChannelType = errors.New("channel type must be 'public' or 'direct-message'")
)

// Channel is a public room or a direct-message conversation.
type Channel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UnreadCount int       `json:"unreadCount"`
}

// Message is a channel message. Deleted messages are retained with the
// deleted flag set and their content blanked at the boundary.
type Message struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channelId"`
	SenderID    string    `json:"senderId"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	Mentions    []string  `json:"mentions"`
	Edited      bool      `json:"edited"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Membership tracks per-user channel state used for unread derivation.
type Membership struct {
	ChannelID  string     `json:"channelId"`
	UserID     string     `json:"userId"`
	LastReadAt *time.Time `json:"lastReadAt"`
	JoinedAt   time.Time  `json:"joinedAt"`
	Muted      bool       `json:"muted"`
}

type CreateChannelParams struct {
	Name         string
	Type         string
	CreatedBy    string
	Participants []string
}

func (p *CreateChannelParams) Validate() error {
	if p.CreatedBy == "" {
		return errors.New("createdBy is required")
	}
	switch p.Type {
	case ChannelTypePublic:
		if p.Name == "" {
			return errors.New("name is required for public channels")
		}
	case ChannelTypeDirect:
		if len(p.Participants) == 0 {
			return errors.New("participants are required for direct-message channels")
		}
	default:
		return ErrInvalidChannelType
	}
	return nil
}

type PostMessageParams struct {
	ChannelID   string
	SenderID    string
	Content     string
	Attachments []string
	Mentions    []string
}

func (p *PostMessageParams) Validate() error {
	if p.ChannelID == "" {
		return errors.New("channelId is required")
	}
	if p.SenderID == "" {
		return errors.New("senderId is required")
	}
	if p.Content == "" && len(p.Attachments) == 0 {
		return errors.New("message content or attachments are required")
	}
	if len(p.Content) > 8192 {
		return errors.New("message content must be 8192 characters or less")
	}
	return nil
}
