package chat

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Notifier delivers a push notification to a set of users. Implemented by
// the push service; may be nil when push delivery is not configured.
type Notifier interface {
	PushToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) error
}

// Service contains the business logic for team chat.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CreateChannel creates a channel and enrolls its initial members. The
// creator is always a member; DM participants are enrolled alongside.
func (s *Service) CreateChannel(ctx context.Context, params CreateChannelParams) (*Channel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	members := []string{params.CreatedBy}
	for _, p := range params.Participants {
		if p != params.CreatedBy {
			members = append(members, p)
		}
	}

	ch := &Channel{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Type:      params.Type,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	return s.repo.CreateChannel(ctx, ch, members)
}

// ListChannels returns the user's channels with unread counts attached.
func (s *Service) ListChannels(ctx context.Context, userID string) ([]*Channel, error) {
	channels, err := s.repo.ListChannelsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, ch := range channels {
		count, err := s.repo.CountUnread(ctx, ch.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unread for channel %s: %w", ch.ID, err)
		}
		ch.UnreadCount = count
	}

	return channels, nil
}

// JoinChannel adds the user to a public channel. Direct-message channels
// have a fixed participant set.
func (s *Service) JoinChannel(ctx context.Context, channelID, userID string) error {
	ch, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrChannelNotFound
	}
	if ch.Type != ChannelTypePublic {
		return ErrNotMember
	}
	return s.repo.AddMember(ctx, channelID, userID)
}

// PostMessage stores a message and fans it out to the other non-muted
// members' push subscriptions. Push failures are logged, never surfaced:
// the message is already persisted.
func (s *Service) PostMessage(ctx context.Context, params PostMessageParams) (*Message, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireMembership(ctx, params.ChannelID, params.SenderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &Message{
		ID:          uuid.NewString(),
		ChannelID:   params.ChannelID,
		SenderID:    params.SenderID,
		Content:     params.Content,
		Attachments: params.Attachments,
		Mentions:    params.Mentions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	s.notifyMembers(ctx, created)
	return created, nil
}

// ListMessages returns a channel's messages for a member. Soft-deleted
// messages keep their place in the sequence with blanked content.
func (s *Service) ListMessages(ctx context.Context, channelID, userID string) ([]*Message, error) {
	if err := s.requireMembership(ctx, channelID, userID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, channelID)
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		if m.Deleted {
			m.Content = ""
			m.Attachments = nil
		}
	}
	return messages, nil
}

// EditMessage replaces a message's content. Only the sender may edit.
func (s *Service) EditMessage(ctx context.Context, messageID, userID, content string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.Deleted {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrNotSender
	}

	return s.repo.UpdateMessageContent(ctx, messageID, content)
}

// DeleteMessage soft-deletes a message. Only the sender may delete.
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID string) error {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return ErrNotSender
	}

	return s.repo.SoftDeleteMessage(ctx, messageID)
}

// MarkRead advances the member's lastReadAt watermark to now.
func (s *Service) MarkRead(ctx context.Context, channelID, userID string) error {
	if err := s.requireMembership(ctx, channelID, userID); err != nil {
		return err
	}
	return s.repo.SetLastRead(ctx, channelID, userID, time.Now().UTC())
}

// SetMuted toggles push delivery for the member.
func (s *Service) SetMuted(ctx context.Context, channelID, userID string, muted bool) error {
	if err := s.requireMembership(ctx, channelID, userID); err != nil {
		return err
	}
	return s.repo.SetMuted(ctx, channelID, userID, muted)
}

func (s *Service) requireMembership(ctx context.Context, channelID, userID string) error {
	m, err := s.repo.GetMembership(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotMember
	}
	return nil
}

// truncateBody caps the push preview at max runes without splitting a
// multi-byte character.
func truncateBody(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func (s *Service) notifyMembers(ctx context.Context, msg *Message) {
	if s.notifier == nil {
		return
	}

	members, err := s.repo.ListMembers(ctx, msg.ChannelID)
	if err != nil {
		log.Printf("Failed to list members for push fan-out on channel %s: %v", msg.ChannelID, err)
		return
	}

	var recipients []string
	for _, m := range members {
		if m.UserID == msg.SenderID || m.Muted {
			continue
		}
		recipients = append(recipients, m.UserID)
	}
	if len(recipients) == 0 {
		return
	}

	body := truncateBody(msg.Content, 140)
	data := map[string]string{
		"channelId": msg.ChannelID,
		"messageId": msg.ID,
	}
	if err := s.notifier.PushToUsers(ctx, recipients, "New message", body, data); err != nil {
		log.Printf("Push fan-out failed for message %s: %v", msg.ID, err)
	}
}
