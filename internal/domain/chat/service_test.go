package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// MockChatRepo implements Repository for testing
type MockChatRepo struct {
	CreateChannelFunc        func(ctx context.Context, ch *Channel, memberIDs []string) (*Channel, error)
	GetChannelFunc           func(ctx context.Context, id string) (*Channel, error)
	ListChannelsForUserFunc  func(ctx context.Context, userID string) ([]*Channel, error)
	CreateMessageFunc        func(ctx context.Context, m *Message) (*Message, error)
	GetMessageFunc           func(ctx context.Context, id string) (*Message, error)
	ListMessagesFunc         func(ctx context.Context, channelID string) ([]*Message, error)
	UpdateMessageContentFunc func(ctx context.Context, id, content string) (*Message, error)
	SoftDeleteMessageFunc    func(ctx context.Context, id string) error
	AddMemberFunc            func(ctx context.Context, channelID, userID string) error
	GetMembershipFunc        func(ctx context.Context, channelID, userID string) (*Membership, error)
	ListMembersFunc          func(ctx context.Context, channelID string) ([]*Membership, error)
	SetLastReadFunc          func(ctx context.Context, channelID, userID string, at time.Time) error
	SetMutedFunc             func(ctx context.Context, channelID, userID string, muted bool) error
	CountUnreadFunc          func(ctx context.Context, channelID, userID string) (int, error)
}

func (m *MockChatRepo) CreateChannel(ctx context.Context, ch *Channel, memberIDs []string) (*Channel, error) {
	if m.CreateChannelFunc != nil {
		return m.CreateChannelFunc(ctx, ch, memberIDs)
	}
	return ch, nil
}

func (m *MockChatRepo) GetChannel(ctx context.Context, id string) (*Channel, error) {
	if m.GetChannelFunc != nil {
		return m.GetChannelFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChatRepo) ListChannelsForUser(ctx context.Context, userID string) ([]*Channel, error) {
	if m.ListChannelsForUserFunc != nil {
		return m.ListChannelsForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockChatRepo) CreateMessage(ctx context.Context, msg *Message) (*Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(ctx, msg)
	}
	return msg, nil
}

func (m *MockChatRepo) GetMessage(ctx context.Context, id string) (*Message, error) {
	if m.GetMessageFunc != nil {
		return m.GetMessageFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChatRepo) ListMessages(ctx context.Context, channelID string) ([]*Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, channelID)
	}
	return nil, nil
}

func (m *MockChatRepo) UpdateMessageContent(ctx context.Context, id, content string) (*Message, error) {
	if m.UpdateMessageContentFunc != nil {
		return m.UpdateMessageContentFunc(ctx, id, content)
	}
	return nil, nil
}

func (m *MockChatRepo) SoftDeleteMessage(ctx context.Context, id string) error {
	if m.SoftDeleteMessageFunc != nil {
		return m.SoftDeleteMessageFunc(ctx, id)
	}
	return nil
}

func (m *MockChatRepo) AddMember(ctx context.Context, channelID, userID string) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, channelID, userID)
	}
	return nil
}

func (m *MockChatRepo) GetMembership(ctx context.Context, channelID, userID string) (*Membership, error) {
	if m.GetMembershipFunc != nil {
		return m.GetMembershipFunc(ctx, channelID, userID)
	}
	return nil, nil
}

func (m *MockChatRepo) ListMembers(ctx context.Context, channelID string) ([]*Membership, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, channelID)
	}
	return nil, nil
}

func (m *MockChatRepo) SetLastRead(ctx context.Context, channelID, userID string, at time.Time) error {
	if m.SetLastReadFunc != nil {
		return m.SetLastReadFunc(ctx, channelID, userID, at)
	}
	return nil
}

func (m *MockChatRepo) SetMuted(ctx context.Context, channelID, userID string, muted bool) error {
	if m.SetMutedFunc != nil {
		return m.SetMutedFunc(ctx, channelID, userID, muted)
	}
	return nil
}

func (m *MockChatRepo) CountUnread(ctx context.Context, channelID, userID string) (int, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, channelID, userID)
	}
	return 0, nil
}

// MockNotifier records push fan-out calls
type MockNotifier struct {
	Calls      int
	Recipients []string
	Body       string
}

func (m *MockNotifier) PushToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) error {
	m.Calls++
	m.Recipients = userIDs
	m.Body = body
	return nil
}

func membership(channelID, userID string) *Membership {
	return &Membership{ChannelID: channelID, UserID: userID, JoinedAt: time.Now()}
}

func TestCreateChannel(t *testing.T) {
	tests := []struct {
		name        string
		params      CreateChannelParams
		wantErr     bool
		wantMembers int
	}{
		{
			name:        "public channel",
			params:      CreateChannelParams{Name: "warranty-team", Type: ChannelTypePublic, CreatedBy: "user-1"},
			wantMembers: 1,
		},
		{
			name: "direct message enrolls participants",
			params: CreateChannelParams{
				Type:         ChannelTypeDirect,
				CreatedBy:    "user-1",
				Participants: []string{"user-2"},
			},
			wantMembers: 2,
		},
		{
			name: "creator not duplicated in participants",
			params: CreateChannelParams{
				Type:         ChannelTypeDirect,
				CreatedBy:    "user-1",
				Participants: []string{"user-1", "user-2"},
			},
			wantMembers: 2,
		},
		{
			name:    "public channel without name",
			params:  CreateChannelParams{Type: ChannelTypePublic, CreatedBy: "user-1"},
			wantErr: true,
		},
		{
			name:    "dm without participants",
			params:  CreateChannelParams{Type: ChannelTypeDirect, CreatedBy: "user-1"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			params:  CreateChannelParams{Name: "x", Type: "group", CreatedBy: "user-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMembers []string
			repo := &MockChatRepo{
				CreateChannelFunc: func(ctx context.Context, ch *Channel, memberIDs []string) (*Channel, error) {
					gotMembers = memberIDs
					return ch, nil
				},
			}
			svc := NewService(repo, nil)

			ch, err := svc.CreateChannel(context.Background(), tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ch.ID == "" {
				t.Error("channel ID not generated")
			}
			if len(gotMembers) != tt.wantMembers {
				t.Errorf("members = %d, want %d", len(gotMembers), tt.wantMembers)
			}
		})
	}
}

func TestListChannels_AttachesUnreadCounts(t *testing.T) {
	repo := &MockChatRepo{
		ListChannelsForUserFunc: func(ctx context.Context, userID string) ([]*Channel, error) {
			return []*Channel{{ID: "ch-1"}, {ID: "ch-2"}}, nil
		},
		CountUnreadFunc: func(ctx context.Context, channelID, userID string) (int, error) {
			if channelID == "ch-1" {
				return 3, nil
			}
			return 0, nil
		},
	}
	svc := NewService(repo, nil)

	channels, err := svc.ListChannels(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channels[0].UnreadCount != 3 {
		t.Errorf("ch-1 unread = %d, want 3", channels[0].UnreadCount)
	}
	if channels[1].UnreadCount != 0 {
		t.Errorf("ch-2 unread = %d, want 0", channels[1].UnreadCount)
	}
}

func TestPostMessage(t *testing.T) {
	t.Run("requires membership", func(t *testing.T) {
		repo := &MockChatRepo{} // GetMembership returns nil
		svc := NewService(repo, nil)

		_, err := svc.PostMessage(context.Background(), PostMessageParams{
			ChannelID: "ch-1", SenderID: "user-1", Content: "hello",
		})
		if !errors.Is(err, ErrNotMember) {
			t.Errorf("err = %v, want ErrNotMember", err)
		}
	})

	t.Run("fans out to non-muted members except sender", func(t *testing.T) {
		notifier := &MockNotifier{}
		repo := &MockChatRepo{
			GetMembershipFunc: func(ctx context.Context, channelID, userID string) (*Membership, error) {
				return membership(channelID, userID), nil
			},
			ListMembersFunc: func(ctx context.Context, channelID string) ([]*Membership, error) {
				muted := membership(channelID, "user-3")
				muted.Muted = true
				return []*Membership{
					membership(channelID, "user-1"), // sender
					membership(channelID, "user-2"),
					muted,
				}, nil
			},
		}
		svc := NewService(repo, notifier)

		msg, err := svc.PostMessage(context.Background(), PostMessageParams{
			ChannelID: "ch-1", SenderID: "user-1", Content: "roof punch list is ready",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.ID == "" {
			t.Error("message ID not generated")
		}
		if notifier.Calls != 1 {
			t.Fatalf("notifier calls = %d, want 1", notifier.Calls)
		}
		if len(notifier.Recipients) != 1 || notifier.Recipients[0] != "user-2" {
			t.Errorf("recipients = %v, want [user-2]", notifier.Recipients)
		}
	})

	t.Run("long preview truncated on a rune boundary", func(t *testing.T) {
		notifier := &MockNotifier{}
		repo := &MockChatRepo{
			GetMembershipFunc: func(ctx context.Context, channelID, userID string) (*Membership, error) {
				return membership(channelID, userID), nil
			},
			ListMembersFunc: func(ctx context.Context, channelID string) ([]*Membership, error) {
				return []*Membership{
					membership(channelID, "user-1"),
					membership(channelID, "user-2"),
				}, nil
			},
		}
		svc := NewService(repo, notifier)

		content := strings.Repeat("ñ", 150)
		_, err := svc.PostMessage(context.Background(), PostMessageParams{
			ChannelID: "ch-1", SenderID: "user-1", Content: content,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := utf8.RuneCountInString(notifier.Body); got != 140 {
			t.Errorf("preview rune count = %d, want 140", got)
		}
		if !utf8.ValidString(notifier.Body) {
			t.Error("preview is not valid UTF-8")
		}
	})

	t.Run("empty content rejected", func(t *testing.T) {
		svc := NewService(&MockChatRepo{}, nil)
		_, err := svc.PostMessage(context.Background(), PostMessageParams{
			ChannelID: "ch-1", SenderID: "user-1",
		})
		if err == nil {
			t.Error("expected error for empty message")
		}
	})
}

func TestEditMessage(t *testing.T) {
	tests := []struct {
		name    string
		message *Message
		userID  string
		wantErr error
	}{
		{
			name:    "sender can edit",
			message: &Message{ID: "m-1", SenderID: "user-1"},
			userID:  "user-1",
		},
		{
			name:    "other user forbidden",
			message: &Message{ID: "m-1", SenderID: "user-1"},
			userID:  "user-2",
			wantErr: ErrNotSender,
		},
		{
			name:    "missing message",
			message: nil,
			userID:  "user-1",
			wantErr: ErrMessageNotFound,
		},
		{
			name:    "deleted message",
			message: &Message{ID: "m-1", SenderID: "user-1", Deleted: true},
			userID:  "user-1",
			wantErr: ErrMessageNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockChatRepo{
				GetMessageFunc: func(ctx context.Context, id string) (*Message, error) {
					return tt.message, nil
				},
				UpdateMessageContentFunc: func(ctx context.Context, id, content string) (*Message, error) {
					return &Message{ID: id, Content: content, Edited: true}, nil
				},
			}
			svc := NewService(repo, nil)

			msg, err := svc.EditMessage(context.Background(), "m-1", tt.userID, "updated")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !msg.Edited {
				t.Error("edited flag not set")
			}
		})
	}
}

func TestDeleteMessage_OnlySender(t *testing.T) {
	deleted := false
	repo := &MockChatRepo{
		GetMessageFunc: func(ctx context.Context, id string) (*Message, error) {
			return &Message{ID: id, SenderID: "user-1"}, nil
		},
		SoftDeleteMessageFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewService(repo, nil)

	if err := svc.DeleteMessage(context.Background(), "m-1", "user-2"); !errors.Is(err, ErrNotSender) {
		t.Errorf("err = %v, want ErrNotSender", err)
	}
	if deleted {
		t.Fatal("message deleted by non-sender")
	}

	if err := svc.DeleteMessage(context.Background(), "m-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("message not deleted by sender")
	}
}

func TestListMessages_BlanksDeletedContent(t *testing.T) {
	repo := &MockChatRepo{
		GetMembershipFunc: func(ctx context.Context, channelID, userID string) (*Membership, error) {
			return membership(channelID, userID), nil
		},
		ListMessagesFunc: func(ctx context.Context, channelID string) ([]*Message, error) {
			return []*Message{
				{ID: "m-1", Content: "kept"},
				{ID: "m-2", Content: "secret", Attachments: []string{"file.pdf"}, Deleted: true},
			}, nil
		},
	}
	svc := NewService(repo, nil)

	messages, err := svc.ListMessages(context.Background(), "ch-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messages[0].Content != "kept" {
		t.Errorf("live message content = %q", messages[0].Content)
	}
	if messages[1].Content != "" || messages[1].Attachments != nil {
		t.Error("deleted message content not blanked")
	}
}

func TestMarkRead_RequiresMembership(t *testing.T) {
	svc := NewService(&MockChatRepo{}, nil)
	if err := svc.MarkRead(context.Background(), "ch-1", "user-1"); !errors.Is(err, ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}
}

func TestJoinChannel(t *testing.T) {
	t.Run("public channel", func(t *testing.T) {
		repo := &MockChatRepo{
			GetChannelFunc: func(ctx context.Context, id string) (*Channel, error) {
				return &Channel{ID: id, Type: ChannelTypePublic}, nil
			},
		}
		svc := NewService(repo, nil)
		if err := svc.JoinChannel(context.Background(), "ch-1", "user-1"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("direct message refused", func(t *testing.T) {
		repo := &MockChatRepo{
			GetChannelFunc: func(ctx context.Context, id string) (*Channel, error) {
				return &Channel{ID: id, Type: ChannelTypeDirect}, nil
			},
		}
		svc := NewService(repo, nil)
		if err := svc.JoinChannel(context.Background(), "ch-1", "user-1"); !errors.Is(err, ErrNotMember) {
			t.Errorf("err = %v, want ErrNotMember", err)
		}
	})

	t.Run("missing channel", func(t *testing.T) {
		svc := NewService(&MockChatRepo{}, nil)
		if err := svc.JoinChannel(context.Background(), "ch-404", "user-1"); !errors.Is(err, ErrChannelNotFound) {
			t.Errorf("err = %v, want ErrChannelNotFound", err)
		}
	})
}
