package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cascadeconnect/internal/domain/chat"
)

type ChatRepository struct {
	db *DB
}

func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChannel inserts the channel and its initial memberships in one
// transaction so a half-created channel is never visible.
func (r *ChatRepository) CreateChannel(ctx context.Context, ch *chat.Channel, memberIDs []string) (*chat.Channel, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin channel creation: %w", err)
	}
	defer tx.Rollback()

	var created chat.Channel
	err = tx.QueryRowContext(ctx, `
		INSERT INTO internal_channels (id, name, type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, type, created_by, created_at
	`, ch.ID, ch.Name, ch.Type, ch.CreatedBy).Scan(
		&created.ID, &created.Name, &created.Type, &created.CreatedBy, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	for _, userID := range memberIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channel_members (channel_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (channel_id, user_id) DO NOTHING
		`, created.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to add channel member %q: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit channel creation: %w", err)
	}

	return &created, nil
}

func (r *ChatRepository) GetChannel(ctx context.Context, id string) (*chat.Channel, error) {
	var ch chat.Channel
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, created_by, created_at
		FROM internal_channels
		WHERE id = $1
	`, id).Scan(&ch.ID, &ch.Name, &ch.Type, &ch.CreatedBy, &ch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, chat.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return &ch, nil
}

func (r *ChatRepository) ListChannelsForUser(ctx context.Context, userID string) ([]*chat.Channel, error) {
	query := `
		SELECT c.id, c.name, c.type, c.created_by, c.created_at
		FROM internal_channels c
		JOIN channel_members m ON m.channel_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*chat.Channel
	for rows.Next() {
		var ch chat.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.CreatedBy, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, &ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}

	return channels, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, m *chat.Message) (*chat.Message, error) {
	query := `
		INSERT INTO internal_messages (id, channel_id, sender_id, content, attachments, mentions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, channel_id, sender_id, content, attachments, mentions,
		          edited, deleted, created_at, updated_at
	`

	created, err := scanMessage(r.db.QueryRowContext(
		ctx, query,
		m.ID, m.ChannelID, m.SenderID, m.Content,
		pq.Array(m.Attachments), pq.Array(m.Mentions),
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return created, nil
}

func (r *ChatRepository) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	query := `
		SELECT id, channel_id, sender_id, content, attachments, mentions,
		       edited, deleted, created_at, updated_at
		FROM internal_messages
		WHERE id = $1
	`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, chat.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return m, nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, channelID string) ([]*chat.Message, error) {
	query := `
		SELECT id, channel_id, sender_id, content, attachments, mentions,
		       edited, deleted, created_at, updated_at
		FROM internal_messages
		WHERE channel_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

func (r *ChatRepository) UpdateMessageContent(ctx context.Context, id, content string) (*chat.Message, error) {
	query := `
		UPDATE internal_messages
		SET content = $1, edited = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id, channel_id, sender_id, content, attachments, mentions,
		          edited, deleted, created_at, updated_at
	`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, content, id).Scan)
	if err == sql.ErrNoRows {
		return nil, chat.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	return m, nil
}

func (r *ChatRepository) SoftDeleteMessage(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE internal_messages
		SET deleted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted message: %w", err)
	}
	if affected == 0 {
		return chat.ErrMessageNotFound
	}

	return nil
}

func (r *ChatRepository) AddMember(ctx context.Context, channelID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_members (channel_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (channel_id, user_id) DO NOTHING
	`, channelID, userID)
	if err != nil {
		return fmt.Errorf("failed to add channel member: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetMembership(ctx context.Context, channelID, userID string) (*chat.Membership, error) {
	var m chat.Membership
	var lastReadAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT channel_id, user_id, last_read_at, joined_at, muted
		FROM channel_members
		WHERE channel_id = $1 AND user_id = $2
	`, channelID, userID).Scan(&m.ChannelID, &m.UserID, &lastReadAt, &m.JoinedAt, &m.Muted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if lastReadAt.Valid {
		m.LastReadAt = &lastReadAt.Time
	}

	return &m, nil
}

func (r *ChatRepository) ListMembers(ctx context.Context, channelID string) ([]*chat.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT channel_id, user_id, last_read_at, joined_at, muted
		FROM channel_members
		WHERE channel_id = $1
		ORDER BY joined_at ASC
	`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*chat.Membership
	for rows.Next() {
		var m chat.Membership
		var lastReadAt sql.NullTime
		if err := rows.Scan(&m.ChannelID, &m.UserID, &lastReadAt, &m.JoinedAt, &m.Muted); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		if lastReadAt.Valid {
			m.LastReadAt = &lastReadAt.Time
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

func (r *ChatRepository) SetLastRead(ctx context.Context, channelID, userID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE channel_members
		SET last_read_at = $1
		WHERE channel_id = $2 AND user_id = $3
	`, at, channelID, userID)
	if err != nil {
		return fmt.Errorf("failed to set last read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check last read update: %w", err)
	}
	if affected == 0 {
		return chat.ErrNotMember
	}

	return nil
}

func (r *ChatRepository) SetMuted(ctx context.Context, channelID, userID string, muted bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE channel_members
		SET muted = $1
		WHERE channel_id = $2 AND user_id = $3
	`, muted, channelID, userID)
	if err != nil {
		return fmt.Errorf("failed to set muted: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check muted update: %w", err)
	}
	if affected == 0 {
		return chat.ErrNotMember
	}

	return nil
}

// CountUnread derives the unread count from last_read_at instead of a
// stored counter. Deleted messages and the user's own messages never
// count as unread.
func (r *ChatRepository) CountUnread(ctx context.Context, channelID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM internal_messages msg
		JOIN channel_members m ON m.channel_id = msg.channel_id AND m.user_id = $2
		WHERE msg.channel_id = $1
		  AND msg.deleted = FALSE
		  AND msg.sender_id <> $2
		  AND (m.last_read_at IS NULL OR msg.created_at > m.last_read_at)
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, channelID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}

func scanMessage(scan func(dest ...any) error) (*chat.Message, error) {
	var m chat.Message
	var attachments, mentions pq.StringArray

	err := scan(
		&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &attachments, &mentions,
		&m.Edited, &m.Deleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Attachments = []string(attachments)
	m.Mentions = []string(mentions)

	return &m, nil
}
