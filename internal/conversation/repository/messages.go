package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveMessage stores a message. When a channel message ID is present the
// insert is idempotent: a replayed webhook delivery hits the unique index,
// nothing is written and inserted comes back false.
func (r *Repo) SaveMessage(ctx context.Context, params SaveMessageParams) (Message, bool, error) {
	messageType := params.MessageType
	if messageType == "" {
		messageType = "text"
	}

	query := `
		INSERT INTO messages (conversation_id, direction, sender_type, message_type,
			content, channel_message_id, media_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		ON CONFLICT (channel_message_id) WHERE channel_message_id IS NOT NULL DO NOTHING
		RETURNING id, conversation_id, direction, sender_type, message_type,
			content, channel_message_id, media_id, created_at`

	var m Message
	err := r.pool.QueryRow(ctx, query,
		params.ConversationID, params.Direction, params.SenderType, messageType,
		params.Content, params.ChannelMessageID, params.MediaID,
	).Scan(
		&m.ID, &m.ConversationID, &m.Direction, &m.SenderType, &m.MessageType,
		&m.Content, &m.ChannelMessageID, &m.MediaID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, false, nil
		}
		return Message{}, false, fmt.Errorf("save message: %w", err)
	}
	return m, true, nil
}

// ListMessages returns a conversation's messages oldest first. A limit of 0
// means no limit.
func (r *Repo) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	query := `
		SELECT id, conversation_id, direction, sender_type, message_type,
			content, channel_message_id, media_id, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	args := []interface{}{conversationID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.Direction, &m.SenderType, &m.MessageType,
			&m.Content, &m.ChannelMessageID, &m.MediaID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
