package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/chat-backend/internal/core/domain"
	"github.com/lorrc/chat-backend/internal/core/ports"
	"github.com/lorrc/chat-backend/internal/core/utils"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

var _ ports.MessageRepository = (*MessageRepository)(nil)

func NewMessageRepository(pool *pgxpool.Pool) ports.MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	const query = `
INSERT INTO messages (id, chat_id, sender_id, content, file_url, file_name, type, delivered, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: message.ID, Valid: true},
		pgtype.UUID{Bytes: message.ChatID, Valid: true},
		pgtype.UUID{Bytes: message.SenderID, Valid: true},
		message.Content,
		utils.ToString(message.FileURL),
		utils.ToString(message.FileName),
		string(message.Type),
		message.Delivered,
		pgtype.Timestamptz{Time: message.CreatedAt, Valid: true},
	)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// ListByChat returns a page of the conversation history oldest first, with
// sender names resolved for display.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	const query = `
SELECT m.id, m.chat_id, m.sender_id, u.name, m.content, m.file_url, m.file_name, m.type, m.delivered, m.created_at
FROM messages m
JOIN users u ON u.id = m.sender_id
WHERE m.chat_id = $1
ORDER BY m.created_at
LIMIT $2 OFFSET $3
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, pgtype.UUID{Bytes: chatID, Valid: true}, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		var (
			id          pgtype.UUID
			msgChatID   pgtype.UUID
			senderID    pgtype.UUID
			message     domain.Message
			fileURL     pgtype.Text
			fileName    pgtype.Text
			messageType string
			createdAt   pgtype.Timestamptz
		)
		err := rows.Scan(&id, &msgChatID, &senderID, &message.SenderName, &message.Content,
			&fileURL, &fileName, &messageType, &message.Delivered, &createdAt)
		if err != nil {
			return nil, err
		}
		message.ID = id.Bytes
		message.ChatID = msgChatID.Bytes
		message.SenderID = senderID.Bytes
		message.FileURL = utils.FromString(fileURL)
		message.FileName = utils.FromString(fileName)
		message.Type = domain.MessageType(messageType)
		message.CreatedAt = createdAt.Time
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// CountByChat returns the total number of messages in a conversation.
func (r *MessageRepository) CountByChat(ctx context.Context, chatID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE chat_id = $1`

	var count int64
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, pgtype.UUID{Bytes: chatID, Valid: true}).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
