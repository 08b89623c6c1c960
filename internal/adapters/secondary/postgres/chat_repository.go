package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
	"github.com/lorrc/chat-backend/internal/core/utils"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ChatRepository = (*ChatRepository)(nil)

func NewChatRepository(pool *pgxpool.Pool) ports.ChatRepository {
	return &ChatRepository{pool: pool}
}

// Create persists the chat and its member rows in a single statement, so the
// insert stays atomic even outside an explicit transaction.
func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	const query = `
WITH new_chat AS (
  INSERT INTO chats (id, name, is_group_chat, created_at)
  VALUES ($1, $2, $3, $4)
  RETURNING id
)
INSERT INTO chat_members (chat_id, user_id)
SELECT new_chat.id, member
FROM new_chat, unnest($5::uuid[]) AS member
`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: chat.ID, Valid: true},
		utils.ToString(chat.Name),
		chat.IsGroupChat,
		pgtype.Timestamptz{Time: chat.CreatedAt, Valid: true},
		uuidArray(chat.MemberIDs),
	)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	const query = `
SELECT c.id, c.name, c.is_group_chat, c.latest_message_id, c.created_at, c.updated_at,
       ARRAY_AGG(cm.user_id ORDER BY cm.joined_at) AS members
FROM chats c
JOIN chat_members cm ON cm.chat_id = c.id
WHERE c.id = $1
GROUP BY c.id
`

	chat, err := scanChat(GetDBTX(ctx, r.pool).QueryRow(ctx, query, pgtype.UUID{Bytes: id, Valid: true}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, err
	}
	return chat, nil
}

// ListByMember returns the user's chats, most recently active first. Activity
// is the latest message when one exists, otherwise chat creation.
func (r *ChatRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error) {
	const query = `
SELECT c.id, c.name, c.is_group_chat, c.latest_message_id, c.created_at, c.updated_at,
       ARRAY_AGG(cm.user_id ORDER BY cm.joined_at) AS members
FROM chats c
JOIN chat_members cm ON cm.chat_id = c.id
LEFT JOIN messages m ON m.id = c.latest_message_id
WHERE c.id IN (SELECT chat_id FROM chat_members WHERE user_id = $1)
GROUP BY c.id, m.created_at
ORDER BY COALESCE(m.created_at, c.created_at) DESC
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, pgtype.UUID{Bytes: userID, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]*domain.Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chats, nil
}

// FindOneToOne returns the direct chat whose members are exactly the given
// pair.
func (r *ChatRepository) FindOneToOne(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	const query = `
SELECT c.id
FROM chats c
JOIN chat_members x ON x.chat_id = c.id AND x.user_id = $1
JOIN chat_members y ON y.chat_id = c.id AND y.user_id = $2
WHERE c.is_group_chat = FALSE
  AND (SELECT COUNT(*) FROM chat_members cm WHERE cm.chat_id = c.id) = 2
LIMIT 1
`

	var id pgtype.UUID
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		pgtype.UUID{Bytes: a, Valid: true},
		pgtype.UUID{Bytes: b, Valid: true},
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id.Bytes)
}

func (r *ChatRepository) SetLatestMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	const query = `UPDATE chats SET latest_message_id = $2, updated_at = $3 WHERE id = $1`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: chatID, Valid: true},
		pgtype.UUID{Bytes: messageID, Valid: true},
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	return err
}

func scanChat(row pgx.Row) (*domain.Chat, error) {
	var (
		id              pgtype.UUID
		chat            domain.Chat
		name            pgtype.Text
		latestMessageID pgtype.UUID
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
		members         []pgtype.UUID
	)
	err := row.Scan(&id, &name, &chat.IsGroupChat, &latestMessageID, &createdAt, &updatedAt, &members)
	if err != nil {
		return nil, err
	}
	chat.ID = id.Bytes
	chat.Name = utils.FromString(name)
	chat.CreatedAt = createdAt.Time
	if latestMessageID.Valid {
		value := uuid.UUID(latestMessageID.Bytes)
		chat.LatestMessageID = &value
	}
	if updatedAt.Valid {
		value := updatedAt.Time
		chat.UpdatedAt = &value
	}
	chat.MemberIDs = make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		chat.MemberIDs = append(chat.MemberIDs, member.Bytes)
	}
	return &chat, nil
}
