package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
)

// Chat is a conversation between two or more users. One-to-one chats are the
// default for direct messaging; group chats carry an optional display name.
type Chat struct {
	ID              uuid.UUID
	Name            string
	MemberIDs       []uuid.UUID
	LatestMessageID *uuid.UUID
	IsGroupChat     bool
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// HasMember reports whether the given user participates in this chat.
func (c *Chat) HasMember(userID uuid.UUID) bool {
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherMemberIDs returns every member except the given user. Used to target
// per-user notification rooms for one-to-one chats.
func (c *Chat) OtherMemberIDs(userID uuid.UUID) []uuid.UUID {
	others := make([]uuid.UUID, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if id != userID {
			others = append(others, id)
		}
	}
	return others
}

// ChatParams holds parameters for creating a chat.
type ChatParams struct {
	Name        string
	MemberIDs   []uuid.UUID
	IsGroupChat bool
}

// NewChat creates a chat with validated parameters.
func NewChat(params ChatParams) (*Chat, error) {
	members := dedupeIDs(params.MemberIDs)
	if len(members) < 2 {
		return nil, apperrors.ErrChatMembersNeeded
	}

	return &Chat{
		ID:          uuid.New(),
		Name:        params.Name,
		MemberIDs:   members,
		IsGroupChat: params.IsGroupChat,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// dedupeIDs removes duplicate IDs while preserving order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
