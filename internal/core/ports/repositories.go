package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
)

// UserRepository is the port for user persistence, including the friendship
// graph the original data model kept as arrays on the user document.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) (*domain.User, error)

	ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	HasFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error)
	CreateFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error
	DeleteFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error
	CreateFriendship(ctx context.Context, a, b uuid.UUID) error
}

// ChatRepository is the port for chat persistence.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error)
	FindOneToOne(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error)
	SetLatestMessage(ctx context.Context, chatID, messageID uuid.UUID) error
}

// GroupRepository is the port for group persistence.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) (*domain.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.GroupSnapshot, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.GroupSnapshot, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) error
	AddMembers(ctx context.Context, id uuid.UUID, memberIDs []uuid.UUID) error
	RemoveMember(ctx context.Context, id, memberID uuid.UUID) error
	SetMemberAdmin(ctx context.Context, id, memberID uuid.UUID, isAdmin bool) error
	SetCreator(ctx context.Context, id, newAdminID uuid.UUID) error
	SetLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MessageRepository is the port for message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	CountByChat(ctx context.Context, chatID uuid.UUID) (int64, error)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
