package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, name, email, password, profilePic string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// UserService defines the port for user directory and friendship logic.
type UserService interface {
	ListUsers(ctx context.Context, viewerID uuid.UUID) ([]*domain.User, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
	SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error
	AcceptFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) error
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*domain.User, error)
}

// UpdateProfileParams defines the input for updating a user profile.
type UpdateProfileParams struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Name       string
	ProfilePic string
}

// ChatService defines the port for conversation bookkeeping.
type ChatService interface {
	CreateOneToOne(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error)
	CreateGroupChat(ctx context.Context, params CreateChatParams) (*domain.Chat, error)
	GetChat(ctx context.Context, chatID, viewerID uuid.UUID) (*domain.Chat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error)
}

// CreateChatParams defines the input for creating a group chat.
type CreateChatParams struct {
	Name      string
	CreatorID uuid.UUID
	MemberIDs []uuid.UUID
}

// MessageService defines the port for sending and reading messages.
type MessageService interface {
	SendMessage(ctx context.Context, params SendMessageParams) (*domain.Message, error)
	ListMessages(ctx context.Context, chatID, viewerID uuid.UUID, limit, offset int) ([]*domain.Message, int64, error)
}

// SendMessageParams defines the input for persisting a new message.
type SendMessageParams struct {
	ChatID      uuid.UUID
	SenderID    uuid.UUID
	Content     string
	FileURL     string
	FileName    string
	Type        domain.MessageType
	IsGroupChat bool
}

// GroupService defines the port for group lifecycle logic. Every mutation
// notifies all member user-rooms after the write commits.
type GroupService interface {
	CreateGroup(ctx context.Context, params CreateGroupParams) (*domain.GroupSnapshot, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.GroupSnapshot, error)
	ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*domain.GroupSnapshot, error)
	UpdateGroup(ctx context.Context, params UpdateGroupParams) (*domain.GroupSnapshot, error)
	AddMembers(ctx context.Context, groupID, actorID uuid.UUID, memberIDs []uuid.UUID) (*domain.GroupSnapshot, error)
	RemoveMember(ctx context.Context, groupID, actorID, memberID uuid.UUID) (*domain.GroupSnapshot, error)
	ToggleAdmin(ctx context.Context, groupID, actorID, memberID uuid.UUID) (*domain.GroupSnapshot, error)
	LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupSnapshot, error)
}

// CreateGroupParams defines the input for creating a group.
type CreateGroupParams struct {
	Name       string
	CreatorID  uuid.UUID
	MemberIDs  []uuid.UUID
	ProfilePic string
}

// UpdateGroupParams defines the input for renaming a group or changing its
// avatar. Empty fields are left unchanged.
type UpdateGroupParams struct {
	GroupID    uuid.UUID
	ActorID    uuid.UUID
	Name       string
	ProfilePic string
}
