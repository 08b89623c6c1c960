package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lorrc/chat-backend/internal/core/domain"
)

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) (*domain.User, error) {
	args := m.Called(ctx, id, name, profilePic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) HasFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	args := m.Called(ctx, senderID, recipientID)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	args := m.Called(ctx, senderID, recipientID)
	return args.Error(0)
}

func (m *MockUserRepository) CreateFriendship(ctx context.Context, a, b uuid.UUID) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

// MockChatRepository is a mock implementation of ports.ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	args := m.Called(ctx, chat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) FindOneToOne(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) SetLatestMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

// MockGroupRepository is a mock implementation of ports.GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{}
}

func (m *MockGroupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.GroupSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupSnapshot), args.Error(1)
}

func (m *MockGroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.GroupSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupSnapshot), args.Error(1)
}

func (m *MockGroupRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) error {
	args := m.Called(ctx, id, name, profilePic)
	return args.Error(0)
}

func (m *MockGroupRepository) AddMembers(ctx context.Context, id uuid.UUID, memberIDs []uuid.UUID) error {
	args := m.Called(ctx, id, memberIDs)
	return args.Error(0)
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, id, memberID uuid.UUID) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}

func (m *MockGroupRepository) SetMemberAdmin(ctx context.Context, id, memberID uuid.UUID, isAdmin bool) error {
	args := m.Called(ctx, id, memberID, isAdmin)
	return args.Error(0)
}

func (m *MockGroupRepository) SetCreator(ctx context.Context, id, newAdminID uuid.UUID) error {
	args := m.Called(ctx, id, newAdminID)
	return args.Error(0)
}

func (m *MockGroupRepository) SetLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of ports.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) CountByChat(ctx context.Context, chatID uuid.UUID) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionManager is a mock implementation of ports.TransactionManager.
// By default it runs the given function with the same context.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockRoomBroadcaster is a mock implementation of ports.RoomBroadcaster
type MockRoomBroadcaster struct {
	mock.Mock
}

func NewMockRoomBroadcaster() *MockRoomBroadcaster {
	return &MockRoomBroadcaster{}
}

func (m *MockRoomBroadcaster) BroadcastToChat(chatID string, event domain.Event) {
	m.Called(chatID, event)
}

func (m *MockRoomBroadcaster) BroadcastToUser(userID string, event domain.Event) {
	m.Called(userID, event)
}

func (m *MockRoomBroadcaster) BroadcastToMembers(memberIDs []string, event domain.Event) {
	m.Called(memberIDs, event)
}
