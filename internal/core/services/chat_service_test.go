package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/mocks"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

func TestChatService_CreateOneToOne(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	t.Run("returns the existing chat on repeat contact", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		existing := &domain.Chat{ID: uuid.New(), MemberIDs: []uuid.UUID{alice, bob}}

		userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob}, nil)
		chatRepo.On("FindOneToOne", mock.Anything, alice, bob).Return(existing, nil)

		chat, err := service.CreateOneToOne(context.Background(), alice, bob)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, chat.ID)
		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates the chat on first contact", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob}, nil)
		chatRepo.On("FindOneToOne", mock.Anything, alice, bob).Return(nil, apperrors.ErrChatNotFound)
		chatRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Chat")).
			Run(func(args mock.Arguments) {
				chat := args.Get(1).(*domain.Chat)
				assert.False(t, chat.IsGroupChat)
				assert.ElementsMatch(t, []uuid.UUID{alice, bob}, chat.MemberIDs)
			}).
			Return(&domain.Chat{ID: uuid.New(), MemberIDs: []uuid.UUID{alice, bob}}, nil)

		_, err := service.CreateOneToOne(context.Background(), alice, bob)

		require.NoError(t, err)
		chatRepo.AssertExpectations(t)
	})

	t.Run("rejects a chat with yourself", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		_, err := service.CreateOneToOne(context.Background(), alice, alice)

		assert.ErrorIs(t, err, apperrors.ErrChatMembersNeeded)
	})

	t.Run("rejects an unknown counterpart", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		userRepo.On("GetByID", mock.Anything, bob).Return(nil, apperrors.ErrUserNotFound)

		_, err := service.CreateOneToOne(context.Background(), alice, bob)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestChatService_CreateGroupChat(t *testing.T) {
	creator := uuid.New()
	member := uuid.New()

	t.Run("includes the creator as a member", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		chatRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Chat")).
			Run(func(args mock.Arguments) {
				chat := args.Get(1).(*domain.Chat)
				assert.True(t, chat.IsGroupChat)
				assert.Equal(t, "Weekend", chat.Name)
				assert.ElementsMatch(t, []uuid.UUID{creator, member}, chat.MemberIDs)
			}).
			Return(&domain.Chat{ID: uuid.New()}, nil)

		_, err := service.CreateGroupChat(context.Background(), ports.CreateChatParams{
			Name:      "Weekend",
			CreatorID: creator,
			MemberIDs: []uuid.UUID{member},
		})

		require.NoError(t, err)
		chatRepo.AssertExpectations(t)
	})

	t.Run("requires a name", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		_, err := service.CreateGroupChat(context.Background(), ports.CreateChatParams{
			CreatorID: creator,
			MemberIDs: []uuid.UUID{member},
		})

		assert.ErrorIs(t, err, apperrors.ErrGroupNameRequired)
	})
}

func TestChatService_GetChat(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	outsider := uuid.New()
	chat := &domain.Chat{ID: uuid.New(), MemberIDs: []uuid.UUID{alice, bob}}

	t.Run("members can read the chat", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)

		found, err := service.GetChat(context.Background(), chat.ID, alice)

		require.NoError(t, err)
		assert.Equal(t, chat.ID, found.ID)
	})

	t.Run("non-members are rejected", func(t *testing.T) {
		chatRepo := new(mocks.MockChatRepository)
		userRepo := new(mocks.MockUserRepository)
		service := NewChatService(chatRepo, userRepo)

		chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)

		_, err := service.GetChat(context.Background(), chat.ID, outsider)

		assert.ErrorIs(t, err, apperrors.ErrNotChatMember)
	})
}
