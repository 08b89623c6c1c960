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

type messageServiceFixture struct {
	messageRepo *mocks.MockMessageRepository
	chatRepo    *mocks.MockChatRepository
	groupRepo   *mocks.MockGroupRepository
	userRepo    *mocks.MockUserRepository
	txManager   *mocks.MockTransactionManager
	notifier    *mocks.MockRoomBroadcaster
	svc         ports.MessageService
}

func newMessageServiceFixture() *messageServiceFixture {
	f := &messageServiceFixture{
		messageRepo: mocks.NewMockMessageRepository(),
		chatRepo:    mocks.NewMockChatRepository(),
		groupRepo:   mocks.NewMockGroupRepository(),
		userRepo:    mocks.NewMockUserRepository(),
		txManager:   mocks.NewMockTransactionManager(),
		notifier:    mocks.NewMockRoomBroadcaster(),
	}
	f.svc = NewMessageService(f.messageRepo, f.chatRepo, f.groupRepo, f.userRepo, f.txManager, f.notifier, testLogger())
	return f
}

func TestMessageService_SendMessage(t *testing.T) {
	ctx := context.Background()
	sender := uuid.New()
	other := uuid.New()
	chatID := uuid.New()

	t.Run("persists and fans out a direct message", func(t *testing.T) {
		f := newMessageServiceFixture()

		chat := &domain.Chat{ID: chatID, MemberIDs: []uuid.UUID{sender, other}}
		f.userRepo.On("GetByID", ctx, sender).Return(&domain.User{ID: sender, Name: "Alice"}, nil)
		f.chatRepo.On("GetByID", ctx, chatID).Return(chat, nil)
		f.txManager.On("WithTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Return(&domain.Message{ID: uuid.New(), ChatID: chatID, SenderID: sender, SenderName: "Alice", Content: "hi", Type: domain.MessageTypeText}, nil)
		f.chatRepo.On("SetLatestMessage", ctx, chatID, mock.AnythingOfType("uuid.UUID")).Return(nil)

		f.notifier.On("BroadcastToChat", chatID.String(), mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventReceiveMessage
		})).Return()
		f.notifier.On("BroadcastToMembers", []string{other.String()}, mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventGetNotification
		})).Return()

		message, err := f.svc.SendMessage(ctx, ports.SendMessageParams{
			ChatID:   chatID,
			SenderID: sender,
			Content:  "hi",
		})

		require.NoError(t, err)
		assert.Equal(t, "hi", message.Content)
		f.notifier.AssertExpectations(t)
	})

	t.Run("routes the unread signal to the group room for group chats", func(t *testing.T) {
		f := newMessageServiceFixture()
		groupID := uuid.New()

		group := &domain.Group{ID: groupID, AdminID: sender, MemberIDs: []uuid.UUID{sender, other}}
		f.userRepo.On("GetByID", ctx, sender).Return(&domain.User{ID: sender, Name: "Alice"}, nil)
		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)
		f.txManager.On("WithTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Return(&domain.Message{ID: uuid.New(), ChatID: groupID, SenderID: sender, Content: "hi all", Type: domain.MessageTypeText}, nil)
		f.groupRepo.On("SetLastMessageAt", ctx, groupID, mock.AnythingOfType("time.Time")).Return(nil)

		f.notifier.On("BroadcastToChat", groupID.String(), mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventReceiveMessage
		})).Return()
		f.notifier.On("BroadcastToChat", groupID.String(), mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventGetNotification
		})).Return()

		_, err := f.svc.SendMessage(ctx, ports.SendMessageParams{
			ChatID:      groupID,
			SenderID:    sender,
			Content:     "hi all",
			IsGroupChat: true,
		})

		require.NoError(t, err)
		f.notifier.AssertExpectations(t)
		f.notifier.AssertNotCalled(t, "BroadcastToMembers", mock.Anything, mock.Anything)
	})

	t.Run("rejects a sender outside the chat", func(t *testing.T) {
		f := newMessageServiceFixture()
		outsider := uuid.New()

		f.userRepo.On("GetByID", ctx, outsider).Return(&domain.User{ID: outsider, Name: "Eve"}, nil)
		f.chatRepo.On("GetByID", ctx, chatID).Return(&domain.Chat{ID: chatID, MemberIDs: []uuid.UUID{sender, other}}, nil)

		_, err := f.svc.SendMessage(ctx, ports.SendMessageParams{
			ChatID:   chatID,
			SenderID: outsider,
			Content:  "hi",
		})

		assert.ErrorIs(t, err, apperrors.ErrNotChatMember)
		f.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("does not broadcast when the write fails", func(t *testing.T) {
		f := newMessageServiceFixture()

		f.userRepo.On("GetByID", ctx, sender).Return(&domain.User{ID: sender, Name: "Alice"}, nil)
		f.chatRepo.On("GetByID", ctx, chatID).Return(&domain.Chat{ID: chatID, MemberIDs: []uuid.UUID{sender, other}}, nil)
		f.txManager.On("WithTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(apperrors.ErrInternal)

		_, err := f.svc.SendMessage(ctx, ports.SendMessageParams{
			ChatID:   chatID,
			SenderID: sender,
			Content:  "hi",
		})

		assert.ErrorIs(t, err, apperrors.ErrInternal)
		f.notifier.AssertNotCalled(t, "BroadcastToChat", mock.Anything, mock.Anything)
	})

	t.Run("rejects an empty message", func(t *testing.T) {
		f := newMessageServiceFixture()

		f.userRepo.On("GetByID", ctx, sender).Return(&domain.User{ID: sender, Name: "Alice"}, nil)

		_, err := f.svc.SendMessage(ctx, ports.SendMessageParams{
			ChatID:   chatID,
			SenderID: sender,
		})

		assert.ErrorIs(t, err, apperrors.ErrMessageContentRequired)
	})
}

func TestMessageService_ListMessages(t *testing.T) {
	ctx := context.Background()
	viewer := uuid.New()
	other := uuid.New()
	chatID := uuid.New()

	t.Run("returns a history page with the total count", func(t *testing.T) {
		f := newMessageServiceFixture()

		f.chatRepo.On("GetByID", ctx, chatID).Return(&domain.Chat{ID: chatID, MemberIDs: []uuid.UUID{viewer, other}}, nil)
		f.messageRepo.On("CountByChat", ctx, chatID).Return(int64(3), nil)
		f.messageRepo.On("ListByChat", ctx, chatID, 2, 0).Return([]*domain.Message{{ChatID: chatID, Content: "hi"}, {ChatID: chatID, Content: "there"}}, nil)

		messages, total, err := f.svc.ListMessages(ctx, chatID, viewer, 2, 0)

		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, int64(3), total)
	})

	t.Run("falls back to group membership", func(t *testing.T) {
		f := newMessageServiceFixture()
		groupID := uuid.New()

		f.chatRepo.On("GetByID", ctx, groupID).Return(nil, apperrors.ErrChatNotFound)
		f.groupRepo.On("GetByID", ctx, groupID).Return(&domain.Group{ID: groupID, AdminID: viewer, MemberIDs: []uuid.UUID{viewer, other}}, nil)
		f.messageRepo.On("CountByChat", ctx, groupID).Return(int64(0), nil)
		f.messageRepo.On("ListByChat", ctx, groupID, 25, 0).Return([]*domain.Message{}, nil)

		_, _, err := f.svc.ListMessages(ctx, groupID, viewer, 25, 0)

		require.NoError(t, err)
	})

	t.Run("rejects a non-member", func(t *testing.T) {
		f := newMessageServiceFixture()

		f.chatRepo.On("GetByID", ctx, chatID).Return(&domain.Chat{ID: chatID, MemberIDs: []uuid.UUID{other}}, nil)

		_, _, err := f.svc.ListMessages(ctx, chatID, viewer, 25, 0)

		assert.ErrorIs(t, err, apperrors.ErrNotChatMember)
		f.messageRepo.AssertNotCalled(t, "ListByChat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
