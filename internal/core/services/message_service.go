package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// MessageService implements message persistence and the fan-out that follows
// it. The write commits first; broadcasting happens after and can never roll
// the message back.
type MessageService struct {
	messageRepo ports.MessageRepository
	chatRepo    ports.ChatRepository
	groupRepo   ports.GroupRepository
	userRepo    ports.UserRepository
	txManager   ports.TransactionManager
	notifier    ports.RoomBroadcaster
	logger      *slog.Logger
}

var _ ports.MessageService = (*MessageService)(nil)

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo ports.MessageRepository,
	chatRepo ports.ChatRepository,
	groupRepo ports.GroupRepository,
	userRepo ports.UserRepository,
	txManager ports.TransactionManager,
	notifier ports.RoomBroadcaster,
	logger *slog.Logger,
) ports.MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger.With("service", "message"),
	}
}

// SendMessage persists a message and advances the conversation's
// latest-message pointer in one transaction, then fans the message out to the
// conversation's room.
func (s *MessageService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	sender, err := s.userRepo.GetByID(ctx, params.SenderID)
	if err != nil {
		return nil, err
	}

	message, err := domain.NewMessage(domain.MessageParams{
		ChatID:     params.ChatID,
		SenderID:   params.SenderID,
		SenderName: sender.Name,
		Content:    params.Content,
		FileURL:    params.FileURL,
		FileName:   params.FileName,
		Type:       params.Type,
	})
	if err != nil {
		return nil, err
	}

	var notifyTargets []uuid.UUID
	if params.IsGroupChat {
		group, err := s.groupRepo.GetByID(ctx, params.ChatID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(params.SenderID) {
			return nil, apperrors.ErrNotGroupMember
		}

		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			saved, err := s.messageRepo.Create(ctx, message)
			if err != nil {
				return err
			}
			message = saved
			return s.groupRepo.SetLastMessageAt(ctx, group.ID, message.CreatedAt)
		})
		if err != nil {
			return nil, err
		}
	} else {
		chat, err := s.chatRepo.GetByID(ctx, params.ChatID)
		if err != nil {
			return nil, err
		}
		if !chat.HasMember(params.SenderID) {
			return nil, apperrors.ErrNotChatMember
		}

		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			saved, err := s.messageRepo.Create(ctx, message)
			if err != nil {
				return err
			}
			message = saved
			return s.chatRepo.SetLatestMessage(ctx, chat.ID, message.ID)
		})
		if err != nil {
			return nil, err
		}

		notifyTargets = chat.OtherMemberIDs(params.SenderID)
	}

	s.broadcast(message, params.IsGroupChat, notifyTargets)
	return message, nil
}

// broadcast delivers the persisted message to the conversation's chat-room,
// plus an unread signal: to the same room for group chats, to each other
// member's user-room for direct chats so closed conversations still surface
// the badge.
func (s *MessageService) broadcast(message *domain.Message, isGroup bool, notifyTargets []uuid.UUID) {
	snapshot := domain.NewMessageSnapshot(message)
	chatID := message.ChatID.String()
	senderID := message.SenderID.String()

	s.notifier.BroadcastToChat(chatID, domain.NewReceiveMessageEvent(snapshot))

	if isGroup {
		s.notifier.BroadcastToChat(chatID, domain.NewNotificationEvent(senderID))
		return
	}

	targets := make([]string, 0, len(notifyTargets))
	for _, id := range notifyTargets {
		targets = append(targets, id.String())
	}
	s.notifier.BroadcastToMembers(targets, domain.NewNotificationEvent(senderID))
}

// ListMessages returns a page of a conversation's history, oldest first,
// along with the conversation's total message count. The viewer must
// participate; group history is resolved when no direct chat matches the ID.
func (s *MessageService) ListMessages(ctx context.Context, chatID, viewerID uuid.UUID, limit, offset int) ([]*domain.Message, int64, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	switch {
	case err == nil:
		if !chat.HasMember(viewerID) {
			return nil, 0, apperrors.ErrNotChatMember
		}

	case errors.Is(err, apperrors.ErrChatNotFound):
		group, gerr := s.groupRepo.GetByID(ctx, chatID)
		if gerr != nil {
			if errors.Is(gerr, apperrors.ErrGroupNotFound) {
				return nil, 0, apperrors.ErrChatNotFound
			}
			return nil, 0, gerr
		}
		if !group.HasMember(viewerID) {
			return nil, 0, apperrors.ErrNotGroupMember
		}

	default:
		return nil, 0, err
	}

	total, err := s.messageRepo.CountByChat(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
