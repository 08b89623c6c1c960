package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// ChatService implements conversation bookkeeping.
type ChatService struct {
	chatRepo ports.ChatRepository
	userRepo ports.UserRepository
}

var _ ports.ChatService = (*ChatService)(nil)

// NewChatService creates a new chat service
func NewChatService(chatRepo ports.ChatRepository, userRepo ports.UserRepository) ports.ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// CreateOneToOne returns the direct conversation between two users, creating
// it on first contact. Opening the same pair twice always yields the same
// chat.
func (s *ChatService) CreateOneToOne(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	if a == b {
		return nil, apperrors.ErrChatMembersNeeded
	}

	if _, err := s.userRepo.GetByID(ctx, b); err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.FindOneToOne(ctx, a, b)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, apperrors.ErrChatNotFound) {
		return nil, err
	}

	chat, err = domain.NewChat(domain.ChatParams{
		MemberIDs:   []uuid.UUID{a, b},
		IsGroupChat: false,
	})
	if err != nil {
		return nil, err
	}

	return s.chatRepo.Create(ctx, chat)
}

// CreateGroupChat creates a named multi-member conversation. The creator is
// always a member.
func (s *ChatService) CreateGroupChat(ctx context.Context, params ports.CreateChatParams) (*domain.Chat, error) {
	if params.Name == "" {
		return nil, apperrors.ErrGroupNameRequired
	}

	members := append([]uuid.UUID{params.CreatorID}, params.MemberIDs...)
	chat, err := domain.NewChat(domain.ChatParams{
		Name:        params.Name,
		MemberIDs:   members,
		IsGroupChat: true,
	})
	if err != nil {
		return nil, err
	}

	return s.chatRepo.Create(ctx, chat)
}

// GetChat returns a chat the viewer participates in.
func (s *ChatService) GetChat(ctx context.Context, chatID, viewerID uuid.UUID) (*domain.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(viewerID) {
		return nil, apperrors.ErrNotChatMember
	}

	return chat, nil
}

// ListChats returns every conversation the user participates in, most
// recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error) {
	return s.chatRepo.ListByMember(ctx, userID)
}
