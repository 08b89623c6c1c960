package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// UserService implements the user directory and the friendship graph. Friend
// request activity is pushed to the affected user's room after the write
// commits; delivery is best-effort and never fails the request.
type UserService struct {
	userRepo ports.UserRepository
	notifier ports.RoomBroadcaster
	logger   *slog.Logger
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, notifier ports.RoomBroadcaster, logger *slog.Logger) ports.UserService {
	return &UserService{
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger.With("service", "user"),
	}
}

// ListUsers returns the user directory without the viewer.
func (s *UserService) ListUsers(ctx context.Context, viewerID uuid.UUID) ([]*domain.User, error) {
	return s.userRepo.List(ctx, viewerID)
}

// ListFriends returns the user's confirmed friends.
func (s *UserService) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	return s.userRepo.ListFriends(ctx, userID)
}

// ListFriendRequests returns the users with a pending request to userID.
func (s *UserService) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	return s.userRepo.ListFriendRequests(ctx, userID)
}

// SendFriendRequest records a pending request and notifies the recipient.
func (s *UserService) SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	if senderID == recipientID {
		return apperrors.ErrSelfFriendRequest
	}

	// The recipient must exist before anything is recorded.
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return err
	}

	friends, err := s.userRepo.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return err
	}
	if friends {
		return apperrors.ErrAlreadyFriends
	}

	// A pending request in either direction blocks a new one.
	pending, err := s.userRepo.HasFriendRequest(ctx, senderID, recipientID)
	if err != nil {
		return err
	}
	if !pending {
		pending, err = s.userRepo.HasFriendRequest(ctx, recipientID, senderID)
		if err != nil {
			return err
		}
	}
	if pending {
		return apperrors.ErrFriendRequestExists
	}

	if err := s.userRepo.CreateFriendRequest(ctx, senderID, recipientID); err != nil {
		return err
	}

	s.notifier.BroadcastToUser(recipientID.String(), domain.NewNotificationEvent(senderID.String()))
	return nil
}

// AcceptFriendRequest promotes a pending request into a friendship and
// notifies the original sender.
func (s *UserService) AcceptFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) error {
	pending, err := s.userRepo.HasFriendRequest(ctx, senderID, recipientID)
	if err != nil {
		return err
	}
	if !pending {
		return apperrors.ErrFriendRequestNotFound
	}

	if err := s.userRepo.CreateFriendship(ctx, senderID, recipientID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteFriendRequest(ctx, senderID, recipientID); err != nil {
		s.logger.Warn("friendship recorded but pending request not cleared",
			"sender_id", senderID,
			"recipient_id", recipientID,
			"error", err,
		)
	}

	s.notifier.BroadcastToUser(senderID.String(), domain.NewNotificationEvent(recipientID.String()))
	return nil
}

// UpdateProfile changes a user's display name or avatar. Users can only
// update their own profile.
func (s *UserService) UpdateProfile(ctx context.Context, params ports.UpdateProfileParams) (*domain.User, error) {
	if params.ActorID != params.UserID {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	name := params.Name
	if name == "" {
		name = user.Name
	}
	if len(name) > domain.MaxNameLength {
		return nil, apperrors.ErrNameTooLong
	}

	profilePic := params.ProfilePic
	if profilePic == "" {
		profilePic = user.ProfilePic
	}

	return s.userRepo.UpdateProfile(ctx, params.UserID, name, profilePic)
}
