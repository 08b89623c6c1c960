package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// GroupService implements the group lifecycle. Every mutation reloads the
// populated group after the write and pushes it to each member's user-room
// and to the group's chat-room, so open group views and chat lists both
// reconcile. A removed or leaving member is still notified once with the
// final state.
type GroupService struct {
	groupRepo ports.GroupRepository
	userRepo  ports.UserRepository
	notifier  ports.RoomBroadcaster
	logger    *slog.Logger
}

var _ ports.GroupService = (*GroupService)(nil)

// NewGroupService creates a new group service
func NewGroupService(
	groupRepo ports.GroupRepository,
	userRepo ports.UserRepository,
	notifier ports.RoomBroadcaster,
	logger *slog.Logger,
) ports.GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		logger:    logger.With("service", "group"),
	}
}

// CreateGroup creates a group and announces it to every initial member.
func (s *GroupService) CreateGroup(ctx context.Context, params ports.CreateGroupParams) (*domain.GroupSnapshot, error) {
	group, err := domain.NewGroup(domain.GroupParams{
		Name:       params.Name,
		AdminID:    params.CreatorID,
		MemberIDs:  params.MemberIDs,
		ProfilePic: params.ProfilePic,
	})
	if err != nil {
		return nil, err
	}

	// Every member must exist before the group is recorded.
	members, err := s.userRepo.GetByIDs(ctx, group.MemberIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(group.MemberIDs) {
		return nil, apperrors.ErrUserNotFound
	}

	if _, err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	snapshot, err := s.groupRepo.GetSnapshot(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToMembers(snapshot.MemberIDs(), domain.NewGroupCreatedEvent(*snapshot))
	return snapshot, nil
}

// GetGroup returns the populated group document.
func (s *GroupService) GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.GroupSnapshot, error) {
	return s.groupRepo.GetSnapshot(ctx, groupID)
}

// ListUserGroups returns every group the user belongs to.
func (s *GroupService) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*domain.GroupSnapshot, error) {
	return s.groupRepo.ListByMember(ctx, userID)
}

// UpdateGroup renames a group or changes its avatar. Creator only.
func (s *GroupService) UpdateGroup(ctx context.Context, params ports.UpdateGroupParams) (*domain.GroupSnapshot, error) {
	group, err := s.groupRepo.GetByID(ctx, params.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsCreator(params.ActorID) {
		return nil, apperrors.ErrNotGroupCreator
	}

	name := params.Name
	if name == "" {
		name = group.Name
	}
	if len(name) > domain.MaxGroupNameLength {
		return nil, apperrors.ErrNameTooLong
	}

	profilePic := params.ProfilePic
	if profilePic == "" {
		profilePic = group.ProfilePic
	}

	if err := s.groupRepo.UpdateProfile(ctx, group.ID, name, profilePic); err != nil {
		return nil, err
	}

	return s.notifyMembers(ctx, group.ID, nil)
}

// AddMembers adds users to the group. Creator or admins.
func (s *GroupService) AddMembers(ctx context.Context, groupID, actorID uuid.UUID, memberIDs []uuid.UUID) (*domain.GroupSnapshot, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actorID) {
		return nil, apperrors.ErrNotGroupAdmin
	}

	newMembers := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == uuid.Nil || group.HasMember(id) {
			continue
		}
		newMembers = append(newMembers, id)
	}
	if len(newMembers) == 0 {
		return nil, apperrors.ErrMembersRequired
	}

	users, err := s.userRepo.GetByIDs(ctx, newMembers)
	if err != nil {
		return nil, err
	}
	if len(users) != len(newMembers) {
		return nil, apperrors.ErrUserNotFound
	}

	if err := s.groupRepo.AddMembers(ctx, groupID, newMembers); err != nil {
		return nil, err
	}

	return s.notifyMembers(ctx, groupID, nil)
}

// RemoveMember removes a member from the group. Creator only; the creator
// themselves can never be removed. The removed member receives the final
// group state exactly once.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, memberID uuid.UUID) (*domain.GroupSnapshot, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsCreator(actorID) {
		return nil, apperrors.ErrNotGroupCreator
	}
	if group.IsCreator(memberID) {
		return nil, apperrors.ErrCannotRemoveOwner
	}
	if !group.HasMember(memberID) {
		return nil, apperrors.ErrNotGroupMember
	}

	if err := s.groupRepo.RemoveMember(ctx, groupID, memberID); err != nil {
		return nil, err
	}

	return s.notifyMembers(ctx, groupID, []uuid.UUID{memberID})
}

// ToggleAdmin promotes a member to admin or demotes an admin back to member.
// Creator only; the creator cannot be demoted.
func (s *GroupService) ToggleAdmin(ctx context.Context, groupID, actorID, memberID uuid.UUID) (*domain.GroupSnapshot, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsCreator(actorID) {
		return nil, apperrors.ErrNotGroupCreator
	}
	if group.IsCreator(memberID) {
		return nil, apperrors.ErrCannotRemoveOwner
	}
	if !group.HasMember(memberID) {
		return nil, apperrors.ErrNotGroupMember
	}

	if err := s.groupRepo.SetMemberAdmin(ctx, groupID, memberID, !group.IsAdmin(memberID)); err != nil {
		return nil, err
	}

	return s.notifyMembers(ctx, groupID, nil)
}

// LeaveGroup removes the caller from the group. A leaving creator hands the
// group to the first remaining member. The leaver receives the final state
// exactly once.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupSnapshot, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, apperrors.ErrNotGroupMember
	}

	if group.IsCreator(userID) {
		var successor uuid.UUID
		for _, id := range group.MemberIDs {
			if id != userID {
				successor = id
				break
			}
		}
		if successor == uuid.Nil {
			return nil, apperrors.ErrCannotRemoveOwner
		}
		if err := s.groupRepo.SetCreator(ctx, groupID, successor); err != nil {
			return nil, err
		}
	}

	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	return s.notifyMembers(ctx, groupID, []uuid.UUID{userID})
}

// notifyMembers reloads the populated group and pushes the update to each
// member's user-room plus the group's chat-room. extraMembers are included in
// the user-room targets even though they no longer appear in the snapshot.
func (s *GroupService) notifyMembers(ctx context.Context, groupID uuid.UUID, extraMembers []uuid.UUID) (*domain.GroupSnapshot, error) {
	snapshot, err := s.groupRepo.GetSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	targets := snapshot.MemberIDs()
	for _, id := range extraMembers {
		targets = appendUnique(targets, id.String())
	}

	event := domain.NewGroupUpdatedEvent(*snapshot)
	s.notifier.BroadcastToMembers(targets, event)
	s.notifier.BroadcastToChat(snapshot.ID, event)

	return snapshot, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
