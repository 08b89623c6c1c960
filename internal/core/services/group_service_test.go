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

type groupServiceFixture struct {
	groupRepo *mocks.MockGroupRepository
	userRepo  *mocks.MockUserRepository
	notifier  *mocks.MockRoomBroadcaster
	svc       ports.GroupService
}

func newGroupServiceFixture() *groupServiceFixture {
	f := &groupServiceFixture{
		groupRepo: mocks.NewMockGroupRepository(),
		userRepo:  mocks.NewMockUserRepository(),
		notifier:  mocks.NewMockRoomBroadcaster(),
	}
	f.svc = NewGroupService(f.groupRepo, f.userRepo, f.notifier, testLogger())
	return f
}

func snapshotFor(group *domain.Group) *domain.GroupSnapshot {
	members := make([]domain.UserRef, 0, len(group.MemberIDs))
	for _, id := range group.MemberIDs {
		members = append(members, domain.UserRef{ID: id.String()})
	}
	return &domain.GroupSnapshot{
		ID:      group.ID.String(),
		Name:    group.Name,
		Admin:   domain.UserRef{ID: group.AdminID.String()},
		Members: members,
	}
}

func TestGroupService_CreateGroup(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()

	t.Run("creates the group and announces it to every member", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.userRepo.On("GetByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]*domain.User{{ID: member}, {ID: creator}}, nil)
		f.groupRepo.On("Create", ctx, mock.AnythingOfType("*domain.Group")).
			Return(&domain.Group{}, nil)
		f.groupRepo.On("GetSnapshot", ctx, mock.AnythingOfType("uuid.UUID")).
			Return(&domain.GroupSnapshot{
				Name:    "weekend plans",
				Admin:   domain.UserRef{ID: creator.String()},
				Members: []domain.UserRef{{ID: member.String()}, {ID: creator.String()}},
			}, nil)
		f.notifier.On("BroadcastToMembers", []string{member.String(), creator.String()}, mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventReceiveNewGroup
		})).Return()

		snapshot, err := f.svc.CreateGroup(ctx, ports.CreateGroupParams{
			Name:      "weekend plans",
			CreatorID: creator,
			MemberIDs: []uuid.UUID{member},
		})

		require.NoError(t, err)
		assert.Equal(t, "weekend plans", snapshot.Name)
		f.notifier.AssertExpectations(t)
	})

	t.Run("rejects a group without a name", func(t *testing.T) {
		f := newGroupServiceFixture()

		_, err := f.svc.CreateGroup(ctx, ports.CreateGroupParams{
			CreatorID: creator,
			MemberIDs: []uuid.UUID{member},
		})

		assert.ErrorIs(t, err, apperrors.ErrGroupNameRequired)
	})

	t.Run("rejects unknown members", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.userRepo.On("GetByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]*domain.User{{ID: creator}}, nil)

		_, err := f.svc.CreateGroup(ctx, ports.CreateGroupParams{
			Name:      "ghosts",
			CreatorID: creator,
			MemberIDs: []uuid.UUID{member},
		})

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		f.groupRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGroupService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()
	groupID := uuid.New()

	group := &domain.Group{
		ID:        groupID,
		Name:      "book club",
		AdminID:   creator,
		MemberIDs: []uuid.UUID{creator, member},
	}

	t.Run("removed member still receives the final update", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)
		f.groupRepo.On("RemoveMember", ctx, groupID, member).Return(nil)
		f.groupRepo.On("GetSnapshot", ctx, groupID).Return(&domain.GroupSnapshot{
			ID:      groupID.String(),
			Name:    "book club",
			Admin:   domain.UserRef{ID: creator.String()},
			Members: []domain.UserRef{{ID: creator.String()}},
		}, nil)

		f.notifier.On("BroadcastToMembers", []string{creator.String(), member.String()}, mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventGroupUpdated
		})).Return()
		f.notifier.On("BroadcastToChat", groupID.String(), mock.AnythingOfType("domain.Event")).Return()

		snapshot, err := f.svc.RemoveMember(ctx, groupID, creator, member)

		require.NoError(t, err)
		require.Len(t, snapshot.Members, 1)
		f.notifier.AssertExpectations(t)
	})

	t.Run("only the creator can remove members", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)

		_, err := f.svc.RemoveMember(ctx, groupID, member, creator)

		assert.ErrorIs(t, err, apperrors.ErrNotGroupCreator)
	})

	t.Run("the creator can never be removed", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)

		_, err := f.svc.RemoveMember(ctx, groupID, creator, creator)

		assert.ErrorIs(t, err, apperrors.ErrCannotRemoveOwner)
		f.groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGroupService_ToggleAdmin(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()
	groupID := uuid.New()

	group := &domain.Group{
		ID:        groupID,
		AdminID:   creator,
		MemberIDs: []uuid.UUID{creator, member},
	}

	t.Run("promotes a plain member", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)
		f.groupRepo.On("SetMemberAdmin", ctx, groupID, member, true).Return(nil)
		f.groupRepo.On("GetSnapshot", ctx, groupID).Return(snapshotFor(group), nil)
		f.notifier.On("BroadcastToMembers", mock.Anything, mock.Anything).Return()
		f.notifier.On("BroadcastToChat", mock.Anything, mock.Anything).Return()

		_, err := f.svc.ToggleAdmin(ctx, groupID, creator, member)

		require.NoError(t, err)
		f.groupRepo.AssertExpectations(t)
	})

	t.Run("demotes an existing admin", func(t *testing.T) {
		f := newGroupServiceFixture()

		withAdmin := &domain.Group{
			ID:        groupID,
			AdminID:   creator,
			MemberIDs: []uuid.UUID{creator, member},
			AdminIDs:  []uuid.UUID{member},
		}
		f.groupRepo.On("GetByID", ctx, groupID).Return(withAdmin, nil)
		f.groupRepo.On("SetMemberAdmin", ctx, groupID, member, false).Return(nil)
		f.groupRepo.On("GetSnapshot", ctx, groupID).Return(snapshotFor(withAdmin), nil)
		f.notifier.On("BroadcastToMembers", mock.Anything, mock.Anything).Return()
		f.notifier.On("BroadcastToChat", mock.Anything, mock.Anything).Return()

		_, err := f.svc.ToggleAdmin(ctx, groupID, creator, member)

		require.NoError(t, err)
		f.groupRepo.AssertExpectations(t)
	})

	t.Run("the creator cannot be demoted", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)

		_, err := f.svc.ToggleAdmin(ctx, groupID, creator, creator)

		assert.ErrorIs(t, err, apperrors.ErrCannotRemoveOwner)
	})
}

func TestGroupService_LeaveGroup(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()
	groupID := uuid.New()

	t.Run("a leaving creator hands the group to the next member", func(t *testing.T) {
		f := newGroupServiceFixture()

		group := &domain.Group{
			ID:        groupID,
			AdminID:   creator,
			MemberIDs: []uuid.UUID{creator, member},
		}
		f.groupRepo.On("GetByID", ctx, groupID).Return(group, nil)
		f.groupRepo.On("SetCreator", ctx, groupID, member).Return(nil)
		f.groupRepo.On("RemoveMember", ctx, groupID, creator).Return(nil)
		f.groupRepo.On("GetSnapshot", ctx, groupID).Return(&domain.GroupSnapshot{
			ID:      groupID.String(),
			Admin:   domain.UserRef{ID: member.String()},
			Members: []domain.UserRef{{ID: member.String()}},
		}, nil)
		f.notifier.On("BroadcastToMembers", []string{member.String(), creator.String()}, mock.Anything).Return()
		f.notifier.On("BroadcastToChat", groupID.String(), mock.Anything).Return()

		_, err := f.svc.LeaveGroup(ctx, groupID, creator)

		require.NoError(t, err)
		f.groupRepo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("a non-member cannot leave", func(t *testing.T) {
		f := newGroupServiceFixture()

		f.groupRepo.On("GetByID", ctx, groupID).Return(&domain.Group{
			ID:        groupID,
			AdminID:   creator,
			MemberIDs: []uuid.UUID{creator, member},
		}, nil)

		_, err := f.svc.LeaveGroup(ctx, groupID, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	})
}
