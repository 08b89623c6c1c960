package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
)

const MaxGroupNameLength = 255

// Group is a named multi-member conversation. AdminID is the creator, who can
// never be removed or demoted; AdminIDs are additional admins the creator
// promotes.
type Group struct {
	ID            uuid.UUID
	Name          string
	AdminID       uuid.UUID
	MemberIDs     []uuid.UUID
	AdminIDs      []uuid.UUID
	ProfilePic    string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// HasMember reports whether the given user belongs to the group.
func (g *Group) HasMember(userID uuid.UUID) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the given user is the creator or a promoted admin.
func (g *Group) IsAdmin(userID uuid.UUID) bool {
	if g.AdminID == userID {
		return true
	}
	for _, id := range g.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsCreator reports whether the given user created the group.
func (g *Group) IsCreator(userID uuid.UUID) bool {
	return g.AdminID == userID
}

// GroupParams holds parameters for creating a group.
type GroupParams struct {
	Name       string
	AdminID    uuid.UUID
	MemberIDs  []uuid.UUID
	ProfilePic string
}

// NewGroup creates a group with validated parameters. The creator is always
// included in the member list.
func NewGroup(params GroupParams) (*Group, error) {
	if params.Name == "" {
		return nil, apperrors.ErrGroupNameRequired
	}
	if len(params.Name) > MaxGroupNameLength {
		return nil, apperrors.ErrNameTooLong
	}
	if params.AdminID == uuid.Nil {
		return nil, apperrors.ErrSenderIDRequired
	}

	members := dedupeIDs(append([]uuid.UUID{}, params.MemberIDs...))
	if !containsID(members, params.AdminID) {
		members = append(members, params.AdminID)
	}
	if len(members) < 2 {
		return nil, apperrors.ErrMembersRequired
	}

	return &Group{
		ID:         uuid.New(),
		Name:       params.Name,
		AdminID:    params.AdminID,
		MemberIDs:  members,
		ProfilePic: params.ProfilePic,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
