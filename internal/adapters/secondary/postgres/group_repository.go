package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

type GroupRepository struct {
	pool *pgxpool.Pool
}

var _ ports.GroupRepository = (*GroupRepository)(nil)

func NewGroupRepository(pool *pgxpool.Pool) ports.GroupRepository {
	return &GroupRepository{pool: pool}
}

// Create persists the group and its member rows in a single statement. The
// creator's member row is flagged as admin.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	const query = `
WITH new_group AS (
  INSERT INTO groups (id, name, admin_id, profile_pic, created_at)
  VALUES ($1, $2, $3, $4, $5)
  RETURNING id, admin_id
)
INSERT INTO group_members (group_id, user_id, is_admin)
SELECT new_group.id, member, member = new_group.admin_id
FROM new_group, unnest($6::uuid[]) AS member
`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: group.ID, Valid: true},
		group.Name,
		pgtype.UUID{Bytes: group.AdminID, Valid: true},
		group.ProfilePic,
		pgtype.Timestamptz{Time: group.CreatedAt, Valid: true},
		uuidArray(group.MemberIDs),
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	const query = `
SELECT g.id, g.name, g.admin_id, g.profile_pic, g.last_message_at, g.created_at, g.updated_at,
       ARRAY_AGG(gm.user_id ORDER BY gm.joined_at) AS members,
       ARRAY_AGG(gm.user_id ORDER BY gm.joined_at) FILTER (WHERE gm.is_admin AND gm.user_id != g.admin_id) AS admins
FROM groups g
JOIN group_members gm ON gm.group_id = g.id
WHERE g.id = $1
GROUP BY g.id
`

	var (
		groupID       pgtype.UUID
		group         domain.Group
		adminID       pgtype.UUID
		lastMessageAt pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
		members       []pgtype.UUID
		admins        []pgtype.UUID
	)
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query, pgtype.UUID{Bytes: id, Valid: true})
	err := row.Scan(&groupID, &group.Name, &adminID, &group.ProfilePic, &lastMessageAt, &createdAt, &updatedAt, &members, &admins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, err
	}

	group.ID = groupID.Bytes
	group.AdminID = adminID.Bytes
	group.CreatedAt = createdAt.Time
	if lastMessageAt.Valid {
		value := lastMessageAt.Time
		group.LastMessageAt = &value
	}
	if updatedAt.Valid {
		value := updatedAt.Time
		group.UpdatedAt = &value
	}
	group.MemberIDs = make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		group.MemberIDs = append(group.MemberIDs, member.Bytes)
	}
	group.AdminIDs = make([]uuid.UUID, 0, len(admins))
	for _, admin := range admins {
		group.AdminIDs = append(group.AdminIDs, admin.Bytes)
	}
	return &group, nil
}

func (r *GroupRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.GroupSnapshot, error) {
	snapshots, err := r.querySnapshots(ctx, snapshotQueryByGroup, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, apperrors.ErrGroupNotFound
	}
	return snapshots[0], nil
}

func (r *GroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.GroupSnapshot, error) {
	return r.querySnapshots(ctx, snapshotQueryByMember, pgtype.UUID{Bytes: userID, Valid: true})
}

const snapshotColumns = `
SELECT g.id, g.name, g.admin_id, g.profile_pic, g.last_message_at, g.created_at,
       u.id, u.name, u.profile_pic, gm.is_admin
FROM groups g
JOIN group_members gm ON gm.group_id = g.id
JOIN users u ON u.id = gm.user_id
`

const snapshotQueryByGroup = snapshotColumns + `
WHERE g.id = $1
ORDER BY gm.joined_at
`

const snapshotQueryByMember = snapshotColumns + `
WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
ORDER BY g.last_message_at DESC NULLS LAST, g.created_at DESC, gm.joined_at
`

// querySnapshots assembles one snapshot per group from member-level rows. The
// query must order rows so members of the same group are adjacent.
func (r *GroupRepository) querySnapshots(ctx context.Context, query string, arg any) ([]*domain.GroupSnapshot, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]*domain.GroupSnapshot, 0)
	index := make(map[string]*domain.GroupSnapshot)

	for rows.Next() {
		var (
			groupID       pgtype.UUID
			groupName     string
			adminID       pgtype.UUID
			profilePic    string
			lastMessageAt pgtype.Timestamptz
			createdAt     pgtype.Timestamptz
			memberID      pgtype.UUID
			memberName    string
			memberPic     string
			isAdmin       bool
		)
		err := rows.Scan(&groupID, &groupName, &adminID, &profilePic, &lastMessageAt, &createdAt,
			&memberID, &memberName, &memberPic, &isAdmin)
		if err != nil {
			return nil, err
		}

		key := uuid.UUID(groupID.Bytes).String()
		snapshot, ok := index[key]
		if !ok {
			snapshot = &domain.GroupSnapshot{
				ID:         key,
				Name:       groupName,
				ProfilePic: profilePic,
				CreatedAt:  createdAt.Time.UTC().Format(time.RFC3339),
				Members:    make([]domain.UserRef, 0, 4),
				Admins:     make([]domain.UserRef, 0, 1),
			}
			if lastMessageAt.Valid {
				value := lastMessageAt.Time.UTC().Format(time.RFC3339)
				snapshot.LastMessageAt = &value
			}
			index[key] = snapshot
			snapshots = append(snapshots, snapshot)
		}

		ref := domain.UserRef{
			ID:         uuid.UUID(memberID.Bytes).String(),
			Name:       memberName,
			ProfilePic: memberPic,
		}
		snapshot.Members = append(snapshot.Members, ref)
		if memberID.Bytes == adminID.Bytes {
			snapshot.Admin = ref
		} else if isAdmin {
			snapshot.Admins = append(snapshot.Admins, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *GroupRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) error {
	const query = `UPDATE groups SET name = $2, profile_pic = $3, updated_at = $4 WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		name,
		profilePic,
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) AddMembers(ctx context.Context, id uuid.UUID, memberIDs []uuid.UUID) error {
	const query = `
INSERT INTO group_members (group_id, user_id)
SELECT $1, member FROM unnest($2::uuid[]) AS member
ON CONFLICT DO NOTHING
`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		uuidArray(memberIDs),
	)
	return err
}

func (r *GroupRepository) RemoveMember(ctx context.Context, id, memberID uuid.UUID) error {
	const query = `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		pgtype.UUID{Bytes: memberID, Valid: true},
	)
	return err
}

func (r *GroupRepository) SetMemberAdmin(ctx context.Context, id, memberID uuid.UUID, isAdmin bool) error {
	const query = `UPDATE group_members SET is_admin = $3 WHERE group_id = $1 AND user_id = $2`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		pgtype.UUID{Bytes: memberID, Valid: true},
		isAdmin,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotGroupMember
	}
	return nil
}

func (r *GroupRepository) SetCreator(ctx context.Context, id, newAdminID uuid.UUID) error {
	const query = `UPDATE groups SET admin_id = $2, updated_at = $3 WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		pgtype.UUID{Bytes: newAdminID, Valid: true},
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) SetLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE groups SET last_message_at = $2 WHERE id = $1`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		pgtype.Timestamptz{Time: at, Valid: true},
	)
	return err
}
