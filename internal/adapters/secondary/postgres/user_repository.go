package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

const uniqueViolationCode = "23505"

const userColumns = `id, name, email, password_hash, profile_pic, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id        pgtype.UUID
		user      domain.User
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &user.Name, &user.Email, &user.HashedPassword, &user.ProfilePic, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.ID = id.Bytes
	user.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		value := updatedAt.Time
		user.UpdatedAt = &value
	}
	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]*domain.User, error) {
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
INSERT INTO users (id, name, email, password_hash, profile_pic, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		pgtype.UUID{Bytes: user.ID, Valid: true},
		user.Name,
		user.Email,
		user.HashedPassword,
		user.ProfilePic,
		pgtype.Timestamptz{Time: user.CreatedAt, Valid: true},
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrUserExists
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, pgtype.UUID{Bytes: id, Valid: true}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, uuidArray(ids))
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *UserRepository) List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id != $1 ORDER BY name, email`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, pgtype.UUID{Bytes: excludeID, Valid: true})
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, profilePic string) (*domain.User, error) {
	const query = `
UPDATE users
SET name = $2, profile_pic = $3, updated_at = $4
WHERE id = $1
RETURNING ` + userColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		pgtype.UUID{Bytes: id, Valid: true},
		name,
		profilePic,
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	const query = `
SELECT u.id, u.name, u.email, u.password_hash, u.profile_pic, u.created_at, u.updated_at
FROM friendships f
JOIN users u ON u.id = CASE WHEN f.user_a = $1 THEN f.user_b ELSE f.user_a END
WHERE f.user_a = $1 OR f.user_b = $1
ORDER BY u.name, u.email
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, pgtype.UUID{Bytes: userID, Valid: true})
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *UserRepository) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	const query = `
SELECT u.id, u.name, u.email, u.password_hash, u.profile_pic, u.created_at, u.updated_at
FROM friend_requests fr
JOIN users u ON u.id = fr.sender_id
WHERE fr.recipient_id = $1
ORDER BY fr.created_at
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, pgtype.UUID{Bytes: userID, Valid: true})
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *UserRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)`

	first, second := orderedPair(a, b)
	var exists bool
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		pgtype.UUID{Bytes: first, Valid: true},
		pgtype.UUID{Bytes: second, Valid: true},
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) HasFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM friend_requests WHERE sender_id = $1 AND recipient_id = $2)`

	var exists bool
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		pgtype.UUID{Bytes: senderID, Valid: true},
		pgtype.UUID{Bytes: recipientID, Valid: true},
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) CreateFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	const query = `INSERT INTO friend_requests (sender_id, recipient_id) VALUES ($1, $2)`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: senderID, Valid: true},
		pgtype.UUID{Bytes: recipientID, Valid: true},
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrFriendRequestExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) DeleteFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	const query = `DELETE FROM friend_requests WHERE sender_id = $1 AND recipient_id = $2`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: senderID, Valid: true},
		pgtype.UUID{Bytes: recipientID, Valid: true},
	)
	return err
}

func (r *UserRepository) CreateFriendship(ctx context.Context, a, b uuid.UUID) error {
	const query = `INSERT INTO friendships (user_a, user_b) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	first, second := orderedPair(a, b)
	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: first, Valid: true},
		pgtype.UUID{Bytes: second, Valid: true},
	)
	return err
}

// orderedPair puts two user IDs in the canonical order the friendships table
// stores them in, so a pair is only ever persisted once.
func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	for i := range a {
		if a[i] < b[i] {
			return a, b
		}
		if a[i] > b[i] {
			return b, a
		}
	}
	return a, b
}

func uuidArray(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, pgtype.UUID{Bytes: id, Valid: true})
	}
	return out
}
