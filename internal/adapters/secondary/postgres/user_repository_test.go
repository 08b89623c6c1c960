package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// testRepos bundles every repository for a test.
type testRepos struct {
	users    ports.UserRepository
	chats    ports.ChatRepository
	groups   ports.GroupRepository
	messages ports.MessageRepository
}

func newTestRepos(t *testing.T) testRepos {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")

	return testRepos{
		users:    NewUserRepository(testPool),
		chats:    NewChatRepository(testPool),
		groups:   NewGroupRepository(testPool),
		messages: NewMessageRepository(testPool),
	}
}

// createTestUser inserts a user with a unique email.
func createTestUser(t *testing.T, ctx context.Context, userRepo ports.UserRepository, name string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     name,
		Email:    uuid.NewString() + "@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	created, err := userRepo.Create(ctx, user)
	require.NoError(t, err)
	return created
}

func TestUserRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	created := createTestUser(t, ctx, repos.users, "Alice Vance")

	found, err := repos.users.GetByEmail(ctx, created.Email)
	require.NoError(t, err, "Failed to get user by email")
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Alice Vance", found.Name)
	assert.Equal(t, domain.DefaultProfilePic, found.ProfilePic)

	foundByID, err := repos.users.GetByID(ctx, created.ID)
	require.NoError(t, err, "Failed to get user by ID")
	assert.Equal(t, created.ID, foundByID.ID)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.users.GetByEmail(ctx, "nonexistent@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	first := createTestUser(t, ctx, repos.users, "First")

	duplicate, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Second",
		Email:    first.Email,
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	_, err = repos.users.Create(ctx, duplicate)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")

	users, err := repos.users.GetByIDs(ctx, []uuid.UUID{alice.ID, bob.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repos.users.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	user := createTestUser(t, ctx, repos.users, "Before")

	updated, err := repos.users.UpdateProfile(ctx, user.ID, "After", "https://example.com/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "https://example.com/pic.png", updated.ProfilePic)
	require.NotNil(t, updated.UpdatedAt)

	_, err = repos.users.UpdateProfile(ctx, uuid.New(), "Ghost", "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_FriendRequestFlow(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")

	// No relationship yet.
	friends, err := repos.users.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	// Alice requests Bob.
	require.NoError(t, repos.users.CreateFriendRequest(ctx, alice.ID, bob.ID))

	pending, err := repos.users.HasFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	reverse, err := repos.users.HasFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse, "request direction matters")

	requests, err := repos.users.ListFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, alice.ID, requests[0].ID)

	// Duplicate request is rejected.
	err = repos.users.CreateFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestExists)

	// Bob accepts.
	require.NoError(t, repos.users.CreateFriendship(ctx, alice.ID, bob.ID))
	require.NoError(t, repos.users.DeleteFriendRequest(ctx, alice.ID, bob.ID))

	// Friendship is symmetric regardless of argument order.
	friends, err = repos.users.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	// Re-creating the same pair is a no-op either way round.
	require.NoError(t, repos.users.CreateFriendship(ctx, bob.ID, alice.ID))

	aliceFriends, err := repos.users.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].ID)

	pending, err = repos.users.HasFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestUserRepository_List_ExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	me := createTestUser(t, ctx, repos.users, "Me")
	createTestUser(t, ctx, repos.users, "Someone Else")

	users, err := repos.users.List(ctx, me.ID)
	require.NoError(t, err)
	for _, user := range users {
		assert.NotEqual(t, me.ID, user.ID)
	}
}
