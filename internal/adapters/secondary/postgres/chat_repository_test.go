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

func createDirectChat(t *testing.T, ctx context.Context, chatRepo ports.ChatRepository, a, b uuid.UUID) *domain.Chat {
	t.Helper()

	chat, err := domain.NewChat(domain.ChatParams{MemberIDs: []uuid.UUID{a, b}})
	require.NoError(t, err)

	created, err := chatRepo.Create(ctx, chat)
	require.NoError(t, err)
	return created
}

func TestChatRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")

	created := createDirectChat(t, ctx, repos.chats, alice.ID, bob.ID)

	found, err := repos.chats.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.False(t, found.IsGroupChat)
	assert.Nil(t, found.LatestMessageID)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, found.MemberIDs)
}

func TestChatRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.chats.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}

func TestChatRepository_FindOneToOne(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")
	carol := createTestUser(t, ctx, repos.users, "Carol")

	created := createDirectChat(t, ctx, repos.chats, alice.ID, bob.ID)

	// A group chat containing the same pair must not match.
	groupChat, err := domain.NewChat(domain.ChatParams{
		Name:        "Trio",
		MemberIDs:   []uuid.UUID{alice.ID, bob.ID, carol.ID},
		IsGroupChat: true,
	})
	require.NoError(t, err)
	_, err = repos.chats.Create(ctx, groupChat)
	require.NoError(t, err)

	found, err := repos.chats.FindOneToOne(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Argument order does not matter.
	found, err = repos.chats.FindOneToOne(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repos.chats.FindOneToOne(ctx, alice.ID, carol.ID)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}

func TestChatRepository_SetLatestMessage(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")
	chat := createDirectChat(t, ctx, repos.chats, alice.ID, bob.ID)

	message, err := domain.NewMessage(domain.MessageParams{
		ChatID:   chat.ID,
		SenderID: alice.ID,
		Content:  "hello",
	})
	require.NoError(t, err)
	_, err = repos.messages.Create(ctx, message)
	require.NoError(t, err)

	require.NoError(t, repos.chats.SetLatestMessage(ctx, chat.ID, message.ID))

	found, err := repos.chats.GetByID(ctx, chat.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LatestMessageID)
	assert.Equal(t, message.ID, *found.LatestMessageID)
}

func TestChatRepository_ListByMember(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")
	carol := createTestUser(t, ctx, repos.users, "Carol")

	withBob := createDirectChat(t, ctx, repos.chats, alice.ID, bob.ID)
	withCarol := createDirectChat(t, ctx, repos.chats, alice.ID, carol.ID)

	// A message in the older chat makes it the most recently active one.
	message, err := domain.NewMessage(domain.MessageParams{
		ChatID:   withBob.ID,
		SenderID: bob.ID,
		Content:  "ping",
	})
	require.NoError(t, err)
	_, err = repos.messages.Create(ctx, message)
	require.NoError(t, err)
	require.NoError(t, repos.chats.SetLatestMessage(ctx, withBob.ID, message.ID))

	chats, err := repos.chats.ListByMember(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, withBob.ID, chats[0].ID)
	assert.Equal(t, withCarol.ID, chats[1].ID)

	// Carol only sees her own conversation.
	chats, err = repos.chats.ListByMember(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, withCarol.ID, chats[0].ID)
}
