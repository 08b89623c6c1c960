package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/chat-backend/internal/core/domain"
)

func TestMessageRepository_CreateList(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	alice := createTestUser(t, ctx, repos.users, "Alice")
	bob := createTestUser(t, ctx, repos.users, "Bob")
	chat := createDirectChat(t, ctx, repos.chats, alice.ID, bob.ID)

	first, err := domain.NewMessage(domain.MessageParams{
		ChatID:   chat.ID,
		SenderID: alice.ID,
		Content:  "hello",
	})
	require.NoError(t, err)
	_, err = repos.messages.Create(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewMessage(domain.MessageParams{
		ChatID:   chat.ID,
		SenderID: bob.ID,
		Content:  "hi back",
		FileURL:  "https://example.com/photo.jpg",
		FileName: "photo.jpg",
		Type:     domain.MessageTypeFile,
	})
	require.NoError(t, err)
	_, err = repos.messages.Create(ctx, second)
	require.NoError(t, err)

	messages, err := repos.messages.ListByChat(ctx, chat.ID, 25, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Oldest first, with sender names resolved.
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, "Alice", messages[0].SenderName)
	assert.Equal(t, domain.MessageTypeText, messages[0].Type)

	assert.Equal(t, second.ID, messages[1].ID)
	assert.Equal(t, "Bob", messages[1].SenderName)
	assert.Equal(t, domain.MessageTypeFile, messages[1].Type)
	assert.Equal(t, "https://example.com/photo.jpg", messages[1].FileURL)

	count, err := repos.messages.CountByChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("limit and offset page through the history", func(t *testing.T) {
		page, err := repos.messages.ListByChat(ctx, chat.ID, 1, 0)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, first.ID, page[0].ID)

		page, err = repos.messages.ListByChat(ctx, chat.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, second.ID, page[0].ID)

		page, err = repos.messages.ListByChat(ctx, chat.ID, 25, 2)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestMessageRepository_ListByChat_Empty(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	messages, err := repos.messages.ListByChat(ctx, uuid.New(), 25, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	count, err := repos.messages.CountByChat(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}
