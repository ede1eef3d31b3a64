package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessages(t *testing.T, repo *RedisMessageRepository, conversationID string, count int) {
	t.Helper()
	ctx := context.Background()
	base := time.Now()
	for i := 1; i <= count; i++ {
		msg := &Message{
			ID:             fmt.Sprintf("%s-msg-%d", conversationID, i),
			ConversationID: conversationID,
			Question:       fmt.Sprintf("question %d", i),
			Answer:         fmt.Sprintf("answer %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		err := repo.Create(ctx, msg)
		require.NoError(t, err)
	}
}

func TestNewRedisMessageRepository(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	repo := NewRedisMessageRepository(client)
	assert.NotNil(t, repo)
	assert.Equal(t, client, repo.client)
}

func TestRedisMessageRepository_Create(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisMessageRepository(client)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		msg := &Message{
			ID:             "msg-1",
			ConversationID: "conv-1",
			Question:       "vượt đèn đỏ phạt bao nhiêu",
			Answer:         "Từ 4.000.000 đến 6.000.000 đồng đối với ô tô.",
			CreatedBy:      "user_user-1",
			CreatedAt:      time.Now(),
		}

		err := repo.Create(ctx, msg)
		require.NoError(t, err)

		count, err := repo.CountByConversation(ctx, "conv-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("invalid message fails validation", func(t *testing.T) {
		msg := &Message{
			ID:             "msg-invalid",
			ConversationID: "conv-1",
			Question:       "", // Invalid: empty question
		}

		err := repo.Create(ctx, msg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})
}

func TestRedisMessageRepository_ListByConversation(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisMessageRepository(client)
	ctx := context.Background()

	t.Run("lists oldest first with total", func(t *testing.T) {
		seedMessages(t, repo, "conv-list", 3)

		msgs, total, err := repo.ListByConversation(ctx, "conv-list", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, msgs, 3)
		assert.Equal(t, "question 1", msgs[0].Question)
		assert.Equal(t, "question 3", msgs[2].Question)
	})

	t.Run("pagination", func(t *testing.T) {
		seedMessages(t, repo, "conv-page", 5)

		page1, total, err := repo.ListByConversation(ctx, "conv-page", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page1, 2)
		assert.Equal(t, "question 1", page1[0].Question)

		page3, total, err := repo.ListByConversation(ctx, "conv-page", 3, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page3, 1)
		assert.Equal(t, "question 5", page3[0].Question)
	})

	t.Run("empty conversation", func(t *testing.T) {
		msgs, total, err := repo.ListByConversation(ctx, "conv-empty", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, msgs)
	})
}

func TestRedisMessageRepository_LastN(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisMessageRepository(client)
	ctx := context.Background()

	t.Run("returns newest n oldest-first", func(t *testing.T) {
		seedMessages(t, repo, "conv-last", 5)

		msgs, err := repo.LastN(ctx, "conv-last", 3)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "question 3", msgs[0].Question)
		assert.Equal(t, "question 5", msgs[2].Question)
	})

	t.Run("n larger than history returns everything", func(t *testing.T) {
		seedMessages(t, repo, "conv-short", 2)

		msgs, err := repo.LastN(ctx, "conv-short", 10)
		require.NoError(t, err)
		assert.Len(t, msgs, 2)
	})

	t.Run("non-positive n returns empty", func(t *testing.T) {
		msgs, err := repo.LastN(ctx, "conv-last", 0)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestRedisMessageRepository_DeleteByConversation(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisMessageRepository(client)
	ctx := context.Background()

	seedMessages(t, repo, "conv-del", 3)
	seedMessages(t, repo, "conv-keep", 2)

	deleted, err := repo.DeleteByConversation(ctx, "conv-del")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	count, err := repo.CountByConversation(ctx, "conv-del")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Other conversations untouched
	count, err = repo.CountByConversation(ctx, "conv-keep")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
