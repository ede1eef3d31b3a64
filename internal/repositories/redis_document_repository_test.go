package repositories

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use separate DB for testing
	})

	// Ping to ensure connection
	ctx := context.Background()
	err := client.Ping(ctx).Err()
	require.NoError(t, err, "Redis must be running for tests")

	// Flush test database
	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func TestNewRedisDocumentRepository(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	repo := NewRedisDocumentRepository(client)
	assert.NotNil(t, repo)
	assert.Equal(t, client, repo.client)
}

func TestRedisDocumentRepository_Create(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		doc := &Document{
			ID:       "doc-1",
			Title:    "Nghị định 168/2024",
			Content:  "Điều 6. Xử phạt người điều khiển xe ô tô...",
			Filename: "nd168.txt",
			Active:   true,
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		retrieved, err := repo.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, retrieved.ID)
		assert.Equal(t, doc.Title, retrieved.Title)
		assert.Equal(t, doc.Content, retrieved.Content)
		assert.True(t, retrieved.Active)
		assert.NotZero(t, retrieved.CreatedAt)
		assert.NotZero(t, retrieved.UpdatedAt)
	})

	t.Run("duplicate creation fails", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-duplicate",
			Title:   "Dup",
			Content: "content",
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		err = repo.Create(ctx, doc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("invalid document fails validation", func(t *testing.T) {
		doc := &Document{
			ID:      "", // Invalid: empty ID
			Title:   "No ID",
			Content: "content",
		}

		err := repo.Create(ctx, doc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})
}

func TestRedisDocumentRepository_Get(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	t.Run("get existing document", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-get-1",
			Title:   "Luật Giao thông đường bộ",
			Content: "Điều 1. Phạm vi điều chỉnh...",
			Active:  true,
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		retrieved, err := repo.Get(ctx, "doc-get-1")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, retrieved.ID)
		assert.Equal(t, doc.Title, retrieved.Title)
	})

	t.Run("get non-existent document", func(t *testing.T) {
		_, err := repo.Get(ctx, "non-existent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.True(t, IsDocumentNotFound(err))
	})
}

func TestRedisDocumentRepository_List(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	t.Run("list all documents", func(t *testing.T) {
		docs := []*Document{
			{ID: "doc-list-1", Title: "A", Content: "a", Active: true},
			{ID: "doc-list-2", Title: "B", Content: "b", Active: false},
			{ID: "doc-list-3", Title: "C", Content: "c", Active: true},
		}

		for _, doc := range docs {
			err := repo.Create(ctx, doc)
			require.NoError(t, err)
		}

		allDocs, err := repo.List(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(allDocs), 3)

		foundIDs := make(map[string]bool)
		for _, doc := range allDocs {
			foundIDs[doc.ID] = true
		}
		assert.True(t, foundIDs["doc-list-1"])
		assert.True(t, foundIDs["doc-list-2"])
		assert.True(t, foundIDs["doc-list-3"])
	})

	t.Run("list returns empty on no documents", func(t *testing.T) {
		client2 := setupTestRedis(t)
		defer client2.Close()
		repo2 := NewRedisDocumentRepository(client2)

		docs, err := repo2.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestRedisDocumentRepository_ListActive(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	docs := []*Document{
		{ID: "active-1", Title: "Active A", Content: "a", Active: true},
		{ID: "inactive-1", Title: "Inactive", Content: "b", Active: false},
		{ID: "active-2", Title: "Active B", Content: "c", Active: true},
	}

	for _, doc := range docs {
		err := repo.Create(ctx, doc)
		require.NoError(t, err)
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, doc := range active {
		assert.True(t, doc.Active)
		assert.NotEmpty(t, doc.Content)
	}
}

func TestRedisDocumentRepository_Update(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	t.Run("update document fields", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-update-1",
			Title:   "Old title",
			Content: "old content",
			Active:  true,
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		updates := map[string]interface{}{
			"title":   "New title",
			"content": "new content",
		}

		err = repo.Update(ctx, "doc-update-1", updates)
		require.NoError(t, err)

		updated, err := repo.Get(ctx, "doc-update-1")
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, "new content", updated.Content)
		assert.True(t, updated.Active)
	})

	t.Run("deactivation removes from active index", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-update-2",
			Title:   "Toggle",
			Content: "content",
			Active:  true,
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		err = repo.Update(ctx, "doc-update-2", map[string]interface{}{"active": false})
		require.NoError(t, err)

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		for _, d := range active {
			assert.NotEqual(t, "doc-update-2", d.ID)
		}
	})

	t.Run("update non-existent document fails", func(t *testing.T) {
		err := repo.Update(ctx, "non-existent", map[string]interface{}{"title": "x"})
		assert.Error(t, err)
	})
}

func TestRedisDocumentRepository_SetActive(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	doc := &Document{
		ID:      "doc-setactive-1",
		Title:   "Toggle me",
		Content: "content",
		Active:  false,
	}

	err := repo.Create(ctx, doc)
	require.NoError(t, err)

	// Activate
	err = repo.SetActive(ctx, "doc-setactive-1", true)
	require.NoError(t, err)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "doc-setactive-1", active[0].ID)

	// Deactivate
	err = repo.SetActive(ctx, "doc-setactive-1", false)
	require.NoError(t, err)

	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRedisDocumentRepository_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	t.Run("delete existing document", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-delete-1",
			Title:   "Delete me",
			Content: "content",
			Active:  true,
		}

		err := repo.Create(ctx, doc)
		require.NoError(t, err)

		err = repo.Delete(ctx, "doc-delete-1")
		require.NoError(t, err)

		_, err = repo.Get(ctx, "doc-delete-1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")

		// Verify it's removed from the active index
		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		for _, d := range active {
			assert.NotEqual(t, "doc-delete-1", d.ID)
		}
	})

	t.Run("delete non-existent document", func(t *testing.T) {
		err := repo.Delete(ctx, "non-existent")
		assert.Error(t, err)
	})
}

func TestRedisDocumentRepository_Exists(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	doc := &Document{
		ID:      "doc-exists-1",
		Title:   "Exists",
		Content: "content",
	}

	// Check before creation
	exists, err := repo.Exists(ctx, "doc-exists-1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Create
	err = repo.Create(ctx, doc)
	require.NoError(t, err)

	// Check after creation
	exists, err = repo.Exists(ctx, "doc-exists-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisDocumentRepository_Ping(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()
	repo := NewRedisDocumentRepository(client)
	ctx := context.Background()

	err := repo.Ping(ctx)
	assert.NoError(t, err)
}
