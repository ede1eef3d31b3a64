package services

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"traffic-chatbot/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(source *MockActiveDocumentSource) *DocumentCache {
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	chunker := NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	return NewDocumentCache(source, chunker, logger)
}

func TestDocumentCache(t *testing.T) {
	ctx := context.Background()

	t.Run("empty before first refresh", func(t *testing.T) {
		cache := newTestCache(new(MockActiveDocumentSource))
		assert.Nil(t, cache.Snapshot())
		assert.Empty(t, cache.AllChunks())
		assert.Empty(t, cache.Documents())
	})

	t.Run("refresh builds snapshot", func(t *testing.T) {
		source := new(MockActiveDocumentSource)
		source.On("ListActive", ctx).Return([]*repositories.Document{
			{ID: "doc-1", Title: "Luật", Content: "Điều 1. Phạm vi."},
		}, nil)

		cache := newTestCache(source)
		require.NoError(t, cache.Refresh(ctx))

		snapshot := cache.Snapshot()
		require.NotNil(t, snapshot)
		assert.Len(t, snapshot.Documents, 1)
		assert.Len(t, cache.AllChunks(), 1)
		source.AssertExpectations(t)
	})

	t.Run("failed refresh keeps previous snapshot", func(t *testing.T) {
		source := new(MockActiveDocumentSource)
		source.On("ListActive", ctx).Return([]*repositories.Document{
			{ID: "doc-1", Title: "Luật", Content: "Điều 1. Phạm vi."},
		}, nil).Once()
		source.On("ListActive", ctx).Return(nil, errors.New("redis down")).Once()

		cache := newTestCache(source)
		require.NoError(t, cache.Refresh(ctx))
		before := cache.Snapshot()

		assert.Error(t, cache.Refresh(ctx))
		assert.Same(t, before, cache.Snapshot())
	})

	t.Run("refresh replaces snapshot wholesale", func(t *testing.T) {
		source := new(MockActiveDocumentSource)
		source.On("ListActive", ctx).Return([]*repositories.Document{
			{ID: "doc-1", Title: "A", Content: "one"},
		}, nil).Once()
		source.On("ListActive", ctx).Return([]*repositories.Document{
			{ID: "doc-2", Title: "B", Content: "two"},
			{ID: "doc-3", Title: "C", Content: "three"},
		}, nil).Once()

		cache := newTestCache(source)
		require.NoError(t, cache.Refresh(ctx))
		require.NoError(t, cache.Refresh(ctx))

		docs := cache.Documents()
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-2", docs[0].ID)
	})
}
