package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"traffic-chatbot/internal/models"
	"traffic-chatbot/internal/repositories"
)

// ActiveDocumentSource supplies the active document set for cache
// refreshes.
type ActiveDocumentSource interface {
	ListActive(ctx context.Context) ([]*repositories.Document, error)
}

// DocumentCache holds an immutable chunked snapshot of the active
// documents. Readers always see a complete snapshot; Refresh swaps the
// whole thing under a write lock. A failed refresh leaves the previous
// snapshot in place.
type DocumentCache struct {
	source  ActiveDocumentSource
	chunker *Chunker
	logger  *log.Logger

	mu       sync.RWMutex
	snapshot *models.DocumentCacheSnapshot
}

func NewDocumentCache(source ActiveDocumentSource, chunker *Chunker, logger *log.Logger) *DocumentCache {
	return &DocumentCache{
		source:  source,
		chunker: chunker,
		logger:  logger,
	}
}

// Refresh rebuilds the snapshot from the active document set.
func (c *DocumentCache) Refresh(ctx context.Context) error {
	documents, err := c.source.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active documents: %w", err)
	}

	snapshot := c.chunker.BuildSnapshot(documents)

	totalChunks := 0
	for _, doc := range snapshot.Documents {
		totalChunks += len(doc.Chunks)
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()

	c.logger.Printf("Document cache refreshed: %d documents, %d chunks", len(snapshot.Documents), totalChunks)
	return nil
}

// Snapshot returns the current snapshot, or nil before the first
// successful refresh.
func (c *DocumentCache) Snapshot() *models.DocumentCacheSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// AllChunks flattens the current snapshot's chunks. Empty before the
// first refresh.
func (c *DocumentCache) AllChunks() []models.DocumentChunk {
	snapshot := c.Snapshot()
	if snapshot == nil {
		return nil
	}
	return snapshot.AllChunks()
}

// Documents returns the cached active documents with content.
func (c *DocumentCache) Documents() []models.CachedDocument {
	snapshot := c.Snapshot()
	if snapshot == nil {
		return nil
	}
	return snapshot.Documents
}
