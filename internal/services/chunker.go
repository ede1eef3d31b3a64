package services

import (
	"fmt"
	"strings"
	"time"

	"traffic-chatbot/internal/models"
	"traffic-chatbot/internal/repositories"
)

const (
	// DefaultChunkSize and DefaultChunkOverlap are measured in runes, not
	// bytes. Vietnamese text is multi-byte almost everywhere, so byte
	// windows would split characters mid-sequence.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits document content into overlapping retrieval chunks,
// preferring to break at sentence boundaries.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ChunkDocument produces the ordered chunk list for one document. Empty
// or whitespace-only content yields no chunks. Each chunk is trimmed and
// carries the final total count.
func (c *Chunker) ChunkDocument(documentID, title, content string) []models.DocumentChunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	runes := []rune(content)
	var chunks []models.DocumentChunk
	startIndex := 0
	chunkIndex := 0

	for startIndex < len(runes) {
		endIndex := startIndex + c.chunkSize
		if endIndex > len(runes) {
			endIndex = len(runes)
		}
		window := runes[startIndex:endIndex]

		if endIndex < len(runes) {
			// Break at the last sentence boundary past the midpoint of
			// the window; otherwise take the full window and back up by
			// the overlap.
			breakPoint := lastBoundary(window)
			if breakPoint > c.chunkSize/2 {
				window = window[:breakPoint+1]
				startIndex += breakPoint + 1
			} else {
				startIndex = endIndex - c.chunkOverlap
			}
		} else {
			startIndex = endIndex
		}

		chunks = append(chunks, models.DocumentChunk{
			ID:            fmt.Sprintf("%s_chunk_%d", documentID, chunkIndex),
			DocumentID:    documentID,
			DocumentTitle: title,
			Content:       strings.TrimSpace(string(window)),
			ChunkIndex:    chunkIndex,
		})
		chunkIndex++
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}

// BuildSnapshot chunks every active document into a fresh cache snapshot.
func (c *Chunker) BuildSnapshot(documents []*repositories.Document) *models.DocumentCacheSnapshot {
	snapshot := &models.DocumentCacheSnapshot{
		Documents:   make([]models.CachedDocument, 0, len(documents)),
		LastUpdated: time.Now(),
	}
	for _, doc := range documents {
		snapshot.Documents = append(snapshot.Documents, models.CachedDocument{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
			Chunks:  c.ChunkDocument(doc.ID, doc.Title, doc.Content),
		})
	}
	return snapshot
}

// lastBoundary returns the index of the last '.' or '\n' in the window,
// or -1 when the window has no sentence boundary.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
