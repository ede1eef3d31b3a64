package models

import (
	"time"
)

// DocumentChunk is a retrieval unit produced by the chunker. Chunks are
// immutable once created; identity is DocumentID + ChunkIndex.
type DocumentChunk struct {
	ID            string `json:"id"`
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Content       string `json:"content"`
	ChunkIndex    int    `json:"chunk_index"`
	TotalChunks   int    `json:"total_chunks"`
}

// CachedDocument is an active document together with its chunks as held
// by the document cache.
type CachedDocument struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Chunks  []DocumentChunk `json:"chunks"`
}

// DocumentCacheSnapshot is a full, consistent snapshot of the active
// document set. It is replaced wholesale on refresh, never patched.
type DocumentCacheSnapshot struct {
	Documents   []CachedDocument `json:"documents"`
	LastUpdated time.Time        `json:"last_updated"`
}

// AllChunks flattens every document's chunks in document order.
func (s *DocumentCacheSnapshot) AllChunks() []DocumentChunk {
	var chunks []DocumentChunk
	for _, doc := range s.Documents {
		chunks = append(chunks, doc.Chunks...)
	}
	return chunks
}

// LegalReference holds article/clause/decree citations extracted from a
// query. Derived purely from the query string, recomputed per request.
type LegalReference struct {
	Articles          []int    `json:"articles"`
	Clauses           []int    `json:"clauses"`
	Points            []string `json:"points"`
	Decrees           []int    `json:"decrees"`
	Circulars         []int    `json:"circulars"`
	Decisions         []int    `json:"decisions"`
	HasLegalReference bool     `json:"has_legal_reference"`
}
