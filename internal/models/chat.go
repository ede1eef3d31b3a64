package models

import (
	"time"
)

// ConversationTurn is a single question/answer pair used as
// conversation-history context for the LLM, ordered oldest to newest.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatRequest represents the incoming chat request from the client.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	IsGuest        bool   `json:"isGuest,omitempty"`
	GuestSessionID string `json:"guestSessionId,omitempty"`
}

// ChatResponse is the non-streaming chat response.
type ChatResponse struct {
	Response       string    `json:"response"`
	ConversationID *string   `json:"conversationId"`
	MessageID      *string   `json:"messageId"`
	Timestamp      time.Time `json:"timestamp"`
	IsGuest        bool      `json:"isGuest"`
	GuestSessionID string    `json:"guestSessionId,omitempty"`
}

// Stream event types emitted on the SSE chat endpoint.
const (
	StreamEventStart    = "start"
	StreamEventToken    = "token"
	StreamEventComplete = "complete"
	StreamEventError    = "error"
)

// StreamEvent is a single event of the streaming chat response. A stream
// that ends without a complete event must be treated as failed.
type StreamEvent struct {
	Type           string        `json:"type"`
	Timestamp      time.Time     `json:"timestamp"`
	GuestSessionID string        `json:"guestSessionId,omitempty"`
	Token          string        `json:"token,omitempty"`
	Metadata       *ChatResponse `json:"metadata,omitempty"`
	Message        string        `json:"message,omitempty"`
}

// ChatHistoryEntry is one persisted (or guest-held) question/answer pair
// as returned by the history endpoints.
type ChatHistoryEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaginationMeta describes a page of results.
type PaginationMeta struct {
	Total           int  `json:"total"`
	Page            int  `json:"page,omitempty"`
	LastPage        int  `json:"lastPage,omitempty"`
	HasNextPage     bool `json:"hasNextPage,omitempty"`
	HasPreviousPage bool `json:"hasPreviousPage,omitempty"`
	IsGuest         bool `json:"isGuest,omitempty"`
}

// ChatHistoryResponse is the paginated history of one conversation.
type ChatHistoryResponse struct {
	Data         []ChatHistoryEntry   `json:"data"`
	Meta         PaginationMeta       `json:"meta"`
	Conversation *ConversationSummary `json:"conversation,omitempty"`
}

// ConversationSummary is the listing view of a conversation.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ConversationListResponse is a page of the user's conversations.
type ConversationListResponse struct {
	Data []ConversationSummary `json:"data"`
	Meta PaginationMeta        `json:"meta"`
}
