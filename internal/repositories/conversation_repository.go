package repositories

import (
	"context"
	"fmt"
	"time"
)

// ConversationRepository persists chat conversations for authenticated
// users. Guest sessions never touch this interface.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, conversationID string) (*Conversation, error)
	// ListByUser returns one page of the user's conversations ordered by
	// UpdatedAt descending, plus the total count.
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*Conversation, int, error)
	// Touch bumps UpdatedAt so the conversation sorts to the top.
	Touch(ctx context.Context, conversationID string, at time.Time) error
	Delete(ctx context.Context, conversationID string) error
}

// MessageRepository persists question/answer pairs under a conversation.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// ListByConversation returns one page ordered by CreatedAt ascending,
	// plus the total count.
	ListByConversation(ctx context.Context, conversationID string, page, limit int) ([]*Message, int, error)
	CountByConversation(ctx context.Context, conversationID string) (int, error)
	// LastN returns the newest n messages ordered oldest to newest, for
	// use as conversation-history context.
	LastN(ctx context.Context, conversationID string, n int) ([]*Message, error)
	DeleteByConversation(ctx context.Context, conversationID string) (int, error)
}

// Conversation is a persistent chat thread owned by a user.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required fields before persistence.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("conversation ID is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("conversation user ID is required")
	}
	return nil
}

// Message is one persisted question/answer exchange.
type Message struct {
	ID             string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks required fields before persistence.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if m.ConversationID == "" {
		return fmt.Errorf("message conversation ID is required")
	}
	if m.Question == "" {
		return fmt.Errorf("message question is required")
	}
	return nil
}

// ConversationRepositoryError wraps failures from the conversation and
// message repositories.
type ConversationRepositoryError struct {
	Operation      string
	ConversationID string
	Err            error
	Message        string
}

func (e *ConversationRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.ConversationID != "" {
		prefix += " (conversation: " + e.ConversationID + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *ConversationRepositoryError) Unwrap() error {
	return e.Err
}

// NewConversationRepositoryError creates a wrapped repository error.
func NewConversationRepositoryError(operation, conversationID string, err error, message string) *ConversationRepositoryError {
	return &ConversationRepositoryError{
		Operation:      operation,
		ConversationID: conversationID,
		Err:            err,
		Message:        message,
	}
}

// ConversationNotFoundError creates a not-found error for a conversation.
func ConversationNotFoundError(conversationID string) *ConversationRepositoryError {
	return &ConversationRepositoryError{
		Operation:      "get",
		ConversationID: conversationID,
		Message:        "conversation not found: " + conversationID,
	}
}

// IsConversationNotFound reports whether err is a conversation not-found
// error.
func IsConversationNotFound(err error) bool {
	repoErr, ok := err.(*ConversationRepositoryError)
	return ok && repoErr.Message == "conversation not found: "+repoErr.ConversationID
}
