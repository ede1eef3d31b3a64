package repositories

import (
	"context"
	"fmt"
	"time"
)

// DocumentRepository defines the registry of legal documents. Documents
// carry their full text content; only active documents feed the chat
// pipeline's document cache.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, documentID string) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	// ListActive returns only documents flagged active, content included.
	ListActive(ctx context.Context) ([]*Document, error)
	Update(ctx context.Context, documentID string, updates map[string]interface{}) error
	SetActive(ctx context.Context, documentID string, active bool) error
	Delete(ctx context.Context, documentID string) error
	Exists(ctx context.Context, documentID string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Document is a legal source document (law text, decree, circular).
type Document struct {
	ID        string    `json:"document_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Filename  string    `json:"filename,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required fields before persistence.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Title == "" {
		return fmt.Errorf("document title is required")
	}
	return nil
}

// DocumentRepositoryError wraps failures from the document repository.
type DocumentRepositoryError struct {
	Operation  string
	DocumentID string
	Err        error
	Message    string
}

func (e *DocumentRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.DocumentID != "" {
		prefix += " (doc: " + e.DocumentID + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *DocumentRepositoryError) Unwrap() error {
	return e.Err
}

// NewDocumentRepositoryError creates a wrapped repository error.
func NewDocumentRepositoryError(operation, documentID string, err error, message string) *DocumentRepositoryError {
	return &DocumentRepositoryError{
		Operation:  operation,
		DocumentID: documentID,
		Err:        err,
		Message:    message,
	}
}

// DocumentNotFoundError creates a not-found error for a document.
func DocumentNotFoundError(documentID string) *DocumentRepositoryError {
	return &DocumentRepositoryError{
		Operation:  "get",
		DocumentID: documentID,
		Message:    "document not found: " + documentID,
	}
}

// DocumentAlreadyExistsError creates a duplicate-ID error.
func DocumentAlreadyExistsError(documentID string) *DocumentRepositoryError {
	return &DocumentRepositoryError{
		Operation:  "create",
		DocumentID: documentID,
		Message:    "document already exists: " + documentID,
	}
}

// IsDocumentNotFound reports whether err is a document not-found error.
func IsDocumentNotFound(err error) bool {
	repoErr, ok := err.(*DocumentRepositoryError)
	return ok && repoErr.Message == "document not found: "+repoErr.DocumentID
}
