package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"traffic-chatbot/internal/repositories"

	"github.com/google/uuid"
)

// DocumentService manages the legal document corpus and notifies
// listeners when the active set changes so the chunk cache can rebuild.
type DocumentService struct {
	docRepo        repositories.DocumentRepository
	keywordService *KeywordService
	logger         *log.Logger
	onChange       []func()
}

func NewDocumentService(docRepo repositories.DocumentRepository, keywordService *KeywordService, logger *log.Logger) *DocumentService {
	return &DocumentService{
		docRepo:        docRepo,
		keywordService: keywordService,
		logger:         logger,
	}
}

// OnChange registers a callback fired after any mutation of the document
// set. Registration is not safe for concurrent use; register everything
// during startup wiring.
func (s *DocumentService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *DocumentService) notifyChange() {
	for _, fn := range s.onChange {
		fn()
	}
}

// CreateDocumentRequest represents a request to add a legal document.
type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Filename string `json:"filename,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateDocumentRequest carries partial document updates. Nil fields are
// left untouched.
type UpdateDocumentRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Filename *string `json:"filename,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// CreateDocument stores a new document. New documents default to active.
func (s *DocumentService) CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*repositories.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		s.logger.Printf("Invalid document create request: %v", err)
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	doc := &repositories.Document{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Filename:  req.Filename,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Printf("Document created: %s (%s)", doc.ID, doc.Title)
	s.notifyChange()
	return doc, nil
}

// GetDocument fetches one document by ID.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*repositories.Document, error) {
	return s.docRepo.Get(ctx, id)
}

// ListDocuments returns every stored document, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]*repositories.Document, error) {
	return s.docRepo.List(ctx)
}

// GetActiveDocumentsWithContent returns the documents that participate in
// retrieval.
func (s *DocumentService) GetActiveDocumentsWithContent(ctx context.Context) ([]*repositories.Document, error) {
	return s.docRepo.ListActive(ctx)
}

// UpdateDocument applies a partial update.
func (s *DocumentService) UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*repositories.Document, error) {
	updates := make(map[string]interface{})
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("invalid request: title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Filename != nil {
		updates["filename"] = *req.Filename
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("invalid request: no fields to update")
	}

	if err := s.docRepo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Document updated: %s", id)
	s.notifyChange()
	return doc, nil
}

// SetDocumentActive toggles a document in or out of the retrieval set.
func (s *DocumentService) SetDocumentActive(ctx context.Context, id string, active bool) (*repositories.Document, error) {
	if err := s.docRepo.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to set document active state: %w", err)
	}

	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Document %s active=%t", id, active)
	s.notifyChange()
	return doc, nil
}

// DeleteDocument removes a document permanently.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Printf("Document deleted: %s", id)
	s.notifyChange()
	return nil
}

// GetDocumentKeywords returns the dominant legal terms of a document.
func (s *DocumentService) GetDocumentKeywords(ctx context.Context, id string) ([]DocumentKeyword, error) {
	doc, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.keywordService.ExtractDocumentKeywords(doc.Title, doc.Content)
}

func (s *DocumentService) validateCreateRequest(req *CreateDocumentRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}
