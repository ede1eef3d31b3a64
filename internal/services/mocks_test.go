package services

import (
	"context"
	"time"

	"traffic-chatbot/internal/models"
	"traffic-chatbot/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockActiveDocumentSource mocks the cache's document source.
type MockActiveDocumentSource struct {
	mock.Mock
}

func (m *MockActiveDocumentSource) ListActive(ctx context.Context) ([]*repositories.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Document), args.Error(1)
}

// MockDocumentRepository mocks repositories.DocumentRepository.
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *repositories.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Get(ctx context.Context, documentID string) (*repositories.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]*repositories.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListActive(ctx context.Context) ([]*repositories.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, documentID string, updates map[string]interface{}) error {
	args := m.Called(ctx, documentID, updates)
	return args.Error(0)
}

func (m *MockDocumentRepository) SetActive(ctx context.Context, documentID string, active bool) error {
	args := m.Called(ctx, documentID, active)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentRepository) Exists(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockConversationRepository mocks repositories.ConversationRepository.
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *repositories.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *MockConversationRepository) Get(ctx context.Context, conversationID string) (*repositories.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Conversation), args.Error(1)
}

func (m *MockConversationRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]*repositories.Conversation, int, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*repositories.Conversation), args.Int(1), args.Error(2)
}

func (m *MockConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	args := m.Called(ctx, conversationID, at)
	return args.Error(0)
}

func (m *MockConversationRepository) Delete(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

// MockMessageRepository mocks repositories.MessageRepository.
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *repositories.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string, page, limit int) ([]*repositories.Message, int, error) {
	args := m.Called(ctx, conversationID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*repositories.Message), args.Int(1), args.Error(2)
}

func (m *MockMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	args := m.Called(ctx, conversationID)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageRepository) LastN(ctx context.Context, conversationID string, n int) ([]*repositories.Message, error) {
	args := m.Called(ctx, conversationID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Message), args.Error(1)
}

func (m *MockMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) (int, error) {
	args := m.Called(ctx, conversationID)
	return args.Int(0), args.Error(1)
}

// MockLLMClient mocks the model provider.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, systemInstruction string, history []models.ConversationTurn, prompt string) (string, error) {
	args := m.Called(ctx, systemInstruction, history, prompt)
	return args.String(0), args.Error(1)
}
