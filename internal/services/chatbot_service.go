package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"traffic-chatbot/internal/models"
	"traffic-chatbot/internal/repositories"

	"github.com/google/uuid"
)

const (
	// Guest sessions live in memory only and expire one hour after the
	// first message.
	guestSessionTTL    = time.Hour
	guestSweepInterval = time.Hour
	guestMaxTurns      = 50

	historyContextTurns = 10

	defaultTokenDelay    = 10 * time.Millisecond
	nonTrafficTokenDelay = 100 * time.Millisecond
	greetingTokenDelay   = 50 * time.Millisecond

	defaultRAGChunks       = 8
	articleSearchRAGChunks = 15

	conversationTitleLimit = 50
)

type guestConversation struct {
	id        string
	turns     []guestTurn
	createdAt time.Time
}

type guestTurn struct {
	question  string
	answer    string
	timestamp time.Time
}

// ChatbotService orchestrates the chat pipeline: intent classification,
// context retrieval, LLM generation, and conversation persistence.
// Authenticated conversations go to Redis; guest sessions live in an
// in-memory map with a TTL.
type ChatbotService struct {
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
	llm      LLMClient
	detector *TrafficDetector
	analyzer *LegalAnalyzer
	scorer   *RAGScorer
	cache    *DocumentCache
	logger   *log.Logger

	mu     sync.Mutex
	guests map[string]*guestConversation

	now        func() time.Time
	tokenDelay time.Duration
}

func NewChatbotService(
	convRepo repositories.ConversationRepository,
	msgRepo repositories.MessageRepository,
	llm LLMClient,
	detector *TrafficDetector,
	analyzer *LegalAnalyzer,
	scorer *RAGScorer,
	cache *DocumentCache,
	logger *log.Logger,
) *ChatbotService {
	return &ChatbotService{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		llm:        llm,
		detector:   detector,
		analyzer:   analyzer,
		scorer:     scorer,
		cache:      cache,
		logger:     logger,
		guests:     make(map[string]*guestConversation),
		now:        time.Now,
		tokenDelay: defaultTokenDelay,
	}
}

// StartGuestSweeper expires stale guest sessions until ctx is cancelled.
func (s *ChatbotService) StartGuestSweeper(ctx context.Context) {
	ticker := time.NewTicker(guestSweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := s.cleanupGuestSessions()
				if removed > 0 {
					s.logger.Printf("Expired %d guest sessions", removed)
				}
			}
		}
	}()
}

func (s *ChatbotService) cleanupGuestSessions() int {
	cutoff := s.now().Add(-guestSessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, conv := range s.guests {
		if conv.createdAt.Before(cutoff) {
			delete(s.guests, id)
			removed++
		}
	}
	return removed
}

// Chat answers one message. An empty userID or an explicit guest flag
// routes to the in-memory guest path; everything else persists to the
// user's conversation.
func (s *ChatbotService) Chat(ctx context.Context, userID string, req *models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("invalid request: message is required")
	}

	if userID == "" || req.IsGuest {
		return s.chatGuest(ctx, req)
	}
	return s.chatAuthenticated(ctx, userID, req)
}

func (s *ChatbotService) chatGuest(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	guestID := req.GuestSessionID
	if guestID == "" {
		guestID = newGuestID()
	}

	history := s.guestHistory(guestID)
	answer, err := s.generateResponse(ctx, req.Message, history)
	if err != nil {
		return nil, err
	}

	s.appendGuestTurn(guestID, req.Message, answer)

	return &models.ChatResponse{
		Response:       answer,
		Timestamp:      s.now(),
		IsGuest:        true,
		GuestSessionID: guestID,
	}, nil
}

func (s *ChatbotService) chatAuthenticated(ctx context.Context, userID string, req *models.ChatRequest) (*models.ChatResponse, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conv := &repositories.Conversation{
			ID:        uuid.New().String(),
			UserID:    userID,
			Title:     conversationTitle(req.Message),
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
		}
		if err := s.convRepo.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID
	} else {
		if _, err := s.requireOwnedConversation(ctx, userID, conversationID); err != nil {
			return nil, err
		}
	}

	history, err := s.conversationHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	answer, err := s.generateResponse(ctx, req.Message, history)
	if err != nil {
		return nil, err
	}

	msg := &repositories.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Question:       req.Message,
		Answer:         answer,
		CreatedBy:      "user_" + userID,
		CreatedAt:      s.now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	if err := s.convRepo.Touch(ctx, conversationID, s.now()); err != nil {
		s.logger.Printf("Failed to touch conversation %s: %v", conversationID, err)
	}

	return &models.ChatResponse{
		Response:       answer,
		ConversationID: &conversationID,
		MessageID:      &msg.ID,
		Timestamp:      s.now(),
		IsGuest:        false,
	}, nil
}

// ChatStream runs the same pipeline as Chat but emits the answer as a
// sequence of events: start, tokens, then complete with the final
// metadata, or error. The channel is closed when the stream ends; a
// stream without a complete event failed.
func (s *ChatbotService) ChatStream(ctx context.Context, userID string, req *models.ChatRequest) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		if strings.TrimSpace(req.Message) == "" {
			s.emit(ctx, events, models.StreamEvent{
				Type:      models.StreamEventError,
				Timestamp: s.now(),
				Message:   "message is required",
			})
			return
		}

		isGuest := userID == "" || req.IsGuest
		guestID := req.GuestSessionID
		if isGuest && guestID == "" {
			guestID = newGuestID()
		}

		start := models.StreamEvent{Type: models.StreamEventStart, Timestamp: s.now()}
		if isGuest {
			start.GuestSessionID = guestID
		}
		if !s.emit(ctx, events, start) {
			return
		}

		var response *models.ChatResponse
		var err error
		if isGuest {
			streamReq := *req
			streamReq.GuestSessionID = guestID
			response, err = s.streamGuest(ctx, events, &streamReq)
		} else {
			response, err = s.streamAuthenticated(ctx, events, userID, req)
		}
		if err != nil {
			s.logger.Printf("Chat stream error: %v", err)
			message := "Failed to process chat request"
			if apiErr, ok := AsAPIError(err); ok {
				message = apiErr.Message
			}
			s.emit(ctx, events, models.StreamEvent{
				Type:      models.StreamEventError,
				Timestamp: s.now(),
				Message:   message,
			})
			return
		}

		s.emit(ctx, events, models.StreamEvent{
			Type:           models.StreamEventComplete,
			Timestamp:      s.now(),
			GuestSessionID: response.GuestSessionID,
			Metadata:       response,
		})
	}()

	return events
}

func (s *ChatbotService) streamGuest(ctx context.Context, events chan<- models.StreamEvent, req *models.ChatRequest) (*models.ChatResponse, error) {
	guestID := req.GuestSessionID

	history := s.guestHistory(guestID)
	answer, err := s.generateResponseStream(ctx, events, req.Message, history, guestID)
	if err != nil {
		return nil, err
	}

	s.appendGuestTurn(guestID, req.Message, answer)

	return &models.ChatResponse{
		Response:       answer,
		Timestamp:      s.now(),
		IsGuest:        true,
		GuestSessionID: guestID,
	}, nil
}

func (s *ChatbotService) streamAuthenticated(ctx context.Context, events chan<- models.StreamEvent, userID string, req *models.ChatRequest) (*models.ChatResponse, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conv := &repositories.Conversation{
			ID:        uuid.New().String(),
			UserID:    userID,
			Title:     conversationTitle(req.Message),
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
		}
		if err := s.convRepo.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID
	} else {
		if _, err := s.requireOwnedConversation(ctx, userID, conversationID); err != nil {
			return nil, err
		}
	}

	history, err := s.conversationHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	answer, err := s.generateResponseStream(ctx, events, req.Message, history, "")
	if err != nil {
		return nil, err
	}

	msg := &repositories.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Question:       req.Message,
		Answer:         answer,
		CreatedBy:      "user_" + userID,
		CreatedAt:      s.now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	if err := s.convRepo.Touch(ctx, conversationID, s.now()); err != nil {
		s.logger.Printf("Failed to touch conversation %s: %v", conversationID, err)
	}

	return &models.ChatResponse{
		Response:       answer,
		ConversationID: &conversationID,
		MessageID:      &msg.ID,
		Timestamp:      s.now(),
		IsGuest:        false,
	}, nil
}

// generateResponse runs classification and, for in-scope questions,
// retrieval plus generation. Greetings and off-topic questions never
// reach the LLM.
func (s *ChatbotService) generateResponse(ctx context.Context, question string, history []models.ConversationTurn) (string, error) {
	if s.detector.IsGreeting(question) {
		return GreetingResponse(question), nil
	}
	if !s.detector.IsTrafficLawRelated(question, history) {
		return NonTrafficResponse(question), nil
	}

	systemInstruction := s.buildSystemInstruction(ctx, question)
	answer, err := s.llm.Generate(ctx, systemInstruction, history, question)
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (s *ChatbotService) generateResponseStream(ctx context.Context, events chan<- models.StreamEvent, question string, history []models.ConversationTurn, guestID string) (string, error) {
	if s.detector.IsGreeting(question) {
		answer := GreetingResponse(question)
		if err := s.streamTokens(ctx, events, answer, guestID, greetingTokenDelay); err != nil {
			return "", err
		}
		return answer, nil
	}
	if !s.detector.IsTrafficLawRelated(question, history) {
		answer := NonTrafficResponse(question)
		if err := s.streamTokens(ctx, events, answer, guestID, nonTrafficTokenDelay); err != nil {
			return "", err
		}
		return answer, nil
	}

	systemInstruction := s.buildSystemInstruction(ctx, question)
	answer, err := s.llm.Generate(ctx, systemInstruction, history, question)
	if err != nil {
		return "", err
	}
	if err := s.streamTokens(ctx, events, answer, guestID, s.tokenDelay); err != nil {
		return "", err
	}
	return answer, nil
}

// streamTokens emits the answer word by word with pacing, stopping early
// if the client goes away.
func (s *ChatbotService) streamTokens(ctx context.Context, events chan<- models.StreamEvent, answer, guestID string, delay time.Duration) error {
	for _, word := range strings.Fields(answer) {
		event := models.StreamEvent{
			Type:           models.StreamEventToken,
			Timestamp:      s.now(),
			GuestSessionID: guestID,
			Token:          word + " ",
		}
		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (s *ChatbotService) emit(ctx context.Context, events chan<- models.StreamEvent, event models.StreamEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildSystemInstruction picks the document context for a question.
// Penalty queries get every active document; everything else goes
// through chunk retrieval with a full-content fallback.
func (s *ChatbotService) buildSystemInstruction(ctx context.Context, question string) string {
	var documentContent string

	if s.analyzer.IsLegalPenaltyQuery(question) {
		documentContent = FormatDocumentContext(s.cache.Documents())
		s.logger.Printf("Using full document content for legal query")
	} else {
		chunks := s.retrieveRelevantChunks(question)
		if len(chunks) > 0 {
			documentContent = FormatChunkContext(chunks)
			s.logger.Printf("Using RAG with %d relevant chunks", len(chunks))
		} else {
			documentContent = FormatDocumentContext(s.cache.Documents())
			s.logger.Printf("Fallback to full document content - no relevant chunks found")
		}
	}

	return BuildSystemInstruction(question, documentContent)
}

func (s *ChatbotService) retrieveRelevantChunks(question string) []models.DocumentChunk {
	allChunks := s.cache.AllChunks()
	if len(allChunks) == 0 {
		return nil
	}

	maxChunks := defaultRAGChunks
	if s.analyzer.IsArticleSearch(question) {
		maxChunks = articleSearchRAGChunks
	}

	keywords := s.analyzer.ExtractKeywords(question)
	return s.scorer.Retrieve(allChunks, question, keywords, maxChunks)
}

func (s *ChatbotService) requireOwnedConversation(ctx context.Context, userID, conversationID string) (*repositories.Conversation, error) {
	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		if repositories.IsConversationNotFound(err) {
			return nil, ErrConversationNotFound()
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv.UserID != userID {
		return nil, ErrUnauthorizedConversation()
	}
	return conv, nil
}

func (s *ChatbotService) conversationHistory(ctx context.Context, conversationID string) ([]models.ConversationTurn, error) {
	messages, err := s.msgRepo.LastN(ctx, conversationID, historyContextTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	turns := make([]models.ConversationTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, models.ConversationTurn{Question: msg.Question, Answer: msg.Answer})
	}
	return turns, nil
}

func (s *ChatbotService) guestHistory(guestID string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.guests[guestID]
	if !ok {
		return nil
	}

	turns := conv.turns
	if len(turns) > historyContextTurns {
		turns = turns[len(turns)-historyContextTurns:]
	}
	history := make([]models.ConversationTurn, 0, len(turns))
	for _, turn := range turns {
		history = append(history, models.ConversationTurn{Question: turn.question, Answer: turn.answer})
	}
	return history
}

func (s *ChatbotService) appendGuestTurn(guestID, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.guests[guestID]
	if !ok {
		conv = &guestConversation{id: guestID, createdAt: s.now()}
		s.guests[guestID] = conv
	}

	conv.turns = append(conv.turns, guestTurn{
		question:  question,
		answer:    answer,
		timestamp: s.now(),
	})
	if len(conv.turns) > guestMaxTurns {
		conv.turns = conv.turns[len(conv.turns)-guestMaxTurns:]
	}
}

// GetGuestChatHistory returns the turns of one guest session. Unknown or
// expired sessions yield an empty history, never an error.
func (s *ChatbotService) GetGuestChatHistory(guestID string) *models.ChatHistoryResponse {
	s.mu.Lock()
	conv, ok := s.guests[guestID]
	var turns []guestTurn
	if ok {
		turns = append(turns, conv.turns...)
	}
	s.mu.Unlock()

	entries := make([]models.ChatHistoryEntry, 0, len(turns))
	for i, turn := range turns {
		entries = append(entries, models.ChatHistoryEntry{
			ID:        fmt.Sprintf("guest_%d", i),
			Question:  turn.question,
			Answer:    turn.answer,
			CreatedAt: turn.timestamp,
		})
	}

	return &models.ChatHistoryResponse{
		Data: entries,
		Meta: models.PaginationMeta{
			Total:   len(entries),
			IsGuest: true,
		},
	}
}

// GetChatHistory returns one page of a conversation's messages, oldest
// first, after an ownership check.
func (s *ChatbotService) GetChatHistory(ctx context.Context, userID, conversationID string, page, limit int) (*models.ChatHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	conv, err := s.requireOwnedConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	messages, total, err := s.msgRepo.ListByConversation(ctx, conversationID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}

	entries := make([]models.ChatHistoryEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, models.ChatHistoryEntry{
			ID:        msg.ID,
			Question:  msg.Question,
			Answer:    msg.Answer,
			CreatedAt: msg.CreatedAt,
		})
	}

	lastPage := int(math.Ceil(float64(total) / float64(limit)))

	return &models.ChatHistoryResponse{
		Data: entries,
		Meta: models.PaginationMeta{
			Total:           total,
			Page:            page,
			LastPage:        lastPage,
			HasNextPage:     page < lastPage,
			HasPreviousPage: page > 1,
		},
		Conversation: &models.ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
		},
	}, nil
}

// GetUserConversations returns one page of the user's conversations,
// most recently updated first.
func (s *ChatbotService) GetUserConversations(ctx context.Context, userID string, page, limit int) (*models.ConversationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	conversations, total, err := s.convRepo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, models.ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}

	lastPage := int(math.Ceil(float64(total) / float64(limit)))

	return &models.ConversationListResponse{
		Data: summaries,
		Meta: models.PaginationMeta{
			Total:           total,
			Page:            page,
			LastPage:        lastPage,
			HasNextPage:     page < lastPage,
			HasPreviousPage: page > 1,
		},
	}, nil
}

func newGuestID() string {
	return "guest_" + uuid.New().String()
}

// conversationTitle derives the thread title from the first message.
func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) > conversationTitleLimit {
		return string(runes[:conversationTitleLimit-3]) + "..."
	}
	return message
}
