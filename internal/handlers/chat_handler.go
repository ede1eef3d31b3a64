package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"traffic-chatbot/internal/models"
	"traffic-chatbot/internal/services"

	"github.com/gorilla/mux"
)

// ChatHandler handles the chatbot endpoints: chat, streaming chat,
// guest history, and conversation listing.
type ChatHandler struct {
	chatService *services.ChatbotService
	logger      *log.Logger
}

func NewChatHandler(chatService *services.ChatbotService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat handles a non-streaming chat message
// @Summary Send a chat message
// @Description Ask the traffic-law assistant a question. Authenticated requests persist the conversation; guests get an in-memory session.
// @Tags chatbot
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Authenticated user ID"
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/chatbot/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var request models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if request.Message == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Message is required")
		return
	}
	if request.GuestSessionID == "" {
		request.GuestSessionID = r.Header.Get("X-Guest-ID")
	}

	response, err := h.chatService.Chat(r.Context(), userID(r), &request)
	if err != nil {
		h.logger.Printf("Chat failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}

	if response.GuestSessionID != "" {
		w.Header().Set("X-Guest-ID", response.GuestSessionID)
	}
	sendJSON(w, h.logger, http.StatusOK, response)
}

// ChatStream handles a streaming chat message over SSE
// @Summary Send a chat message with a streamed response
// @Description Same pipeline as /chat, but the answer arrives as server-sent events: start, token..., complete (or error).
// @Tags chatbot
// @Accept json
// @Produce text/event-stream
// @Param X-User-ID header string false "Authenticated user ID"
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/chatbot/chat/stream [post]
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	var request models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if request.Message == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Message is required")
		return
	}
	if request.GuestSessionID == "" {
		request.GuestSessionID = r.Header.Get("X-Guest-ID")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, h.logger, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := h.chatService.ChatStream(r.Context(), userID(r), &request)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Printf("Failed to marshal stream event: %v", err)
				return
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// GuestHistory returns the history of one guest session
// @Summary Get guest chat history
// @Description Returns the in-memory history of a guest session. Unknown or expired sessions return an empty list.
// @Tags chatbot
// @Produce json
// @Param X-Guest-ID header string true "Guest session ID"
// @Success 200 {object} models.ChatHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/chatbot/guest/history [get]
func (h *ChatHandler) GuestHistory(w http.ResponseWriter, r *http.Request) {
	guestID := r.Header.Get("X-Guest-ID")
	if guestID == "" {
		guestID = r.URL.Query().Get("guestSessionId")
	}
	if guestID == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Guest session ID is required")
		return
	}

	sendJSON(w, h.logger, http.StatusOK, h.chatService.GetGuestChatHistory(guestID))
}

// Conversations lists the authenticated user's conversations
// @Summary List conversations
// @Description Returns one page of the user's conversations, most recently updated first.
// @Tags chatbot
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.ConversationListResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/chatbot/conversations [get]
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		sendError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	response, err := h.chatService.GetUserConversations(r.Context(), uid, page, limit)
	if err != nil {
		h.logger.Printf("List conversations failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, response)
}

// ConversationHistory returns one page of a conversation's messages
// @Summary Get conversation history
// @Description Returns one page of a conversation's messages, oldest first. The conversation must belong to the caller.
// @Tags chatbot
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param id path string true "Conversation ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.ChatHistoryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/chatbot/conversations/{id}/history [get]
func (h *ChatHandler) ConversationHistory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		sendError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}

	conversationID := mux.Vars(r)["id"]
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	response, err := h.chatService.GetChatHistory(r.Context(), uid, conversationID, page, limit)
	if err != nil {
		h.logger.Printf("Get chat history failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, response)
}

func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
