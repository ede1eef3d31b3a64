package routes

import (
	"net/http"

	"traffic-chatbot/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	Chat     *handlers.ChatHandler
	Document *handlers.DocumentHandler
	Admin    *handlers.AdminHandler
}

// RegisterRoutes sets up all application routes.
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/", h.Home).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Chatbot endpoints
	chatbot := api.PathPrefix("/chatbot").Subrouter()
	chatbot.HandleFunc("/chat", h.Chat.Chat).Methods("POST")
	chatbot.HandleFunc("/chat/stream", h.Chat.ChatStream).Methods("POST")
	chatbot.HandleFunc("/guest/history", h.Chat.GuestHistory).Methods("GET")
	chatbot.HandleFunc("/conversations", h.Chat.Conversations).Methods("GET")
	chatbot.HandleFunc("/conversations/{id}/history", h.Chat.ConversationHistory).Methods("GET")

	// Document corpus management
	api.HandleFunc("/documents", h.Document.CreateDocument).Methods("POST")
	api.HandleFunc("/documents", h.Document.ListDocuments).Methods("GET")
	api.HandleFunc("/documents/{id}", h.Document.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", h.Document.UpdateDocument).Methods("PUT")
	api.HandleFunc("/documents/{id}", h.Document.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/documents/{id}/active", h.Document.SetDocumentActive).Methods("PUT")
	api.HandleFunc("/documents/{id}/keywords", h.Document.DocumentKeywords).Methods("GET")

	// Admin
	api.HandleFunc("/admin/cache/refresh", h.Admin.RefreshCache).Methods("POST")
}
