package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"traffic-chatbot/internal/repositories"
	"traffic-chatbot/internal/services"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status"`
}

// SuccessResponse is the JSON envelope for mutations without a body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, logger *log.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Printf("Failed to encode JSON: %v", err)
	}
}

func sendError(w http.ResponseWriter, logger *log.Logger, status int, message string) {
	sendJSON(w, logger, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// sendServiceError maps service and repository errors to their HTTP
// responses. APIError carries its own status and code; repository
// not-found errors become 404; everything else is a 500.
func sendServiceError(w http.ResponseWriter, logger *log.Logger, err error) {
	if apiErr, ok := services.AsAPIError(err); ok {
		sendJSON(w, logger, apiErr.Status, ErrorResponse{
			Error:   http.StatusText(apiErr.Status),
			Message: apiErr.Message,
			Code:    apiErr.Code,
			Status:  apiErr.Status,
		})
		return
	}
	if repositories.IsDocumentNotFound(err) || repositories.IsConversationNotFound(err) {
		sendError(w, logger, http.StatusNotFound, err.Error())
		return
	}
	sendError(w, logger, http.StatusInternalServerError, err.Error())
}

// userID extracts the authenticated user from the request. The gateway
// in front of this service validates the token and forwards the subject
// in X-User-ID; an empty value means guest.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
