package services

import (
	"errors"
	"net/http"
)

// APIError is a client-visible service error. Handlers map Status to the
// HTTP response code; Code is a stable machine-readable identifier.
type APIError struct {
	Code    string
	Status  int
	Message string
	Err     error // underlying cause, logged but never sent to clients
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a client-visible error.
func NewAPIError(code string, status int, message string) *APIError {
	return &APIError{Code: code, Status: status, Message: message}
}

// ErrConversationNotFound builds the not-found error for a missing conversation.
func ErrConversationNotFound() *APIError {
	return NewAPIError("CONVERSATION_NOT_FOUND", http.StatusNotFound, "Conversation not found")
}

// ErrUnauthorizedConversation builds the error for a conversation owned by
// another user.
func ErrUnauthorizedConversation() *APIError {
	return NewAPIError("UNAUTHORIZED_CONVERSATION", http.StatusForbidden, "You do not have access to this conversation")
}

// ErrUpstream builds the opaque error returned when the model provider
// call fails. Clients see only the fixed message; the cause stays in the
// chain for logging. No partial response is ever surfaced.
func ErrUpstream(cause error) *APIError {
	return &APIError{
		Code:    "GEMINI_API_ERROR",
		Status:  http.StatusBadGateway,
		Message: "Failed to get response from AI assistant",
		Err:     cause,
	}
}

// ErrChatService builds the generic wrapper for unexpected chat failures.
func ErrChatService() *APIError {
	return NewAPIError("CHAT_SERVICE_ERROR", http.StatusInternalServerError, "Failed to process chat request")
}

// AsAPIError extracts an APIError from an error chain, if present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
