package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"traffic-chatbot/internal/services"

	"github.com/gorilla/mux"
)

// DocumentHandler handles HTTP requests for the legal document corpus.
type DocumentHandler struct {
	docService *services.DocumentService
	logger     *log.Logger
}

func NewDocumentHandler(docService *services.DocumentService, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// DocumentListResponse represents a list of documents response
type DocumentListResponse struct {
	Documents interface{} `json:"documents"`
	Count     int         `json:"count"`
}

// CreateDocument stores a new legal document
// @Summary Create a document
// @Description Add a legal document to the corpus. New documents are active and join retrieval on the next cache refresh.
// @Tags documents
// @Accept json
// @Produce json
// @Param request body services.CreateDocumentRequest true "Document"
// @Success 201 {object} repositories.Document
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var request services.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), &request)
	if err != nil {
		h.logger.Printf("Create document failed: %v", err)
		sendError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	sendJSON(w, h.logger, http.StatusCreated, doc)
}

// ListDocuments returns every stored document
// @Summary List documents
// @Description Returns all documents, newest first.
// @Tags documents
// @Produce json
// @Success 200 {object} DocumentListResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/documents [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context())
	if err != nil {
		h.logger.Printf("List documents failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, DocumentListResponse{Documents: docs, Count: len(docs)})
}

// GetDocument returns one document
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} repositories.Document
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, doc)
}

// UpdateDocument applies a partial update
// @Summary Update a document
// @Description Update title, content, filename, or active state. Changes join retrieval on the next cache refresh.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body services.UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} repositories.Document
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var request services.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), mux.Vars(r)["id"], &request)
	if err != nil {
		h.logger.Printf("Update document failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, doc)
}

// SetDocumentActive toggles a document's retrieval participation
// @Summary Activate or deactivate a document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body handlers.SetActiveRequest true "Active flag"
// @Success 200 {object} repositories.Document
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id}/active [put]
func (h *DocumentHandler) SetDocumentActive(w http.ResponseWriter, r *http.Request) {
	var request SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if request.Active == nil {
		sendError(w, h.logger, http.StatusBadRequest, "active is required")
		return
	}

	doc, err := h.docService.SetDocumentActive(r.Context(), mux.Vars(r)["id"], *request.Active)
	if err != nil {
		h.logger.Printf("Set document active failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, doc)
}

// SetActiveRequest toggles a document's active flag.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// DeleteDocument removes a document
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.docService.DeleteDocument(r.Context(), id); err != nil {
		h.logger.Printf("Delete document failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, SuccessResponse{Success: true, Message: "Document deleted"})
}

// DocumentKeywords returns the dominant legal terms of a document
// @Summary Inspect document keywords
// @Description Returns the scored legal terms a document will match on, for admin sanity checks.
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} services.DocumentKeyword
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id}/keywords [get]
func (h *DocumentHandler) DocumentKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.docService.GetDocumentKeywords(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.logger.Printf("Document keywords failed: %v", err)
		sendServiceError(w, h.logger, err)
		return
	}
	sendJSON(w, h.logger, http.StatusOK, keywords)
}
