package handlers

import (
	"log"
	"net/http"
	"time"

	"traffic-chatbot/internal/services"
)

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	cache  *services.DocumentCache
	logger *log.Logger
}

func NewAdminHandler(cache *services.DocumentCache, logger *log.Logger) *AdminHandler {
	return &AdminHandler{
		cache:  cache,
		logger: logger,
	}
}

// CacheStatusResponse reports the state of the document cache.
type CacheStatusResponse struct {
	Documents   int       `json:"documents"`
	Chunks      int       `json:"chunks"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// RefreshCache rebuilds the document cache
// @Summary Refresh the document cache
// @Description Rechunks the active document set into a fresh snapshot. On failure the previous snapshot stays in place.
// @Tags admin
// @Produce json
// @Success 200 {object} CacheStatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/cache/refresh [post]
func (h *AdminHandler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Refresh(r.Context()); err != nil {
		h.logger.Printf("Cache refresh failed: %v", err)
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to refresh document cache")
		return
	}

	snapshot := h.cache.Snapshot()
	status := CacheStatusResponse{}
	if snapshot != nil {
		status.Documents = len(snapshot.Documents)
		status.Chunks = len(snapshot.AllChunks())
		status.LastUpdated = snapshot.LastUpdated
	}
	sendJSON(w, h.logger, http.StatusOK, status)
}
