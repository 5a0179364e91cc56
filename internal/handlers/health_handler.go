package handlers

import (
	"net/http"
	"time"

	"github.com/photogallery/server/internal/models"
)

// HealthHandler reports liveness and the gallery size
type HealthHandler struct {
	store GalleryStore
	now   func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store GalleryStore) *HealthHandler {
	return &HealthHandler{store: store, now: time.Now}
}

// HealthCheck answers 200 once the store has loaded and 503 while it is
// still reading storage.
// @Summary Health check
// @Description Returns the server status and the number of photos, albums and favorites
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse "Server is healthy"
// @Failure 503 {object} models.HealthResponse "Store still loading"
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: h.now().UTC(),
	}

	if !h.store.Loaded() {
		resp.Status = "loading"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Photos, resp.Albums, resp.Favorites = h.store.Counts()
	respondJSON(w, http.StatusOK, resp)
}
