package handlers

import (
	"net/http"

	"github.com/photogallery/server/internal/models"
)

// FavoriteHandler handles favorite endpoints
type FavoriteHandler struct {
	store GalleryStore
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(store GalleryStore) *FavoriteHandler {
	return &FavoriteHandler{store: store}
}

// List returns favorited photos in the order they were favorited
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {object} models.PhotoListResponse
// @Router /api/favorites [get]
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	photos := h.store.ListFavorites()
	respondJSON(w, http.StatusOK, models.PhotoListResponse{
		Photos:     photos,
		TotalCount: len(photos),
	})
}

// Toggle flips a photo's favorite flag
// @Summary Toggle favorite
// @Tags favorites
// @Produce json
// @Param id path int true "Photo ID"
// @Success 200 {object} models.Photo "Updated photo"
// @Failure 404 {object} models.ErrorResponse "Photo not found"
// @Router /api/photos/{id}/favorite [post]
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid photo id.")
		return
	}

	photo, err := h.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}
