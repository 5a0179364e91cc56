package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
)

// GalleryStore is the part of the photo/album store the API needs
type GalleryStore interface {
	ListPhotos() []models.Photo
	ListFavorites() []models.Photo
	ListAlbumSummaries() []models.AlbumSummary
	GetPhotoByID(id int64) (models.Photo, bool)
	GetAlbumByID(id int64) (models.Album, bool)
	GetPhotosByAlbumID(albumID int64) []models.Photo
	Counts() (photos, albums, favorites int)
	Loaded() bool

	AddPhoto(ctx context.Context, input models.NewPhotoInput) (models.Photo, error)
	ToggleFavorite(ctx context.Context, id int64) (models.Photo, error)
	DeletePhoto(ctx context.Context, id int64) error
	AddAlbum(ctx context.Context, input models.NewAlbumInput) (models.Album, error)
	UpdateAlbum(ctx context.Context, album models.Album) (models.Album, error)
	DeleteAlbum(ctx context.Context, id int64) error
	AddPhotoToAlbum(ctx context.Context, photoID, albumID int64) error
	RemovePhotoFromAlbum(ctx context.Context, photoID, albumID int64) error
}

var _ GalleryStore = (*services.PhotoAlbumStore)(nil)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// respondStoreError maps a store error to an HTTP status
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case models.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case models.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrFileTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrStoreNotLoaded):
		respondError(w, http.StatusServiceUnavailable, "Gallery is not ready.")
	default:
		observability.WithContext(r.Context()).Errorf("Unexpected error on %s %s: %v", r.Method, r.URL.Path, err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// parseID reads a positive integer URL parameter
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
