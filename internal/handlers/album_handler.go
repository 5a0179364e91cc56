package handlers

import (
	"net/http"

	"github.com/photogallery/server/internal/models"
)

// AlbumHandler handles album endpoints
type AlbumHandler struct {
	store GalleryStore
}

// NewAlbumHandler creates a new AlbumHandler
func NewAlbumHandler(store GalleryStore) *AlbumHandler {
	return &AlbumHandler{store: store}
}

// List returns every album with its photo count and cover
// @Summary List albums
// @Tags albums
// @Produce json
// @Success 200 {object} models.AlbumListResponse
// @Router /api/albums [get]
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	albums := h.store.ListAlbumSummaries()
	respondJSON(w, http.StatusOK, models.AlbumListResponse{
		Albums:     albums,
		TotalCount: len(albums),
	})
}

// Create adds an album
// @Summary Create an album
// @Tags albums
// @Accept json
// @Produce json
// @Param album body models.NewAlbumInput true "Album to create"
// @Success 201 {object} models.Album
// @Failure 400 {object} models.ErrorResponse "Missing name"
// @Router /api/albums [post]
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.NewAlbumInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	album, err := h.store.AddAlbum(r.Context(), input)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, album)
}

// Get returns an album with its photos
// @Summary Get an album
// @Tags albums
// @Produce json
// @Param id path int true "Album ID"
// @Success 200 {object} models.AlbumResponse
// @Failure 404 {object} models.ErrorResponse "Album not found"
// @Router /api/albums/{id} [get]
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album id.")
		return
	}

	album, found := h.store.GetAlbumByID(id)
	if !found {
		respondError(w, http.StatusNotFound, models.ErrAlbumNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.AlbumResponse{
		Album:  album,
		Photos: h.store.GetPhotosByAlbumID(id),
	})
}

// Update replaces an album. Omitted optional fields are cleared.
// @Summary Replace an album
// @Tags albums
// @Accept json
// @Produce json
// @Param id path int true "Album ID"
// @Param album body models.UpdateAlbumRequest true "Complete album record"
// @Success 200 {object} models.Album
// @Failure 400 {object} models.ErrorResponse "Missing name or unknown cover photo"
// @Failure 404 {object} models.ErrorResponse "Album not found"
// @Router /api/albums/{id} [put]
func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album id.")
		return
	}

	var req models.UpdateAlbumRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	album, err := h.store.UpdateAlbum(r.Context(), models.Album{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		CoverPhotoID: req.CoverPhotoID,
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// Delete removes an album. Its photos are kept.
// @Summary Delete an album
// @Tags albums
// @Param id path int true "Album ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse "Album not found"
// @Router /api/albums/{id} [delete]
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album id.")
		return
	}

	if err := h.store.DeleteAlbum(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPhotos returns the photos in an album
// @Summary List album photos
// @Tags albums
// @Produce json
// @Param id path int true "Album ID"
// @Success 200 {object} models.PhotoListResponse
// @Failure 404 {object} models.ErrorResponse "Album not found"
// @Router /api/albums/{id}/photos [get]
func (h *AlbumHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album id.")
		return
	}
	if _, found := h.store.GetAlbumByID(id); !found {
		respondError(w, http.StatusNotFound, models.ErrAlbumNotFound.Error())
		return
	}

	photos := h.store.GetPhotosByAlbumID(id)
	respondJSON(w, http.StatusOK, models.PhotoListResponse{
		Photos:     photos,
		TotalCount: len(photos),
	})
}

// AddPhotos adds several photos to an album. Each photo is added on its
// own; unknown photos are reported and skipped.
// @Summary Add photos to an album
// @Tags albums
// @Accept json
// @Produce json
// @Param id path int true "Album ID"
// @Param photos body models.AddPhotosRequest true "Photo IDs"
// @Success 200 {object} models.AddPhotosResult
// @Failure 404 {object} models.ErrorResponse "Album not found"
// @Router /api/albums/{id}/photos [post]
func (h *AlbumHandler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	albumID, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album id.")
		return
	}

	var req models.AddPhotosRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if _, found := h.store.GetAlbumByID(albumID); !found {
		respondError(w, http.StatusNotFound, models.ErrAlbumNotFound.Error())
		return
	}

	result := models.AddPhotosResult{Added: []int64{}, NotFound: []int64{}}
	for _, photoID := range req.PhotoIDs {
		err := h.store.AddPhotoToAlbum(r.Context(), photoID, albumID)
		switch {
		case err == nil:
			result.Added = append(result.Added, photoID)
		case models.IsNotFound(err):
			result.NotFound = append(result.NotFound, photoID)
		default:
			respondStoreError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, result)
}

// AddPhoto adds one photo to an album
// @Summary Add a photo to an album
// @Tags albums
// @Param id path int true "Album ID"
// @Param photoId path int true "Photo ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse "Photo or album not found"
// @Router /api/albums/{id}/photos/{photoId} [put]
func (h *AlbumHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	albumID, photoID, ok := parseMembership(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album or photo id.")
		return
	}

	if err := h.store.AddPhotoToAlbum(r.Context(), photoID, albumID); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemovePhoto removes one photo from an album
// @Summary Remove a photo from an album
// @Tags albums
// @Param id path int true "Album ID"
// @Param photoId path int true "Photo ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse "Photo, album or membership not found"
// @Router /api/albums/{id}/photos/{photoId} [delete]
func (h *AlbumHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	albumID, photoID, ok := parseMembership(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid album or photo id.")
		return
	}

	if err := h.store.RemovePhotoFromAlbum(r.Context(), photoID, albumID); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseMembership(r *http.Request) (albumID, photoID int64, ok bool) {
	albumID, ok = parseID(r, "id")
	if !ok {
		return 0, 0, false
	}
	photoID, ok = parseID(r, "photoId")
	return albumID, photoID, ok
}
