package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
)

// PhotoHandler handles photo-related endpoints
type PhotoHandler struct {
	store         GalleryStore
	uploadService *services.UploadService
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(store GalleryStore, uploadService *services.UploadService) *PhotoHandler {
	return &PhotoHandler{
		store:         store,
		uploadService: uploadService,
	}
}

// List returns every photo
// @Summary List photos
// @Description Returns all photos in insertion order
// @Tags photos
// @Produce json
// @Success 200 {object} models.PhotoListResponse
// @Router /api/photos [get]
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos := h.store.ListPhotos()
	respondJSON(w, http.StatusOK, models.PhotoListResponse{
		Photos:     photos,
		TotalCount: len(photos),
	})
}

// Create adds a photo from a JSON body
// @Summary Add a photo
// @Description Adds a photo whose image is already a URL or data URL. New photos are regular size and in no albums.
// @Tags photos
// @Accept json
// @Produce json
// @Param photo body models.NewPhotoInput true "Photo to add"
// @Success 201 {object} models.Photo
// @Failure 400 {object} models.ErrorResponse "Missing title or url"
// @Router /api/photos [post]
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.NewPhotoInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	photo, err := h.store.AddPhoto(r.Context(), input)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

// Upload adds a photo from a multipart file
// @Summary Upload a photo
// @Description Encodes the uploaded image as a data URL and adds it as a photo. Title defaults to the filename, description to the EXIF image description.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param title formData string false "Photo title"
// @Param description formData string false "Photo description"
// @Success 201 {object} models.Photo
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 413 {object} models.ErrorResponse "File too large"
// @Router /api/photos/upload [post]
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// allow some room for the other form fields
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadService.MaxFileSizeBytes()+1<<20)
	if err := r.ParseMultipartForm(h.uploadService.MaxFileSizeBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, models.ErrFileTooLarge.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "Request must be multipart/form-data within the size limit.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided or file is empty.")
		return
	}
	defer file.Close()

	prepared, err := h.uploadService.Prepare(file, header.Filename)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	input := models.NewPhotoInput{
		Title:       prepared.Title,
		URL:         prepared.DataURL,
		Description: prepared.Description,
	}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		input.Title = title
	}
	if desc := strings.TrimSpace(r.FormValue("description")); desc != "" {
		input.Description = &desc
	}

	photo, err := h.store.AddPhoto(r.Context(), input)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	observability.WithContext(r.Context()).WithFields(map[string]interface{}{
		"photo_id":     photo.ID,
		"content_type": prepared.ContentType,
		"size":         prepared.Size,
	}).Info("Photo uploaded")
	respondJSON(w, http.StatusCreated, photo)
}

// Get returns one photo
// @Summary Get a photo
// @Tags photos
// @Produce json
// @Param id path int true "Photo ID"
// @Success 200 {object} models.Photo
// @Failure 404 {object} models.ErrorResponse "Photo not found"
// @Router /api/photos/{id} [get]
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid photo id.")
		return
	}

	photo, found := h.store.GetPhotoByID(id)
	if !found {
		respondError(w, http.StatusNotFound, models.ErrPhotoNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// Delete removes a photo, its favorite entry and any album cover pointing at it
// @Summary Delete a photo
// @Tags photos
// @Param id path int true "Photo ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse "Photo not found"
// @Router /api/photos/{id} [delete]
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid photo id.")
		return
	}

	if err := h.store.DeletePhoto(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
