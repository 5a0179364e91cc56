package models

import (
	"strings"
)

// Album represents a named group of photos. Membership lives on
// Photo.AlbumIDs; CoverPhotoID is only a display hint.
type Album struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	CoverPhotoID *int64  `json:"coverPhotoId,omitempty"`
}

// NewAlbumInput holds the caller-supplied fields for a new album
type NewAlbumInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// NewAlbum creates a new album with validation
func NewAlbum(id int64, input NewAlbumInput) (*Album, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrAlbumNameRequired
	}

	return &Album{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: normalizeOptional(input.Description),
	}, nil
}

// Validate checks the fields required on a full album replace
func (a *Album) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrAlbumNameRequired
	}
	return nil
}

// HasCover reports whether the album's cover is the given photo
func (a *Album) HasCover(photoID int64) bool {
	return a.CoverPhotoID != nil && *a.CoverPhotoID == photoID
}

// Clone returns a deep copy
func (a Album) Clone() Album {
	out := a
	if a.Description != nil {
		d := *a.Description
		out.Description = &d
	}
	if a.CoverPhotoID != nil {
		c := *a.CoverPhotoID
		out.CoverPhotoID = &c
	}
	return out
}

// AlbumSummary is an album with its derived photo count and cover
type AlbumSummary struct {
	Album
	PhotoCount int    `json:"photoCount"`
	Cover      *Photo `json:"cover,omitempty"`
}

// Album errors
type AlbumError struct {
	Message string
}

func (e AlbumError) Error() string {
	return e.Message
}

var (
	ErrAlbumNameRequired  = AlbumError{"album name is required"}
	ErrAlbumNotFound      = AlbumError{"album not found"}
	ErrAlbumCoverNotFound = AlbumError{"album cover photo does not exist"}
	ErrPhotoNotInAlbum    = AlbumError{"photo is not in album"}
)
