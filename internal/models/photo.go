package models

import (
	"slices"
	"strings"
)

// PhotoSize is a layout hint used by the gallery grids
type PhotoSize string

const (
	SizeRegular PhotoSize = "regular"
	SizeWide    PhotoSize = "wide"
	SizeTall    PhotoSize = "tall"
)

// IsValidPhotoSize checks if a size value is valid
func IsValidPhotoSize(s string) bool {
	switch PhotoSize(s) {
	case SizeRegular, SizeWide, SizeTall:
		return true
	}
	return false
}

// Photo represents a photo in the gallery
type Photo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	Size        PhotoSize `json:"size"`
	Favorite    bool      `json:"favorite,omitempty"`
	AlbumIDs    []int64   `json:"albumIds"`
}

// NewPhotoInput holds the caller-supplied fields for a new photo
type NewPhotoInput struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
}

// NewPhoto creates a new Photo with validation. The size defaults to regular
// and the photo starts in no albums.
func NewPhoto(id int64, input NewPhotoInput) (*Photo, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	return &Photo{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		URL:         input.URL,
		Description: normalizeOptional(input.Description),
		Size:        SizeRegular,
		AlbumIDs:    []int64{},
	}, nil
}

// Validate checks the required fields
func (in NewPhotoInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrPhotoTitleRequired
	}
	if strings.TrimSpace(in.URL) == "" {
		return ErrPhotoURLRequired
	}
	return nil
}

// InAlbum reports whether the photo belongs to the album
func (p *Photo) InAlbum(albumID int64) bool {
	return slices.Contains(p.AlbumIDs, albumID)
}

// Clone returns a deep copy so callers cannot alias store state
func (p Photo) Clone() Photo {
	out := p
	out.AlbumIDs = slices.Clone(p.AlbumIDs)
	if out.AlbumIDs == nil {
		out.AlbumIDs = []int64{}
	}
	if p.Description != nil {
		d := *p.Description
		out.Description = &d
	}
	return out
}

// normalizeOptional turns a blank optional string into nil
func normalizeOptional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// Errors
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrPhotoTitleRequired = PhotoError{"photo title is required"}
	ErrPhotoURLRequired   = PhotoError{"photo url is required"}
	ErrInvalidPhotoSize   = PhotoError{"photo size must be regular, wide or tall"}
	ErrPhotoNotFound      = PhotoError{"photo not found"}
)
