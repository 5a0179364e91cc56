package models

import (
	"errors"
	"fmt"
)

// IsNotFound reports whether err means a referenced photo, album or
// photo/album association does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPhotoNotFound) ||
		errors.Is(err, ErrAlbumNotFound) ||
		errors.Is(err, ErrPhotoNotInAlbum)
}

// IsValidation reports whether err is a rejected create or update request
func IsValidation(err error) bool {
	return errors.Is(err, ErrPhotoTitleRequired) ||
		errors.Is(err, ErrPhotoURLRequired) ||
		errors.Is(err, ErrInvalidPhotoSize) ||
		errors.Is(err, ErrAlbumNameRequired) ||
		errors.Is(err, ErrAlbumCoverNotFound) ||
		errors.Is(err, ErrEmptyUpload) ||
		errors.Is(err, ErrUnsupportedMediaType)
}

// StorageError describes a failed read, write or decode of a storage key
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UploadError represents a rejected upload
type UploadError struct {
	Message string
}

func (e UploadError) Error() string {
	return e.Message
}

var (
	ErrFileTooLarge         = UploadError{"file too large"}
	ErrEmptyUpload          = UploadError{"uploaded file is empty"}
	ErrUnsupportedMediaType = UploadError{"file is not a supported image"}
)
