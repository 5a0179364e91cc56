package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlbum(t *testing.T) {
	t.Run("creates album with valid name", func(t *testing.T) {
		album, err := NewAlbum(7, NewAlbumInput{Name: " Trips ", Description: strPtr("Summer 2024")})

		require.NoError(t, err)
		assert.Equal(t, int64(7), album.ID)
		assert.Equal(t, "Trips", album.Name)
		require.NotNil(t, album.Description)
		assert.Equal(t, "Summer 2024", *album.Description)
		assert.Nil(t, album.CoverPhotoID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewAlbum(1, NewAlbumInput{Name: ""})
		assert.ErrorIs(t, err, ErrAlbumNameRequired)
	})

	t.Run("rejects whitespace name", func(t *testing.T) {
		_, err := NewAlbum(1, NewAlbumInput{Name: "\t "})
		assert.ErrorIs(t, err, ErrAlbumNameRequired)
	})
}

func TestAlbumHasCover(t *testing.T) {
	cover := int64(3)
	album := Album{ID: 1, Name: "a", CoverPhotoID: &cover}

	assert.True(t, album.HasCover(3))
	assert.False(t, album.HasCover(4))
	assert.False(t, (&Album{ID: 2}).HasCover(3))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(ErrPhotoNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", ErrAlbumNotFound)))
	assert.True(t, IsNotFound(ErrPhotoNotInAlbum))
	assert.False(t, IsNotFound(ErrAlbumNameRequired))

	assert.True(t, IsValidation(ErrPhotoTitleRequired))
	assert.True(t, IsValidation(ErrPhotoURLRequired))
	assert.True(t, IsValidation(ErrAlbumCoverNotFound))
	assert.False(t, IsValidation(ErrPhotoNotFound))
}

func TestStorageError(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := &StorageError{Op: "write", Key: "gallery_photos", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "gallery_photos")
	assert.Contains(t, err.Error(), "disk full")
}
