package models

import "time"

// UpdateAlbumRequest is the request body for replacing an album.
// Every field is written; omitted optional fields are cleared.
type UpdateAlbumRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	CoverPhotoID *int64  `json:"coverPhotoId,omitempty"`
}

// AddPhotosRequest adds several photos to an album
type AddPhotosRequest struct {
	PhotoIDs []int64 `json:"photoIds"`
}

// AddPhotosResult reports a batch add; each photo is applied independently
type AddPhotosResult struct {
	Added    []int64 `json:"added"`
	NotFound []int64 `json:"notFound"`
}

// AlbumResponse is the API response for a single album
type AlbumResponse struct {
	Album  Album   `json:"album"`
	Photos []Photo `json:"photos"`
}

// PhotoListResponse is returned when listing photos or favorites
type PhotoListResponse struct {
	Photos     []Photo `json:"photos"`
	TotalCount int     `json:"totalCount"`
}

// AlbumListResponse is returned when listing albums
type AlbumListResponse struct {
	Albums     []AlbumSummary `json:"albums"`
	TotalCount int            `json:"totalCount"`
}

// HealthResponse is returned by health check. Status is "healthy" once the
// store has loaded and "loading" before.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Photos    int       `json:"photos"`
	Albums    int       `json:"albums"`
	Favorites int       `json:"favorites"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}
