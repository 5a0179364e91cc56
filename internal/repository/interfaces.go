package repository

import (
	"context"
	"database/sql"
)

// Storage keys for the three gallery collections
const (
	KeyPhotos    = "gallery_photos"
	KeyFavorites = "gallery_favorites"
	KeyAlbums    = "gallery_albums"
)

// KeyValueStore is a string blob store keyed by name, the persistence
// medium of the gallery. Get reports ok=false for a key never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// DBTX is the subset of *sql.DB used by the SQL key-value stores. It is also
// satisfied by observability.TraceDB.
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
