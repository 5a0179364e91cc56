package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteKV stores blobs in the kv_store table of a SQLite database
type SQLiteKV struct {
	db DBTX
}

// NewSQLiteKV creates a new SQLiteKV
func NewSQLiteKV(db DBTX) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Get retrieves the blob stored under key
func (r *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the blob stored under key
func (r *SQLiteKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
