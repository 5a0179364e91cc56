package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresKV stores blobs in the kv_store table of a PostgreSQL database
type PostgresKV struct {
	db DBTX
}

// NewPostgresKV creates a new PostgresKV
func NewPostgresKV(db DBTX) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get retrieves the blob stored under key
func (r *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the blob stored under key
func (r *PostgresKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
