package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/photogallery/server/internal/config"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/repository"
)

// openStorage builds the key-value store selected by cfg. The returned
// closer releases any database handle.
func openStorage(ctx context.Context, cfg config.Storage) (repository.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		observability.Warn("Using in-memory storage, the gallery is lost on restart")
		return repository.NewMemoryKV(), noop, nil

	case config.BackendFile:
		observability.Infof("Using file storage in %s", cfg.Dir)
		kv, err := repository.NewFileKV(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open storage directory: %w", err)
		}
		return kv, noop, nil

	case config.BackendSQLite:
		observability.Infof("Using SQLite storage at %s", cfg.DatabasePath)
		db, err := repository.NewSQLiteDB(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite database: %w", err)
		}
		traced, err := traceDB(db, "sqlite")
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteKV(traced), db.Close, nil

	case config.BackendPostgres:
		observability.Info("Using PostgreSQL storage")
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
		}
		traced, err := traceDB(db, "postgresql")
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresKV(traced), db.Close, nil

	case config.BackendS3:
		observability.Infof("Using S3 storage in bucket %s", cfg.S3.Bucket)
		client, err := repository.NewS3Client(ctx, repository.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		kv, err := repository.NewS3KV(client, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func traceDB(db *sql.DB, system string) (*observability.TraceDB, error) {
	traced, err := observability.NewTraceDB(db, system)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database metrics: %w", err)
	}
	return traced, nil
}
