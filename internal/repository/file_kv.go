package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ErrInvalidKey is returned for keys that cannot be mapped to a file name
var ErrInvalidKey = errors.New("invalid storage key")

// FileKV stores each key as <key>.json in a profile directory
type FileKV struct {
	basePath string
}

// NewFileKV creates a FileKV rooted at basePath, creating it if needed
func NewFileKV(basePath string) (*FileKV, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, err
	}

	return &FileKV{basePath: absPath}, nil
}

// Get reads the blob stored under key
func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}

	return string(data), true, nil
}

// Set writes value under key. The file is replaced atomically so a crash
// mid-write leaves the previous value in place.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.basePath, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// BasePath returns the profile directory
func (f *FileKV) BasePath() string {
	return f.basePath
}

func (f *FileKV) pathFor(key string) (string, error) {
	if !validKey.MatchString(key) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	fullPath := filepath.Join(f.basePath, key+".json")

	// Security check: ensure path is within base path
	if !strings.HasPrefix(fullPath, f.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return fullPath, nil
}
