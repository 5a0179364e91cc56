package repository

import (
	"context"
	"sync"
)

// MemoryKV keeps blobs in process memory. Nothing survives a restart.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the blob stored under key
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Keys returns the number of stored keys
func (m *MemoryKV) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
