package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	apppurchasing "github.com/alanwarcs/BM-Backend/internal/application/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
)

// Ensure StubObjectStorage implements the application port
var _ apppurchasing.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage keeps objects in memory. It backs local development
// runs without an object store and the test suites.
type StubObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates an empty in-memory store
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{objects: make(map[string][]byte)}
}

// PutObject stores the object bytes under the key
func (s *StubObjectStorage) PutObject(_ context.Context, storageKey, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

// GetObject opens the stored object for reading
func (s *StubObjectStorage) GetObject(_ context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DeleteObject removes the object; deleting a missing key is a no-op
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists checks whether the key is present
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
