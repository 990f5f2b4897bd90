package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a thread-safe ObjectStore for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

const memBaseURL = "memory/medical-images"

func (s *InMemoryStore) Put(_ context.Context, key string, content io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return memBaseURL + "/" + key, nil
}

func (s *InMemoryStore) PresignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return "", ErrObjectNotFound
	}
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return fmt.Sprintf("%s/%s?expires=%d", memBaseURL, key, int(expiry.Seconds())), nil
}

func (s *InMemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *InMemoryStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, memBaseURL+"/")
}

// Get returns stored content; test helper.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len reports the number of stored objects; test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
