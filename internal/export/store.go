// Package export turns generated output into downloadable files.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Store persists exported assets by key.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
	// GetURL returns a direct download URL, or "" when the store cannot
	// hand one out.
	GetURL(ctx context.Context, key string) (string, error)
}

type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

var (
	ErrNotFound   = errors.New("export: asset not found")
	ErrInvalidKey = errors.New("export: invalid key")
)

const defaultContentType = "application/octet-stream"

func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrInvalidKey)
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Object),
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, content []byte, contentType string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = Object{Key: key, ContentType: contentType, Data: append([]byte(nil), content...)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	key, err := normalizeKey(key)
	if err != nil {
		return Object{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, nil
}

// GetURL always returns "": memory objects are served by the gateway.
func (s *MemoryStore) GetURL(context.Context, string) (string, error) {
	return "", nil
}
