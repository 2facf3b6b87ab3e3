package export

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore keeps recently read or written objects in memory in front of
// an origin store.
type CachedStore struct {
	origin Store
	cache  *lru.Cache[string, Object]
}

func NewCachedStore(origin Store, entries int) (*CachedStore, error) {
	if origin == nil {
		return nil, fmt.Errorf("origin store is nil")
	}
	if entries <= 0 {
		entries = 128
	}
	cache, err := lru.New[string, Object](entries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, cache: cache}, nil
}

func (s *CachedStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := s.origin.Put(ctx, key, content, contentType); err != nil {
		s.cache.Remove(key)
		return err
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	s.cache.Add(key, Object{Key: key, ContentType: contentType, Data: append([]byte(nil), content...)})
	return nil
}

func (s *CachedStore) Get(ctx context.Context, key string) (Object, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return Object{}, err
	}
	if obj, ok := s.cache.Get(key); ok {
		obj.Data = append([]byte(nil), obj.Data...)
		return obj, nil
	}
	obj, err := s.origin.Get(ctx, key)
	if err != nil {
		return Object{}, err
	}
	s.cache.Add(key, Object{Key: obj.Key, ContentType: obj.ContentType, Data: append([]byte(nil), obj.Data...)})
	return obj, nil
}

func (s *CachedStore) GetURL(ctx context.Context, key string) (string, error) {
	return s.origin.GetURL(ctx, key)
}

func (s *CachedStore) Len() int { return s.cache.Len() }
