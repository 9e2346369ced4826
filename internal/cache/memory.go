package cache

import (
	"bytes"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore expires entries ttl after they are written. Values are copied
// on the way in and out, so callers never share bytes with the store.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates a store whose expired entries are swept every sweep interval
func NewMemoryStore(ttl, sweep time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(ttl, sweep)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	v, found := s.items.Get(key)
	if !found {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return bytes.Clone(b), true
}

func (s *MemoryStore) Put(key string, value []byte) {
	s.items.SetDefault(key, bytes.Clone(value))
}

func (s *MemoryStore) Invalidate(key string) {
	s.items.Delete(key)
}

// Len counts stored entries, including expired ones not yet swept
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
