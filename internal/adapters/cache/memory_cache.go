package cache

import (
	"context"
	"sync"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheStore interface
type MemoryCache struct {
	entries map[string]*core.EmailEmbedding
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryCache creates a new in-memory embedding cache
func NewMemoryCache(logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*core.EmailEmbedding),
		logger:  logger,
	}
}

// Has reports whether an embedding exists for the fingerprint
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[key]
	return ok
}

// Get retrieves a cached embedding for a fingerprint
func (c *MemoryCache) Get(ctx context.Context, key string) (*core.EmailEmbedding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return entry, nil
}

// Set stores an embedding under its fingerprint key
func (c *MemoryCache) Set(ctx context.Context, embedding *core.EmailEmbedding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[embedding.Fingerprint] = embedding
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close releases nothing for the in-memory store
func (c *MemoryCache) Close() error {
	return nil
}

// Len returns the number of cached embeddings
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
