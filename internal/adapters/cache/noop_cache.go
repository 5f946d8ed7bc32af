package cache

import (
	"context"

	"github.com/mailsift/mailsift/internal/core"
)

// NoopCache never stores anything: every lookup is a miss. Used when
// caching is disabled and as a test substitute.
type NoopCache struct{}

// NewNoopCache creates a new no-op cache
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Has always reports a miss
func (c *NoopCache) Has(ctx context.Context, key string) bool {
	return false
}

// Get always returns ErrNotFound
func (c *NoopCache) Get(ctx context.Context, key string) (*core.EmailEmbedding, error) {
	return nil, core.ErrNotFound
}

// Set discards the embedding
func (c *NoopCache) Set(ctx context.Context, embedding *core.EmailEmbedding) error {
	return nil
}

// Delete is a no-op
func (c *NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op
func (c *NoopCache) Close() error {
	return nil
}
