package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a CacheStore when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// ErrCorrupted is returned by a CacheStore when an entry exists but cannot
// be decoded. The embedding service deletes such entries and recomputes.
var ErrCorrupted = errors.New("cache entry corrupted")

// EmbeddingClient defines the interface for embedding-model providers.
type EmbeddingClient interface {
	// Embed maps normalized text to a fixed-dimension vector.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch maps a slice of texts to vectors, order-preserving.
	// A nil vector at position i marks a per-item failure; a non-nil
	// error means the whole call failed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// ModelID identifies the model version backing the vectors.
	ModelID() string

	// Dimension is the constant vector length for this model.
	Dimension() int
}

// CacheStore persists embedding vectors keyed by content fingerprint.
// It is an explicit dependency so tests can substitute in-memory or
// no-op implementations.
type CacheStore interface {
	// Has reports whether an entry exists for the key.
	Has(ctx context.Context, key string) bool

	// Get loads the embedding for a key. Returns ErrNotFound when the
	// key is absent and ErrCorrupted when the entry cannot be decoded.
	Get(ctx context.Context, key string) (*EmailEmbedding, error)

	// Set stores an embedding under its fingerprint key.
	Set(ctx context.Context, embedding *EmailEmbedding) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage handle.
	Close() error
}

// Clusterer groups embedding vectors into clusters of record indices.
// Implementations must be deterministic for a fixed input.
type Clusterer interface {
	// Cluster returns groups of indices into the input slice. Indices
	// not assigned to any cluster are omitted.
	Cluster(vectors [][]float64) [][]int
}

// PatternDetector is one independent pattern family. Detectors are
// order-insensitive among themselves and must return nil rather than
// fail on empty or under-sized input.
type PatternDetector interface {
	Name() string
	Detect(records []EmailRecord, features map[string]EmailFeatures, embeddings map[string]*EmailEmbedding) []EmailPattern
}
