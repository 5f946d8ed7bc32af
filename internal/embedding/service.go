// Package embedding generates fixed-dimension vectors for email records,
// backed by a fingerprint-keyed cache so unchanged content is never sent
// to the model twice.
package embedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/fingerprint"
	"github.com/mailsift/mailsift/internal/normalize"
	"go.uber.org/zap"
)

// Service is the embedding generator plus cache front.
type Service struct {
	client     core.EmbeddingClient
	store      core.CacheStore
	normalizer *normalize.Normalizer
	logger     *zap.Logger

	// keyLocks serializes computation per fingerprint so concurrent
	// workers never race duplicate model calls on the same content.
	keyLocks sync.Map // string -> *sync.Mutex
}

// NewService creates a new embedding service
func NewService(client core.EmbeddingClient, store core.CacheStore, normalizer *normalize.Normalizer, logger *zap.Logger) *Service {
	return &Service{
		client:     client,
		store:      store,
		normalizer: normalizer,
		logger:     logger,
	}
}

// ModelID returns the identifier of the backing embedding model.
func (s *Service) ModelID() string {
	return s.client.ModelID()
}

// Embed returns the embedding for a single record, computing and caching
// it on a miss. A model failure yields a zero vector and a warning, never
// an error.
func (s *Service) Embed(ctx context.Context, record core.EmailRecord) *core.EmailEmbedding {
	key := fingerprint.Key(record)

	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if cached := s.lookup(ctx, key); cached != nil {
		return cached
	}

	text := s.normalizer.Normalize(record)
	vector, err := s.client.Embed(ctx, text)
	if err != nil || vector == nil {
		s.logger.Warn("Embedding computation failed, substituting zero vector",
			zap.String("email_id", record.ID),
			zap.Error(err))
		return s.zeroEmbedding(key)
	}

	entry := s.newEmbedding(key, vector)
	if err := s.store.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to store embedding", zap.String("fingerprint", key), zap.Error(err))
	}
	return entry
}

// EmbedBatch returns one embedding per record, order-preserving. Cached
// items are served from the store; the remainder goes to the model in a
// single call. Per-item failures become zero vectors and are reported in
// the returned error list.
func (s *Service) EmbedBatch(ctx context.Context, records []core.EmailRecord) ([]*core.EmailEmbedding, []core.BatchError) {
	embeddings := make([]*core.EmailEmbedding, len(records))
	var failures []core.BatchError

	// Partition into cached and uncached, deduplicating by fingerprint
	// so identical content inside one batch is computed once.
	type pending struct {
		key     string
		text    string
		indices []int
	}
	var uncached []*pending
	byKey := make(map[string]*pending)

	for i, record := range records {
		key := fingerprint.Key(record)
		if cached := s.lookup(ctx, key); cached != nil {
			embeddings[i] = cached
			continue
		}
		if p, ok := byKey[key]; ok {
			p.indices = append(p.indices, i)
			continue
		}
		p := &pending{key: key, text: s.normalizer.Normalize(record), indices: []int{i}}
		byKey[key] = p
		uncached = append(uncached, p)
	}

	if len(uncached) == 0 {
		return embeddings, nil
	}

	texts := make([]string, len(uncached))
	for i, p := range uncached {
		texts[i] = p.text
	}

	vectors, err := s.client.EmbedBatch(ctx, texts)
	if err != nil {
		s.logger.Warn("Batch embedding call failed, substituting zero vectors",
			zap.Int("count", len(uncached)),
			zap.Error(err))
		vectors = make([][]float64, len(uncached))
	}

	for i, p := range uncached {
		var entry *core.EmailEmbedding
		if i < len(vectors) && vectors[i] != nil {
			entry = s.newEmbedding(p.key, vectors[i])
			lock := s.lockFor(p.key)
			lock.Lock()
			if storeErr := s.store.Set(ctx, entry); storeErr != nil {
				s.logger.Error("Failed to store embedding", zap.String("fingerprint", p.key), zap.Error(storeErr))
			}
			lock.Unlock()
		} else {
			entry = s.zeroEmbedding(p.key)
			for _, idx := range p.indices {
				s.logger.Warn("Embedding computation failed, substituting zero vector",
					zap.String("email_id", records[idx].ID))
				failures = append(failures, core.BatchError{
					EmailID: records[idx].ID,
					Stage:   "embedding",
					Message: "model invocation failed, zero vector substituted",
				})
			}
		}
		for _, idx := range p.indices {
			embeddings[idx] = entry
		}
	}

	return embeddings, failures
}

// lookup reads the store, treating a corrupted entry as a miss after
// discarding it.
func (s *Service) lookup(ctx context.Context, key string) *core.EmailEmbedding {
	entry, err := s.store.Get(ctx, key)
	if err == nil {
		s.logger.Debug("Embedding cache hit", zap.String("fingerprint", key))
		return entry
	}
	if errors.Is(err, core.ErrCorrupted) {
		s.logger.Warn("Discarding corrupted cache entry", zap.String("fingerprint", key))
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error("Failed to delete corrupted entry", zap.String("fingerprint", key), zap.Error(delErr))
		}
	} else if !errors.Is(err, core.ErrNotFound) {
		s.logger.Error("Cache read failed", zap.String("fingerprint", key), zap.Error(err))
	}
	return nil
}

func (s *Service) newEmbedding(key string, vector []float64) *core.EmailEmbedding {
	return &core.EmailEmbedding{
		Fingerprint: key,
		Vector:      vector,
		Model:       s.client.ModelID(),
		Dimension:   len(vector),
		CreatedAt:   time.Now(),
	}
}

func (s *Service) zeroEmbedding(key string) *core.EmailEmbedding {
	return &core.EmailEmbedding{
		Fingerprint: key,
		Vector:      make([]float64, s.client.Dimension()),
		Model:       s.client.ModelID(),
		Dimension:   s.client.Dimension(),
		CreatedAt:   time.Now(),
	}
}

func (s *Service) lockFor(key string) *sync.Mutex {
	actual, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
