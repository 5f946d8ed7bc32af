package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mailsift/mailsift/internal/adapters/cache"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/normalize"
	"github.com/mailsift/mailsift/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient derives a deterministic vector from the text so tests can
// tell embeddings apart, and counts model invocations.
type fakeClient struct {
	mu         sync.Mutex
	calls      int
	batchCalls int
	failSubstr string
	failAll    bool
	dimension  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{dimension: 4}
}

func (f *fakeClient) vectorFor(text string) []float64 {
	v := make([]float64, f.dimension)
	for i, r := range text {
		v[i%f.dimension] += float64(r) / 1000.0
	}
	return v
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll || (f.failSubstr != "" && strings.Contains(text, f.failSubstr)) {
		return nil, errors.New("model unavailable")
	}
	return f.vectorFor(text), nil
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.failAll {
		return nil, errors.New("model unavailable")
	}
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		if f.failSubstr != "" && strings.Contains(text, f.failSubstr) {
			continue
		}
		vectors[i] = f.vectorFor(text)
	}
	return vectors, nil
}

func (f *fakeClient) ModelID() string { return "fake-embed-v1" }
func (f *fakeClient) Dimension() int  { return f.dimension }

func (f *fakeClient) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls + f.batchCalls
}

func newTestService(client core.EmbeddingClient, store core.CacheStore) *Service {
	logger := zap.NewNop()
	normalizer := normalize.NewNormalizer(utils.NewTextProcessor(logger), 512, logger)
	return NewService(client, store, normalizer, logger)
}

func record(id, sender, subject, snippet string) core.EmailRecord {
	return core.EmailRecord{
		ID:        id,
		Sender:    sender,
		Subject:   subject,
		Snippet:   snippet,
		Timestamp: "2026-08-01T10:00:00Z",
	}
}

func TestEmbedCachesByFingerprint(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	rec := record("m1", "news@example.com", "Weekly Digest", "Top stories")

	first := service.Embed(ctx, rec)
	second := service.Embed(ctx, rec)

	require.NotNil(t, first)
	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, 1, client.totalCalls(), "second call must be served from cache")
	assert.Equal(t, 1, store.Len())
}

func TestEmbedLabelChangeIsStillCacheHit(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	rec := record("m1", "news@example.com", "Weekly Digest", "Top stories")
	service.Embed(ctx, rec)

	relabeled := rec
	relabeled.Labels = []string{"Archive"}
	service.Embed(ctx, relabeled)

	assert.Equal(t, 1, client.totalCalls())
}

func TestEmbedFailureYieldsZeroVector(t *testing.T) {
	client := newFakeClient()
	client.failAll = true
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)

	entry := service.Embed(context.Background(), record("m1", "a@b.com", "Hi", "Body"))

	require.NotNil(t, entry)
	assert.Equal(t, make([]float64, client.dimension), entry.Vector)
	assert.Equal(t, 0, store.Len(), "failed embeddings must not be cached")
}

func TestEmbedBatchPreservesOrderAndDedupes(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	records := []core.EmailRecord{
		record("m1", "a@x.com", "First", "one"),
		record("m2", "b@x.com", "Second", "two"),
		record("m3", "a@x.com", "First", "one"), // duplicate content of m1
	}

	embeddings, failures := service.EmbedBatch(ctx, records)

	require.Len(t, embeddings, 3)
	assert.Empty(t, failures)
	assert.Equal(t, embeddings[0].Vector, embeddings[2].Vector)
	assert.NotEqual(t, embeddings[0].Vector, embeddings[1].Vector)
	assert.Equal(t, 1, client.batchCalls)
	assert.Equal(t, 2, store.Len(), "duplicate content computed once")
}

func TestEmbedBatchServesCachedEntriesWithoutModelCall(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	records := []core.EmailRecord{
		record("m1", "a@x.com", "First", "one"),
		record("m2", "b@x.com", "Second", "two"),
	}

	_, failures := service.EmbedBatch(ctx, records)
	require.Empty(t, failures)
	callsAfterFirst := client.totalCalls()

	_, failures = service.EmbedBatch(ctx, records)
	require.Empty(t, failures)

	assert.Equal(t, callsAfterFirst, client.totalCalls(), "fully cached batch must not invoke the model")
}

func TestEmbedBatchSingleItemFailure(t *testing.T) {
	client := newFakeClient()
	client.failSubstr = "Poison"
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	records := make([]core.EmailRecord, 10)
	for i := range records {
		subject := fmt.Sprintf("Message %d", i)
		if i == 4 {
			subject = "Poison pill"
		}
		records[i] = record(fmt.Sprintf("m%d", i), fmt.Sprintf("s%d@x.com", i), subject, "body")
	}

	embeddings, failures := service.EmbedBatch(ctx, records)

	require.Len(t, embeddings, 10)
	for i, e := range embeddings {
		require.NotNil(t, e, "index %d", i)
	}

	require.Len(t, failures, 1)
	assert.Equal(t, "m4", failures[0].EmailID)
	assert.Equal(t, "embedding", failures[0].Stage)

	zero := make([]float64, client.dimension)
	assert.Equal(t, zero, embeddings[4].Vector)
	assert.NotEqual(t, zero, embeddings[3].Vector)
	assert.Equal(t, 9, store.Len(), "failed item must not be cached")
}

// corruptOnceStore wraps a real store and reports the first read of a
// marked key as corrupted.
type corruptOnceStore struct {
	core.CacheStore
	corruptKey string
	served     bool
}

func (s *corruptOnceStore) Get(ctx context.Context, key string) (*core.EmailEmbedding, error) {
	if key == s.corruptKey && !s.served {
		s.served = true
		return nil, core.ErrCorrupted
	}
	return s.CacheStore.Get(ctx, key)
}

func TestEmbedRecomputesCorruptedEntry(t *testing.T) {
	client := newFakeClient()
	inner := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, inner)
	ctx := context.Background()

	rec := record("m1", "a@x.com", "Hello", "world")
	first := service.Embed(ctx, rec)
	require.NotNil(t, first)

	wrapped := &corruptOnceStore{CacheStore: inner, corruptKey: first.Fingerprint}
	service = newTestService(client, wrapped)

	recomputed := service.Embed(ctx, rec)

	require.NotNil(t, recomputed)
	assert.Equal(t, first.Vector, recomputed.Vector)
	assert.Equal(t, 2, client.totalCalls(), "corrupted entry forces one recompute")

	// The recomputed entry is back in the store.
	entry, err := inner.Get(ctx, first.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, first.Vector, entry.Vector)
}

func TestEmbedConcurrentSameRecordComputesOnce(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryCache(zap.NewNop())
	service := newTestService(client, store)
	ctx := context.Background()

	rec := record("m1", "a@x.com", "Hello", "world")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Embed(ctx, rec)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.totalCalls())
}
