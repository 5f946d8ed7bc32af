package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mailsift/mailsift/internal/adapters/cache"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/embedding"
	"github.com/mailsift/mailsift/internal/normalize"
	"github.com/mailsift/mailsift/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient answers every text with a deterministic vector and counts
// batch invocations.
type fakeClient struct {
	mu         sync.Mutex
	batchCalls int
	failSubstr string
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.failSubstr != "" && strings.Contains(text, f.failSubstr) {
		return nil, errors.New("model unavailable")
	}
	return f.vectorFor(text), nil
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		if f.failSubstr != "" && strings.Contains(text, f.failSubstr) {
			continue
		}
		vectors[i] = f.vectorFor(text)
	}
	return vectors, nil
}

func (f *fakeClient) vectorFor(text string) []float64 {
	v := make([]float64, 4)
	for i, r := range text {
		v[i%4] += float64(r) / 1000.0
	}
	return v
}

func (f *fakeClient) ModelID() string { return "fake-embed-v1" }
func (f *fakeClient) Dimension() int  { return 4 }

func newTestProcessor(t *testing.T, client core.EmbeddingClient, chunkSize, maxItems int) *Processor {
	t.Helper()
	logger := zap.NewNop()
	normalizer := normalize.NewNormalizer(utils.NewTextProcessor(logger), 512, logger)
	embedder := embedding.NewService(client, cache.NewMemoryCache(logger), normalizer, logger)
	p, err := NewProcessor(embedder, chunkSize, maxItems, 0, logger)
	require.NoError(t, err)
	return p
}

func makeRecords(n int) []core.EmailRecord {
	records := make([]core.EmailRecord, n)
	for i := range records {
		records[i] = core.EmailRecord{
			ID:        fmt.Sprintf("m%03d", i),
			Sender:    fmt.Sprintf("sender%d@example.com", i%7),
			Subject:   fmt.Sprintf("Message number %d", i),
			Snippet:   "body text",
			Timestamp: "2026-08-01T10:00:00Z",
		}
	}
	return records
}

func TestNewProcessorRejectsNonPositiveChunkSize(t *testing.T) {
	_, err := NewProcessor(nil, 0, 0, 0, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size")

	_, err = NewProcessor(nil, -5, 0, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestProcessAccountsForEveryRecord(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, client, 50, 0)

	out, err := p.Process(context.Background(), makeRecords(120))
	require.NoError(t, err)

	r := out.Result
	assert.Equal(t, 120, r.TotalItems)
	assert.Equal(t, 120, r.ProcessedSuccessfully+r.FailedItems+r.SkippedItems)
	assert.Equal(t, 120, r.ProcessedSuccessfully)
	assert.Zero(t, r.FailedItems)
	assert.Zero(t, r.SkippedItems)
	assert.Len(t, out.Features, 120)
	assert.Len(t, out.Embeddings, 120)
	assert.Equal(t, 3, client.batchCalls, "120 records in chunks of 50")
}

func TestProcessCountsPerItemFailures(t *testing.T) {
	client := &fakeClient{failSubstr: "number 7"}
	p := newTestProcessor(t, client, 10, 0)

	out, err := p.Process(context.Background(), makeRecords(20))
	require.NoError(t, err)

	r := out.Result
	// "number 7" and "number 17" fail; the rest succeed.
	assert.Equal(t, 2, r.FailedItems)
	assert.Equal(t, 18, r.ProcessedSuccessfully)
	assert.Equal(t, 20, r.ProcessedSuccessfully+r.FailedItems+r.SkippedItems)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "embedding", r.Errors[0].Stage)
	assert.Equal(t, "m007", r.Errors[0].EmailID)

	// Failed items still carry a zero-vector embedding and features.
	assert.Len(t, out.Features, 20)
	assert.Len(t, out.Embeddings, 20)
	assert.Equal(t, make([]float64, 4), out.Embeddings["m007"].Vector)
}

func TestProcessMaxItemsCutoff(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, client, 10, 25)

	out, err := p.Process(context.Background(), makeRecords(100))
	require.NoError(t, err)

	r := out.Result
	// Cutoff is checked between chunks: 10, 20, 30, then stop.
	assert.Equal(t, 30, r.ProcessedSuccessfully)
	assert.Equal(t, 70, r.SkippedItems)
	assert.Equal(t, 100, r.ProcessedSuccessfully+r.FailedItems+r.SkippedItems)
}

func TestProcessCancelledContext(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, client, 10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := p.Process(ctx, makeRecords(30))
	require.NoError(t, err)

	r := out.Result
	assert.Zero(t, r.ProcessedSuccessfully)
	assert.Equal(t, 30, r.SkippedItems)
}

func TestProcessEmptyInput(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, client, 10, 0)

	out, err := p.Process(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, out.Result.TotalItems)
	assert.Zero(t, client.batchCalls)
	assert.False(t, out.Result.CompletedAt.IsZero())
}

func TestProcessComputesRates(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, client, 25, 0)

	out, err := p.Process(context.Background(), makeRecords(50))
	require.NoError(t, err)

	r := out.Result
	assert.False(t, r.CompletedAt.Before(r.StartedAt))
	assert.Greater(t, r.ItemsPerSecond, 0.0)
	assert.InDelta(t, 1.0, r.SuccessRate, 1e-9)
}
