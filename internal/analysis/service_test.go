package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/mailsift/mailsift/internal/adapters/cache"
	"github.com/mailsift/mailsift/internal/aggregate"
	"github.com/mailsift/mailsift/internal/batch"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/detect"
	"github.com/mailsift/mailsift/internal/embedding"
	"github.com/mailsift/mailsift/internal/exclude"
	"github.com/mailsift/mailsift/internal/normalize"
	"github.com/mailsift/mailsift/internal/score"
	"github.com/mailsift/mailsift/internal/suggest"
	"github.com/mailsift/mailsift/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient answers every text with a deterministic vector derived from
// its characters, so similar subjects land near each other.
type fakeClient struct{}

func (f *fakeClient) vectorFor(text string) []float64 {
	v := make([]float64, 8)
	for i, r := range text {
		v[i%8] += float64(r) / 1000.0
	}
	return v
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vectorFor(text), nil
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = f.vectorFor(text)
	}
	return vectors, nil
}

func (f *fakeClient) ModelID() string { return "fake-embed-v1" }
func (f *fakeClient) Dimension() int  { return 8 }

func newTestService(t *testing.T, minPatternSize int, minConfidence float64) *Service {
	t.Helper()
	logger := zap.NewNop()

	normalizer := normalize.NewNormalizer(utils.NewTextProcessor(logger), 512, logger)
	embedder := embedding.NewService(&fakeClient{}, cache.NewMemoryCache(logger), normalizer, logger)
	processor, err := batch.NewProcessor(embedder, 50, 0, 0, logger)
	require.NoError(t, err)

	checker := exclude.NewChecker([]string{"INBOX", "UNREAD"}, logger)
	detectors := []core.PatternDetector{
		detect.NewSenderDetector(minPatternSize, logger),
		detect.NewSubjectDetector(minPatternSize, logger),
		detect.NewTemporalDetector(minPatternSize, logger),
		detect.NewLabelDetector(minPatternSize, checker, logger),
		detect.NewAttachmentDetector(minPatternSize, logger),
		detect.NewClusterDetector(minPatternSize, logger),
	}

	return NewService(
		processor,
		detectors,
		score.NewScorer(minPatternSize),
		aggregate.NewAggregator(minConfidence, 20, logger),
		suggest.NewGenerator(25.0, 30.0, logger),
		"fake-embed-v1",
		minPatternSize,
		logger,
	)
}

func snapshot() []core.EmailRecord {
	var records []core.EmailRecord
	for i := 0; i < 5; i++ {
		records = append(records, core.EmailRecord{
			ID:        fmt.Sprintf("news-%d", i),
			Sender:    "Acme News <newsletter@acme.example.com>",
			Subject:   fmt.Sprintf("Weekly Digest #%d", i+1),
			Snippet:   "This week in tech",
			Labels:    []string{"INBOX", "Newsletters"},
			Timestamp: fmt.Sprintf("2026-08-%02dT09:00:00Z", 3+i*7),
		})
	}
	records = append(records,
		core.EmailRecord{ID: "misc-1", Sender: "alice@example.com", Subject: "Lunch?", Timestamp: "2026-08-04T12:00:00Z"},
		core.EmailRecord{ID: "misc-2", Sender: "bob@example.com", Subject: "Re: project", Timestamp: "2026-08-12T15:30:00Z"},
		core.EmailRecord{ID: "misc-3", Sender: "carol@example.com", Subject: "Photos", Timestamp: "2026-08-20T18:00:00Z"},
	)
	return records
}

func TestAnalyzeFindsNewsletterPatterns(t *testing.T) {
	service := newTestService(t, 3, 0.6)

	result, err := service.Analyze(context.Background(), snapshot())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "fake-embed-v1", result.ModelUsed)
	require.NotNil(t, result.BatchResult)
	assert.Equal(t, 8, result.BatchResult.TotalItems)
	assert.Equal(t, 8, result.BatchResult.ProcessedSuccessfully)

	var senderPattern *core.EmailPattern
	for i := range result.Patterns {
		if result.Patterns[i].PatternType == core.PatternTypeSender {
			senderPattern = &result.Patterns[i]
		}
	}
	require.NotNil(t, senderPattern, "expected a sender pattern for the newsletter")
	assert.Equal(t, 5, senderPattern.EmailCount)
	assert.GreaterOrEqual(t, senderPattern.Confidence, 0.7)

	assert.NotEmpty(t, result.Suggestions)
	assert.Equal(t, 8, result.Summary.TotalEmails)
	assert.Equal(t, 4, result.Summary.UniqueSenders)
	assert.Equal(t, "Acme News <newsletter@acme.example.com>", result.Summary.TopSender)
	assert.Equal(t, "2026-08-03T09:00:00Z", result.Summary.OldestTimestamp)
	assert.Equal(t, "2026-08-31T09:00:00Z", result.Summary.NewestTimestamp)
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	service := newTestService(t, 3, 0.0)

	result, err := service.Analyze(context.Background(), snapshot())
	require.NoError(t, err)

	require.NotEmpty(t, result.Patterns)
	for _, p := range result.Patterns {
		assert.GreaterOrEqual(t, p.Confidence, 0.0, p.Description)
		assert.LessOrEqual(t, p.Confidence, 1.0, p.Description)
		assert.Greater(t, p.EmailCount, 0, p.Description)
		assert.LessOrEqual(t, p.EmailCount, p.TotalUniverse, p.Description)
		assert.NotEmpty(t, p.Description)
	}
	for _, s := range result.Suggestions {
		assert.NotEmpty(t, s.RuleConditions, s.Name)
		assert.NotEmpty(t, s.RuleActions, s.Name)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	records := snapshot()

	first, err := newTestService(t, 3, 0.6).Analyze(context.Background(), records)
	require.NoError(t, err)
	second, err := newTestService(t, 3, 0.6).Analyze(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, first.Patterns, second.Patterns)
	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAnalyzeTooFewRecords(t *testing.T) {
	service := newTestService(t, 3, 0.6)

	result, err := service.Analyze(context.Background(), snapshot()[:2])

	require.NoError(t, err, "insufficient data is not an error")
	require.NotNil(t, result)
	assert.Empty(t, result.Patterns)
	assert.Empty(t, result.Suggestions)
	assert.Nil(t, result.BatchResult)
	assert.Equal(t, 2, result.Summary.TotalEmails)
	assert.NotEmpty(t, result.RunID)
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	service := newTestService(t, 3, 0.6)

	result, err := service.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, result.Patterns)
	assert.Zero(t, result.Summary.TotalEmails)
}

func TestSuggestRulesRegeneratesFromResult(t *testing.T) {
	service := newTestService(t, 3, 0.6)

	result, err := service.Analyze(context.Background(), snapshot())
	require.NoError(t, err)

	regenerated := service.SuggestRules(result)
	assert.Equal(t, result.Suggestions, regenerated)

	assert.Nil(t, service.SuggestRules(nil))
}
