// Package analysis is the root of the pipeline: batch stage, detector
// fan-out, scoring, aggregation, and suggestion generation.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mailsift/mailsift/internal/aggregate"
	"github.com/mailsift/mailsift/internal/batch"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/score"
	"github.com/mailsift/mailsift/internal/suggest"
	"go.uber.org/zap"
)

// Service runs the full pattern-detection pipeline over a mailbox
// snapshot. It holds no persistent state between runs; only the
// embedding cache (owned by the batch stage) survives.
type Service struct {
	processor      *batch.Processor
	detectors      []core.PatternDetector
	scorer         *score.Scorer
	aggregator     *aggregate.Aggregator
	generator      *suggest.Generator
	modelID        string
	minPatternSize int
	logger         *zap.Logger
}

// NewService creates a new analysis service
func NewService(
	processor *batch.Processor,
	detectors []core.PatternDetector,
	scorer *score.Scorer,
	aggregator *aggregate.Aggregator,
	generator *suggest.Generator,
	modelID string,
	minPatternSize int,
	logger *zap.Logger,
) *Service {
	return &Service{
		processor:      processor,
		detectors:      detectors,
		scorer:         scorer,
		aggregator:     aggregator,
		generator:      generator,
		modelID:        modelID,
		minPatternSize: minPatternSize,
		logger:         logger,
	}
}

// Analyze runs the pipeline over a snapshot. Fewer than minPatternSize
// usable records is not an error: it yields an empty result, since no
// grouping could ever reach a pattern.
func (s *Service) Analyze(ctx context.Context, records []core.EmailRecord) (*core.EmailAnalysisResult, error) {
	result := &core.EmailAnalysisResult{
		RunID:      uuid.NewString(),
		ModelUsed:  s.modelID,
		AnalyzedAt: time.Now(),
	}

	if len(records) < s.minPatternSize {
		s.logger.Info("Too few records for pattern detection, returning empty result",
			zap.Int("records", len(records)),
			zap.Int("min_pattern_size", s.minPatternSize))
		result.Summary = s.summarize(records, nil, nil)
		return result, nil
	}

	out, err := s.processor.Process(ctx, records)
	if err != nil {
		return nil, err
	}
	result.BatchResult = out.Result

	// A cutoff run analyzes only the records the batch stage reached.
	analyzed := records
	if out.Result.SkippedItems > 0 {
		analyzed = records[:len(records)-out.Result.SkippedItems]
	}

	merged := s.runDetectors(analyzed, out.Features, out.Embeddings)
	valid := s.validate(merged)
	scored := s.scorer.Apply(valid, len(analyzed))
	result.Patterns = s.aggregator.Aggregate(scored)
	result.Suggestions = s.generator.Generate(result.Patterns)
	result.Summary = s.summarize(analyzed, result.Patterns, result.Suggestions)

	s.logger.Info("Analysis complete",
		zap.String("run_id", result.RunID),
		zap.Int("records", len(analyzed)),
		zap.Int("patterns", len(result.Patterns)),
		zap.Int("suggestions", len(result.Suggestions)))

	return result, nil
}

// SuggestRules re-derives suggestions from a prior result without
// re-running detection.
func (s *Service) SuggestRules(result *core.EmailAnalysisResult) []core.CategorySuggestion {
	if result == nil {
		return nil
	}
	return s.generator.Generate(result.Patterns)
}

// runDetectors fans the detector families out concurrently and merges
// their output in registration order, keeping runs deterministic.
func (s *Service) runDetectors(records []core.EmailRecord, feats map[string]core.EmailFeatures, embeds map[string]*core.EmailEmbedding) []core.EmailPattern {
	perDetector := make([][]core.EmailPattern, len(s.detectors))
	var wg sync.WaitGroup
	for i, detector := range s.detectors {
		wg.Add(1)
		go func(i int, d core.PatternDetector) {
			defer wg.Done()
			perDetector[i] = d.Detect(records, feats, embeds)
			s.logger.Debug("Detector finished",
				zap.String("detector", d.Name()),
				zap.Int("patterns", len(perDetector[i])))
		}(i, detector)
	}
	wg.Wait()

	var merged []core.EmailPattern
	for _, patterns := range perDetector {
		merged = append(merged, patterns...)
	}
	return merged
}

// validate drops internally inconsistent patterns with a warning rather
// than aborting the run.
func (s *Service) validate(patterns []core.EmailPattern) []core.EmailPattern {
	valid := make([]core.EmailPattern, 0, len(patterns))
	for _, p := range patterns {
		switch {
		case p.EmailCount <= 0:
			s.logger.Warn("Skipping pattern with no members", zap.String("description", p.Description))
		case p.EmailCount > p.TotalUniverse:
			s.logger.Warn("Skipping pattern exceeding its universe",
				zap.String("description", p.Description),
				zap.Int("email_count", p.EmailCount),
				zap.Int("universe", p.TotalUniverse))
		case p.Description == "":
			s.logger.Warn("Skipping pattern without description", zap.String("type", string(p.PatternType)))
		default:
			valid = append(valid, p)
		}
	}
	return valid
}

// summarize builds the compact statistics block for the run.
func (s *Service) summarize(records []core.EmailRecord, patterns []core.EmailPattern, suggestions []core.CategorySuggestion) core.AnalysisSummary {
	summary := core.AnalysisSummary{
		TotalEmails:     len(records),
		PatternCount:    len(patterns),
		SuggestionCount: len(suggestions),
	}

	senders := make(map[string]int)
	var oldest, newest time.Time
	for _, r := range records {
		senders[r.Sender]++
		if senders[r.Sender] > summary.TopSenderCount {
			summary.TopSender = r.Sender
			summary.TopSenderCount = senders[r.Sender]
		}
		if t, ok := core.ParseTimestamp(r.Timestamp); ok {
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
			}
			if newest.IsZero() || t.After(newest) {
				newest = t
			}
		}
	}
	summary.UniqueSenders = len(senders)
	if !oldest.IsZero() {
		summary.OldestTimestamp = oldest.Format(time.RFC3339)
		summary.NewestTimestamp = newest.Format(time.RFC3339)
	}
	return summary
}
