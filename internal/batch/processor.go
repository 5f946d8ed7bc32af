// Package batch streams the record set through feature extraction and
// embedding generation in bounded chunks, so large mailboxes never force
// the whole snapshot through the model at once.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/embedding"
	"github.com/mailsift/mailsift/internal/features"
	"go.uber.org/zap"
)

// Processor chunks records through the embedding and feature stages.
type Processor struct {
	embedder    *embedding.Service
	chunkSize   int
	maxItems    int
	maxDuration time.Duration
	logger      *zap.Logger
}

// Output carries everything the detector stage needs.
type Output struct {
	Result     *core.BatchProcessingResult
	Features   map[string]core.EmailFeatures
	Embeddings map[string]*core.EmailEmbedding
}

// NewProcessor creates a batch processor. chunkSize must be positive;
// maxItems and maxDuration of zero mean unlimited.
func NewProcessor(embedder *embedding.Service, chunkSize, maxItems int, maxDuration time.Duration, logger *zap.Logger) (*Processor, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("invalid batch size %d: must be positive", chunkSize)
	}
	return &Processor{
		embedder:    embedder,
		chunkSize:   chunkSize,
		maxItems:    maxItems,
		maxDuration: maxDuration,
		logger:      logger,
	}, nil
}

// Process streams records in fixed-size chunks. Per-item failures are
// recorded without aborting the run. The cancellation and cutoff
// conditions are checked between chunks only; a cutoff returns the
// partial result accumulated so far with the remainder counted as
// skipped.
func (p *Processor) Process(ctx context.Context, records []core.EmailRecord) (*Output, error) {
	started := time.Now()
	result := &core.BatchProcessingResult{
		TotalItems: len(records),
		StartedAt:  started,
	}
	out := &Output{
		Result:     result,
		Features:   make(map[string]core.EmailFeatures, len(records)),
		Embeddings: make(map[string]*core.EmailEmbedding, len(records)),
	}

	processed := 0
	for offset := 0; offset < len(records); offset += p.chunkSize {
		if cut := p.cutoff(ctx, started, processed); cut != "" {
			result.SkippedItems = len(records) - processed
			p.logger.Info("Batch run cut off",
				zap.String("reason", cut),
				zap.Int("processed", processed),
				zap.Int("skipped", result.SkippedItems))
			break
		}

		end := offset + p.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[offset:end]

		failedInChunk := make(map[string]bool)

		embeddings, failures := p.embedder.EmbedBatch(ctx, chunk)
		result.Errors = append(result.Errors, failures...)
		for _, f := range failures {
			failedInChunk[f.EmailID] = true
		}

		for i, record := range chunk {
			out.Features[record.ID] = features.Extract(record)
			if embeddings[i] != nil {
				out.Embeddings[record.ID] = embeddings[i]
			}
			if failedInChunk[record.ID] {
				result.FailedItems++
			} else {
				result.ProcessedSuccessfully++
			}
		}
		processed += len(chunk)

		elapsed := time.Since(started).Seconds()
		rate := 0.0
		if elapsed > 0 {
			rate = float64(processed) / elapsed
		}
		p.logger.Debug("Processed chunk",
			zap.Int("chunk_start", offset),
			zap.Int("chunk_size", len(chunk)),
			zap.Int("processed", processed),
			zap.Int("total", len(records)),
			zap.Float64("items_per_second", rate))
	}

	result.Finalize(time.Now())
	return out, nil
}

// cutoff returns a non-empty reason when the run should stop before the
// next chunk.
func (p *Processor) cutoff(ctx context.Context, started time.Time, processed int) string {
	select {
	case <-ctx.Done():
		return "context cancelled"
	default:
	}
	if p.maxItems > 0 && processed >= p.maxItems {
		return "max items reached"
	}
	if p.maxDuration > 0 && time.Since(started) >= p.maxDuration {
		return "max duration reached"
	}
	return ""
}
