package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/aggregate"
	"github.com/mailsift/mailsift/internal/analysis"
	"github.com/mailsift/mailsift/internal/batch"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/embedding"
	"github.com/mailsift/mailsift/internal/factory"
	"github.com/mailsift/mailsift/internal/logging"
	"github.com/mailsift/mailsift/internal/normalize"
	"github.com/mailsift/mailsift/internal/score"
	"github.com/mailsift/mailsift/internal/suggest"
	"github.com/mailsift/mailsift/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	return registerPipeline(container)
}

// registerPipeline wires everything downstream of config and logger.
// Shared between the server-style and CLI containers.
func registerPipeline(container *dig.Container) (*dig.Container, error) {
	// Register factories
	if err := container.Provide(factory.NewEmbeddingFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewDetectorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register embedding client
	if err := container.Provide(func(f *factory.EmbeddingFactory) (core.EmbeddingClient, error) {
		return f.CreateEmbeddingClient()
	}); err != nil {
		return nil, err
	}

	// Register cache store
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheStore, error) {
		return f.CreateCacheStore()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register normalizer
	if err := container.Provide(func(tp *utils.TextProcessor, cfg *config.Config, logger *zap.Logger) *normalize.Normalizer {
		return normalize.NewNormalizer(tp, cfg.GetInt("normalize.max_chars"), logger)
	}); err != nil {
		return nil, err
	}

	// Register embedding service
	if err := container.Provide(embedding.NewService); err != nil {
		return nil, err
	}

	// Register batch processor
	if err := container.Provide(func(embedder *embedding.Service, cfg *config.Config, logger *zap.Logger) (*batch.Processor, error) {
		batchCfg, err := cfg.GetBatch()
		if err != nil {
			return nil, err
		}
		return batch.NewProcessor(embedder, batchCfg.Size, batchCfg.MaxItems, batchCfg.MaxDuration, logger)
	}); err != nil {
		return nil, err
	}

	// Register detectors
	if err := container.Provide(func(f *factory.DetectorFactory) []core.PatternDetector {
		return f.CreateDetectors()
	}); err != nil {
		return nil, err
	}

	// Register scorer
	if err := container.Provide(func(cfg *config.Config) *score.Scorer {
		return score.NewScorer(cfg.GetAnalysis().MinPatternSize)
	}); err != nil {
		return nil, err
	}

	// Register aggregator
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *aggregate.Aggregator {
		analysisCfg := cfg.GetAnalysis()
		return aggregate.NewAggregator(analysisCfg.MinConfidence, analysisCfg.MaxPatterns, logger)
	}); err != nil {
		return nil, err
	}

	// Register suggestion generator
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *suggest.Generator {
		roiCfg := cfg.GetROI()
		return suggest.NewGenerator(roiCfg.HourlyRate, roiCfg.SecondsPerEmail, logger)
	}); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(func(
		processor *batch.Processor,
		detectors []core.PatternDetector,
		scorer *score.Scorer,
		aggregator *aggregate.Aggregator,
		generator *suggest.Generator,
		client core.EmbeddingClient,
		cfg *config.Config,
		logger *zap.Logger,
	) *analysis.Service {
		return analysis.NewService(
			processor,
			detectors,
			scorer,
			aggregator,
			generator,
			client.ModelID(),
			cfg.GetAnalysis().MinPatternSize,
			logger,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
