package factory

import (
	"fmt"

	"github.com/mailsift/mailsift/internal/adapters/bedrock"
	"github.com/mailsift/mailsift/internal/adapters/gemini"
	"github.com/mailsift/mailsift/internal/adapters/openai"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// EmbeddingFactory creates embedding clients
type EmbeddingFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEmbeddingFactory creates a new embedding factory
func NewEmbeddingFactory(cfg *config.Config, logger *zap.Logger) *EmbeddingFactory {
	return &EmbeddingFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmbeddingClient creates a new embedding client based on the configuration
func (f *EmbeddingFactory) CreateEmbeddingClient() (core.EmbeddingClient, error) {
	embeddingConfig := f.cfg.GetEmbedding()

	switch embeddingConfig.Provider {
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger)
		return factory.CreateEmbeddingClient()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger)
		return factory.CreateEmbeddingClient()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger)
		return factory.CreateEmbeddingClient()
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", embeddingConfig.Provider)
	}
}
