package openai

import (
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of EmbeddingClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAI embedding clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmbeddingClient creates a new OpenAI embedding client
func (f *Factory) CreateEmbeddingClient() (core.EmbeddingClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	client := openai.NewClient(openaiCfg.APIKey)

	return NewEmbeddingClient(
		client,
		openaiCfg.ModelName,
		openaiCfg.Dimension,
		f.logger,
	), nil
}
