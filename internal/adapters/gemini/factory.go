package gemini

import (
	"github.com/mailsift/mailsift/internal/config"
	"go.uber.org/zap"
)

// Factory creates Gemini embedding clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmbeddingClient creates a new Gemini embedding client
func (f *Factory) CreateEmbeddingClient() (*EmbeddingClient, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewEmbeddingClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.Dimension,
		f.logger,
	)
}
