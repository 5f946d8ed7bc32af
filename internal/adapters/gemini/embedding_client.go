package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// EmbeddingClient is an implementation of the EmbeddingClient port using
// Google Gemini text embeddings.
type EmbeddingClient struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	modelName string
	dimension int
	logger    *zap.Logger
}

// NewEmbeddingClient creates a new Gemini embedding client
func NewEmbeddingClient(
	apiKey string,
	modelName string,
	dimension int,
	logger *zap.Logger,
) (*EmbeddingClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &EmbeddingClient{
		client:    client,
		model:     client.EmbeddingModel(modelName),
		modelName: modelName,
		dimension: dimension,
		logger:    logger,
	}, nil
}

// ModelID identifies the model version backing the vectors
func (c *EmbeddingClient) ModelID() string {
	return c.modelName
}

// Dimension is the constant vector length for this model
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// Embed maps normalized text to a fixed-dimension vector
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	res, err := c.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content with Gemini: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini")
	}

	vector := make([]float64, len(res.Embedding.Values))
	for i, v := range res.Embedding.Values {
		vector[i] = float64(v)
	}
	return vector, nil
}

// EmbedBatch maps a slice of texts to vectors in a single API call
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := c.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := c.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to batch embed with Gemini: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, received %d", len(texts), len(res.Embeddings))
	}

	vectors := make([][]float64, len(texts))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			c.logger.Warn("Gemini returned empty embedding for batch item", zap.Int("index", i))
			continue
		}
		vector := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vector[j] = float64(v)
		}
		vectors[i] = vector
	}

	return vectors, nil
}

// Close releases the underlying API client
func (c *EmbeddingClient) Close() error {
	return c.client.Close()
}
