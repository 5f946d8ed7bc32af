package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EmbeddingClient is an implementation of the EmbeddingClient port using
// the OpenAI embeddings API.
type EmbeddingClient struct {
	client    *openai.Client
	modelName string
	dimension int
	logger    *zap.Logger
}

// NewEmbeddingClient creates a new OpenAI embedding client
func NewEmbeddingClient(
	client *openai.Client,
	modelName string,
	dimension int,
	logger *zap.Logger,
) *EmbeddingClient {
	return &EmbeddingClient{
		client:    client,
		modelName: modelName,
		dimension: dimension,
		logger:    logger,
	}
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
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, fmt.Errorf("empty embedding response from OpenAI")
	}
	return vectors[0], nil
}

// EmbedBatch maps a slice of texts to vectors in a single API call
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.modelName),
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings with OpenAI: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, received %d", len(texts), len(resp.Data))
	}

	// The API may return items out of order; Index restores it.
	vectors := make([][]float64, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			continue
		}
		vector := make([]float64, len(item.Embedding))
		for i, v := range item.Embedding {
			vector[i] = float64(v)
		}
		vectors[item.Index] = vector
	}

	c.logger.Debug("Generated embeddings",
		zap.Int("count", len(texts)),
		zap.String("model", c.modelName))

	return vectors, nil
}
