package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// EmbeddingClient is an implementation of the EmbeddingClient port using
// Amazon Titan text embeddings on Bedrock.
type EmbeddingClient struct {
	client    *bedrockruntime.Client
	modelID   string
	dimension int
	logger    *zap.Logger
}

// titanEmbeddingRequest is the Titan text embedding request body
type titanEmbeddingRequest struct {
	InputText string `json:"inputText"`
}

// titanEmbeddingResponse is the Titan text embedding response body
type titanEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingClient creates a new Bedrock embedding client
func NewEmbeddingClient(
	client *bedrockruntime.Client,
	modelID string,
	dimension int,
	logger *zap.Logger,
) *EmbeddingClient {
	return &EmbeddingClient{
		client:    client,
		modelID:   modelID,
		dimension: dimension,
		logger:    logger,
	}
}

// ModelID identifies the model version backing the vectors
func (c *EmbeddingClient) ModelID() string {
	return c.modelID
}

// Dimension is the constant vector length for this model
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// Embed maps normalized text to a fixed-dimension vector
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(titanEmbeddingRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var resp titanEmbeddingResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse Bedrock response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from Bedrock")
	}

	return resp.Embedding, nil
}

// EmbedBatch maps texts to vectors. Titan has no batch endpoint, so items
// are invoked one by one; a failed item yields a nil vector slot rather
// than failing the whole batch.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector, err := c.Embed(ctx, text)
		if err != nil {
			c.logger.Warn("Bedrock embedding failed for batch item",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		vectors[i] = vector
	}
	return vectors, nil
}
