package services

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient computes dense vectors through an OpenAI-compatible
// /v1/embeddings endpoint (all-MiniLM served locally, 384 dimensions).
type EmbeddingsClient struct {
	client     *openai.Client
	model      string
	dimensions int
}

func NewEmbeddingsClient(baseURL, apiKey, model string, dimensions int) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &EmbeddingsClient{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}
}

// Embed returns the embedding vector for a single text.
func (e *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings (%s): %w", e.model, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings (%s): empty response", e.model)
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dimensions {
		log.Printf("[Embeddings] %s returned %d dims, expected %d", e.model, len(vec), e.dimensions)
	}
	return vec, nil
}

// Dimensions reports the configured vector length.
func (e *EmbeddingsClient) Dimensions() int {
	return e.dimensions
}
