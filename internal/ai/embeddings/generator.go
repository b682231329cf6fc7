package embeddings

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel     = "text-embedding-3-small"
	DefaultDimension = 1536
)

// EmbeddingsGenerator creates embedding vectors for job and résumé text
type EmbeddingsGenerator struct {
	client *openai.Client
	model  string
}

// NewEmbeddingsGenerator creates a new embeddings generator. An empty model selects
// text-embedding-3-small.
func NewEmbeddingsGenerator(apiKey, model string, opts ...option.RequestOption) *EmbeddingsGenerator {
	client := openai.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	if model == "" {
		model = DefaultModel
	}

	return &EmbeddingsGenerator{
		client: &client,
		model:  model,
	}
}

// GenerateEmbedding creates an embedding vector for text
func (g *EmbeddingsGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Send as array with single element (works consistently)
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(g.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

func toFloat32(embedding64 []float64) []float32 {
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32
}
