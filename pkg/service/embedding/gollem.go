package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
)

// DefaultDimension is the embedding size requested from LLM providers
const DefaultDimension = 256

// Gollem computes embeddings through a gollem LLM client
type Gollem struct {
	llmClient gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Gollem{}

type GollemOption func(*Gollem)

func WithDimension(dimension int) GollemOption {
	return func(g *Gollem) {
		g.dimension = dimension
	}
}

func NewGollem(llmClient gollem.LLMClient, opts ...GollemOption) (*Gollem, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Gollem{
		llmClient: llmClient,
		dimension: DefaultDimension,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.dimension < 1 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", g.dimension))
	}
	return g, nil
}

func (g *Gollem) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := g.llmClient.GenerateEmbedding(ctx, g.dimension, sanitizeAll(texts))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding", goerr.V("count", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(embeddings)))
	}

	// Convert float64 to float32
	result := make([][]float32, len(embeddings))
	for i, vec := range embeddings {
		result[i] = make([]float32, len(vec))
		for j, v := range vec {
			result[i][j] = float32(v)
		}
	}
	return result, nil
}
