package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Embedding backend names
const (
	EmbeddingGollem = "gollem"
	EmbeddingJina   = "jina"
	EmbeddingOllama = "ollama"
)

// Embedding holds CLI flags for the sentence embedding service
type Embedding struct {
	backend        string
	dimension      int
	jinaAPIKey     string
	jinaModel      string
	ollamaEndpoint string
	ollamaModel    string
}

// Flags returns CLI flags for embedding configuration
func (x *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-backend",
			Usage:       "Embedding backend (gollem, jina or ollama)",
			Category:    "Embedding",
			Value:       EmbeddingGollem,
			Sources:     cli.EnvVars("CHRONICLE_EMBEDDING_BACKEND"),
			Destination: &x.backend,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding dimension for the gollem backend",
			Category:    "Embedding",
			Value:       embedding.DefaultDimension,
			Sources:     cli.EnvVars("CHRONICLE_EMBEDDING_DIMENSION"),
			Destination: &x.dimension,
		},
		&cli.StringFlag{
			Name:        "jina-api-key",
			Usage:       "Jina AI API key",
			Category:    "Embedding",
			Sources:     cli.EnvVars("CHRONICLE_JINA_API_KEY"),
			Destination: &x.jinaAPIKey,
		},
		&cli.StringFlag{
			Name:        "jina-model",
			Usage:       "Jina embedding model",
			Category:    "Embedding",
			Value:       embedding.JinaDefaultModel,
			Sources:     cli.EnvVars("CHRONICLE_JINA_MODEL"),
			Destination: &x.jinaModel,
		},
		&cli.StringFlag{
			Name:        "ollama-endpoint",
			Usage:       "Ollama server URL",
			Category:    "Embedding",
			Value:       embedding.OllamaDefaultEndpoint,
			Sources:     cli.EnvVars("CHRONICLE_OLLAMA_ENDPOINT"),
			Destination: &x.ollamaEndpoint,
		},
		&cli.StringFlag{
			Name:        "ollama-model",
			Usage:       "Ollama embedding model",
			Category:    "Embedding",
			Value:       embedding.OllamaDefaultModel,
			Sources:     cli.EnvVars("CHRONICLE_OLLAMA_MODEL"),
			Destination: &x.ollamaModel,
		},
	}
}

func (x Embedding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.Int("dimension", x.dimension),
		slog.Int("jina_api_key.len", len(x.jinaAPIKey)),
		slog.String("ollama_endpoint", x.ollamaEndpoint),
	)
}

// Configure creates the embedder. llmClient backs the gollem backend and may
// be nil. Returns nil when the selected backend has no credentials.
func (x *Embedding) Configure(llmClient gollem.LLMClient) (interfaces.Embedder, error) {
	switch x.backend {
	case EmbeddingGollem:
		if llmClient == nil {
			return nil, nil
		}
		e, err := embedding.NewGollem(llmClient, embedding.WithDimension(x.dimension))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gollem embedder")
		}
		return e, nil

	case EmbeddingJina:
		if x.jinaAPIKey == "" {
			return nil, nil
		}
		var opts []embedding.JinaOption
		if x.jinaModel != "" {
			opts = append(opts, embedding.WithJinaModel(x.jinaModel))
		}
		e, err := embedding.NewJina(x.jinaAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Jina embedder")
		}
		return e, nil

	case EmbeddingOllama:
		return embedding.NewOllama(x.ollamaEndpoint, x.ollamaModel), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid embedding backend", goerr.V(BackendKey, x.backend))
	}
}
