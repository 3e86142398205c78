package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLM holds configuration for the LLM client used for generation and,
// optionally, embedding
type LLM struct {
	provider     string
	model        string
	geminiProjID string
	geminiLoc    string
	openaiAPIKey string
	openaiURL    string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (gemini or openai)",
			Category:    "LLM",
			Value:       ProviderGemini,
			Sources:     cli.EnvVars("CHRONICLE_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name, provider default if empty",
			Category:    "LLM",
			Sources:     cli.EnvVars("CHRONICLE_LLM_MODEL"),
			Destination: &x.model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("CHRONICLE_GEMINI_PROJECT"),
			Destination: &x.geminiProjID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("CHRONICLE_GEMINI_LOCATION"),
			Destination: &x.geminiLoc,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("CHRONICLE_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Usage:       "Base URL of an OpenAI compatible API, official endpoint if empty",
			Category:    "LLM",
			Sources:     cli.EnvVars("CHRONICLE_OPENAI_BASE_URL"),
			Destination: &x.openaiURL,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.String("model", x.model),
		slog.String("gemini_project", x.geminiProjID),
		slog.String("gemini_location", x.geminiLoc),
		slog.Int("openai_api_key.len", len(x.openaiAPIKey)),
		slog.String("openai_base_url", x.openaiURL),
	)
}

// Configure creates the LLM client from the configured flags. Replies are
// capped at maxOutputTokens on the provider side. Returns nil if the selected
// provider has no credentials; generation then falls back to local summaries.
func (x *LLM) Configure(ctx context.Context, maxOutputTokens int) (gollem.LLMClient, error) {
	switch x.provider {
	case ProviderGemini:
		if x.geminiProjID == "" {
			return nil, nil
		}
		opts := []gemini.Option{gemini.WithTemperature(0)}
		if maxOutputTokens > 0 {
			opts = append(opts, gemini.WithMaxTokens(int32(maxOutputTokens)))
		}
		if x.model != "" {
			opts = append(opts, gemini.WithModel(x.model))
		}
		client, err := gemini.New(ctx, x.geminiProjID, x.geminiLoc, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return nil, nil
		}
		opts := []openai.Option{openai.WithTemperature(0)}
		if maxOutputTokens > 0 {
			opts = append(opts, openai.WithMaxTokens(maxOutputTokens))
		}
		if x.openaiURL != "" {
			opts = append(opts, openai.WithBaseURL(x.openaiURL))
		}
		if x.model != "" {
			opts = append(opts, openai.WithModel(x.model))
		}
		client, err := openai.New(ctx, x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid LLM provider", goerr.V(BackendKey, x.provider))
	}
}
