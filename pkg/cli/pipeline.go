package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/core/summarize"
	"github.com/secmon-lab/chronicle/pkg/service/dateparse"
	"github.com/secmon-lab/chronicle/pkg/service/generation"
	"github.com/secmon-lab/chronicle/pkg/service/segment"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// pipelineConfig bundles the configuration shared by the commands that run
// the timeline pipeline
type pipelineConfig struct {
	app       config.AppConfig
	repo      config.Repository
	llm       config.LLM
	embedding config.Embedding
	slack     config.Slack
	export    config.Export
}

func (x *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.app.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.llm.Flags()...)
	flags = append(flags, x.embedding.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.export.Flags()...)
	return flags
}

// Configure builds the use cases. The returned function closes the
// repository and must be called by the caller.
func (x *pipelineConfig) Configure(ctx context.Context) (*usecase.UseCases, func(), error) {
	logger := logging.Default()

	pipeline, err := x.app.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load configuration")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() { safe.Close(ctx, repo) }

	opts := []usecase.Option{usecase.WithPipelineConfig(pipeline)}

	llmClient, err := x.llm.Configure(ctx, pipeline.MaxOutputTokens)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure LLM client")
	}
	if llmClient != nil {
		gen, err := generation.New(llmClient,
			generation.WithSystemPrompt(summarize.SystemPrompt),
			generation.WithResponseSchema(generation.SummarySchema()),
			generation.WithMaxOutputTokens(pipeline.MaxOutputTokens),
		)
		if err != nil {
			closer()
			return nil, nil, goerr.Wrap(err, "failed to create generator")
		}
		opts = append(opts, usecase.WithGenerator(gen))
		logger.Info("Summary generation enabled", "llm", x.llm)
	} else {
		logger.Warn("LLM is not configured, timeline entries will use fallback summaries")
	}

	embedder, err := x.embedding.Configure(llmClient)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure embedder")
	}
	if embedder != nil {
		segmenter, err := segment.New()
		if err != nil {
			closer()
			return nil, nil, goerr.Wrap(err, "failed to create segmenter")
		}
		opts = append(opts, usecase.WithExtraction(segmenter, dateparse.New(), embedder))
		logger.Info("Article extraction enabled", "embedding", x.embedding)
	} else {
		logger.Warn("Embedding is not configured, timelines cannot be built from articles")
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure Slack notifier")
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logger.Info("Slack notification enabled", "slack", x.slack)
	}

	exporter, err := x.export.Configure(ctx)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure exporter")
	}
	if exporter != nil {
		opts = append(opts, usecase.WithExporter(exporter))
		logger.Info("Timeline export enabled", "export", x.export)
	}

	return usecase.New(repo, opts...), closer, nil
}

// configureReader builds use cases that only read stored timelines
func configureReader(ctx context.Context, repoCfg *config.Repository) (*usecase.UseCases, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	return usecase.New(repo), func() { safe.Close(ctx, repo) }, nil
}
