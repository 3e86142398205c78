package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if appCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingOption, "--config is required", goerr.V(config.OptionKey, "config"))
			}

			pipeline, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logging.Default().Info("Configuration validation passed",
				"path", appCfg.Path(),
				"distance_threshold", pipeline.DistanceThreshold,
				"event_keywords", len(pipeline.EventKeywords),
				"concurrency", pipeline.Concurrency,
				"call_timeout", pipeline.CallTimeout,
			)
			return nil
		},
	}
}
