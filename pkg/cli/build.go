package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/export"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdBuild() *cli.Command {
	var input string
	var query string
	var output string
	var pipelineCfg pipelineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Article file (.json, .yaml or .yml)",
			Required:    true,
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Topic of the timeline, overriding the query in the input file",
			Destination: &query,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output format (console, markdown, json or yaml)",
			Value:       formatConsole,
			Destination: &output,
		},
	}
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Build a timeline from an article file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			set, err := readArticles(input)
			if err != nil {
				return err
			}
			if query != "" {
				set.Query = query
			}

			uc, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			logging.Default().Info("Building timeline",
				"query", set.Query,
				"articles", len(set.Articles),
			)

			timeline, err := uc.Timeline.Run(ctx, set.Query, set.Articles)
			if err != nil {
				return goerr.Wrap(err, "failed to build timeline")
			}

			return writeTimeline(c.Root().Writer, timeline, output)
		},
	}
}

// readArticles loads an article file, choosing the decoder by extension
func readArticles(path string) (*export.ArticleSet, error) {
	format, err := export.ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, goerr.Wrap(err, "unsupported input file", goerr.V("path", path))
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}

	set, err := export.UnmarshalArticles(data, format)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode input file", goerr.V("path", path))
	}
	return set, nil
}
