package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdShow() *cli.Command {
	var id string
	var output string
	var list bool
	var limit int
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Timeline ID, the latest timeline if empty",
			Destination: &id,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output format (console, markdown, json or yaml)",
			Value:       formatConsole,
			Destination: &output,
		},
		&cli.BoolFlag{
			Name:        "list",
			Usage:       "List stored timelines instead of showing one",
			Destination: &list,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Number of timelines to list",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show a stored timeline",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := configureReader(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer closer()

			w := c.Root().Writer

			if list {
				timelines, err := uc.Timeline.List(ctx, limit)
				if err != nil {
					return goerr.Wrap(err, "failed to list timelines")
				}
				return writeTimelineList(w, timelines)
			}

			var timeline *model.Timeline
			if id != "" {
				timeline, err = uc.Timeline.Get(ctx, model.TimelineID(id))
			} else {
				timeline, err = uc.Timeline.Latest(ctx)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to load timeline", goerr.V(model.TimelineIDKey, id))
			}

			return writeTimeline(w, timeline, output)
		},
	}
}
