package cli

import (
	"context"
	"time"

	mcpctrl "github.com/secmon-lab/chronicle/pkg/controller/mcp"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMCP() *cli.Command {
	var pipelineCfg pipelineConfig

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve timeline tools over MCP on stdin/stdout",
		Flags: pipelineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			srv := mcpctrl.NewServer(uc.Timeline, c.Root().Version)
			logging.Default().Info("Starting MCP server on stdio")
			runErr := srv.Run(ctx)

			waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := async.Wait(waitCtx); err != nil {
				logging.Default().Warn("background tasks did not finish", "error", err)
			}

			return runErr
		},
	}
}
