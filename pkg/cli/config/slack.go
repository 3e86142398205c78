package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken   string
	channelID  string
	linkBase   string
	topSources int
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for timeline digests",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("CHRONICLE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID to post timeline digests to",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("CHRONICLE_SLACK_CHANNEL_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-link-base",
			Usage:       "Base URL of the HTTP API linked from digests (e.g., https://your-domain.com)",
			Category:    "Slack",
			Destination: &x.linkBase,
			Sources:     cli.EnvVars("CHRONICLE_SLACK_LINK_BASE"),
		},
		&cli.IntFlag{
			Name:        "slack-top-sources",
			Usage:       "Number of top sources listed in a digest",
			Category:    "Slack",
			Value:       notify.DefaultTopSources,
			Destination: &x.topSources,
			Sources:     cli.EnvVars("CHRONICLE_SLACK_TOP_SOURCES"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// IsConfigured checks if Slack notification is enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the Slack notifier. Returns nil if no bot token is set.
func (x *Slack) Configure() (*notify.Slack, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingOption, "slack-channel-id is required when slack-bot-token is set",
			goerr.V(OptionKey, "slack-channel-id"))
	}

	opts := []notify.Option{notify.WithTopSources(x.topSources)}
	if x.linkBase != "" {
		opts = append(opts, notify.WithLinkBase(x.linkBase))
	}

	n, err := notify.NewSlack(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack notifier")
	}
	return n, nil
}
