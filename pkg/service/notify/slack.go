package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// DefaultTopSources is the number of sources listed in a digest
const DefaultTopSources = 5

// Slack posts a timeline digest to a channel
type Slack struct {
	api        *slack.Client
	apiURL     string
	channelID  string
	topSources int
	linkBase   string
}

var _ interfaces.Notifier = &Slack{}

// Option is a functional option for Slack
type Option func(*Slack)

// WithAPIURL overrides the Slack API endpoint. It must end with a slash.
func WithAPIURL(url string) Option {
	return func(s *Slack) {
		s.apiURL = url
	}
}

// WithTopSources sets how many sources the digest lists
func WithTopSources(n int) Option {
	return func(s *Slack) {
		s.topSources = n
	}
}

// WithLinkBase links the digest to <base>/api/timelines/<id>
func WithLinkBase(base string) Option {
	return func(s *Slack) {
		s.linkBase = base
	}
}

// NewSlack creates a Slack notifier with the provided bot token
func NewSlack(token, channelID string, opts ...Option) (*Slack, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	s := &Slack{
		channelID:  channelID,
		topSources: DefaultTopSources,
	}
	for _, opt := range opts {
		opt(s)
	}

	var apiOpts []slack.Option
	if s.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(s.apiURL))
	}
	s.api = slack.New(token, apiOpts...)
	return s, nil
}

// NotifyTimeline posts the digest of timeline
func (s *Slack) NotifyTimeline(ctx context.Context, timeline *model.Timeline) error {
	blocks, text := BuildDigest(timeline, s.topSources, s.linkBase)

	_, ts, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post timeline digest",
			goerr.V("channel_id", s.channelID),
			goerr.V(model.TimelineIDKey, timeline.ID))
	}

	logging.From(ctx).Info("posted timeline digest",
		"channel_id", s.channelID,
		"ts", ts,
		"timeline_id", timeline.ID,
	)
	return nil
}
