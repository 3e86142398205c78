package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// TimelineUseCase is the subset of the timeline use case exposed as MCP tools
type TimelineUseCase interface {
	Build(ctx context.Context, query string, articles []*model.Article) (*model.Timeline, error)
	Publish(ctx context.Context, timeline *model.Timeline)
	Latest(ctx context.Context) (*model.Timeline, error)
}

// Server exposes timeline construction to MCP clients
type Server struct {
	MCPServer  *sdkmcp.Server
	timelineUC TimelineUseCase
}

// NewServer creates the MCP server and registers its tools
func NewServer(timelineUC TimelineUseCase, version string) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "chronicle", Version: version},
			nil,
		),
		timelineUC: timelineUC,
	}

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "build_timeline",
		Description: "Build an event timeline from news articles about one query. Returns the stored timeline.",
	}, s.handleBuildTimeline)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_latest_timeline",
		Description: "Return the most recently built timeline.",
	}, s.handleGetLatestTimeline)

	return s
}

// Run serves the tools over stdin/stdout until ctx is done or the client
// disconnects
func (s *Server) Run(ctx context.Context) error {
	if err := s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server stopped")
	}
	return nil
}

type articleInput struct {
	URL         string `json:"url" jsonschema:"article URL"`
	Title       string `json:"title,omitempty" jsonschema:"article headline"`
	Source      string `json:"source,omitempty" jsonschema:"publisher name"`
	PublishedAt string `json:"published_at,omitempty" jsonschema:"publication time, RFC3339 or YYYY-MM-DD"`
	Content     string `json:"content" jsonschema:"full article text"`
}

type buildTimelineInput struct {
	Query    string         `json:"query" jsonschema:"topic the articles were collected for"`
	Articles []articleInput `json:"articles" jsonschema:"articles to build the timeline from"`
}

type getLatestTimelineInput struct{}

func (s *Server) handleBuildTimeline(ctx context.Context, _ *sdkmcp.CallToolRequest, input buildTimelineInput) (*sdkmcp.CallToolResult, any, error) {
	articles := make([]*model.Article, 0, len(input.Articles))
	for i, a := range input.Articles {
		article, err := toArticle(a)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "invalid article", goerr.V("index", i))
		}
		articles = append(articles, article)
	}

	timeline, err := s.timelineUC.Build(ctx, input.Query, articles)
	if err != nil {
		return nil, nil, err
	}
	logging.From(ctx).Info("timeline built via MCP", "timeline_id", timeline.ID, "entries", len(timeline.Entries))

	async.Dispatch(ctx, "publish_timeline", func(ctx context.Context) error {
		s.timelineUC.Publish(ctx, timeline)
		return nil
	})

	return nil, timeline, nil
}

func (s *Server) handleGetLatestTimeline(ctx context.Context, _ *sdkmcp.CallToolRequest, _ getLatestTimelineInput) (*sdkmcp.CallToolResult, any, error) {
	timeline, err := s.timelineUC.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, timeline, nil
}

func toArticle(in articleInput) (*model.Article, error) {
	article := &model.Article{
		URL:     in.URL,
		Title:   in.Title,
		Source:  in.Source,
		Content: in.Content,
	}

	if v := strings.TrimSpace(in.PublishedAt); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse(model.DateLayout, v)
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrInvalidInput, "published_at is neither RFC3339 nor YYYY-MM-DD",
				goerr.V("published_at", v))
		}
		article.PublishedAt = &t
	}

	return article, nil
}
