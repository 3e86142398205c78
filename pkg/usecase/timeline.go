package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/chronicle/pkg/core/assemble"
	"github.com/secmon-lab/chronicle/pkg/core/cluster"
	"github.com/secmon-lab/chronicle/pkg/core/extract"
	"github.com/secmon-lab/chronicle/pkg/core/resolve"
	"github.com/secmon-lab/chronicle/pkg/core/summarize"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// TimelineUseCase runs the timeline pipeline: extract, cluster, resolve and
// summarize per cluster, then assemble
type TimelineUseCase struct {
	repo       interfaces.Repository
	extractor  *extract.Extractor
	clusterer  *cluster.Clusterer
	resolver   *resolve.Resolver
	summarizer *summarize.Summarizer
	notifier   interfaces.Notifier
	exporter   interfaces.Exporter

	concurrency int
	maxArticles int
	now         func() time.Time
}

// NewTimelineUseCase wires the pipeline stages from the shared use case
// configuration
func NewTimelineUseCase(uc *UseCases) *TimelineUseCase {
	p := uc.pipeline

	x := &TimelineUseCase{
		repo:      uc.repo,
		clusterer: cluster.New(cluster.WithThreshold(p.DistanceThreshold)),
		resolver:  resolve.New(resolve.WithWeights(p.MentionWeight, p.PublishWeight)),
		summarizer: summarize.New(uc.generator,
			summarize.WithTimeout(p.CallTimeout),
			summarize.WithTextCap(p.FallbackTextCap),
			summarize.WithMaxSources(p.MaxSources),
			summarize.WithFallbackConfidence(p.GenerationFailureConfidence, p.ParseFailureConfidence),
		),
		notifier:    uc.notifier,
		exporter:    uc.exporter,
		concurrency: p.Concurrency,
		maxArticles: p.MaxArticles,
		now:         uc.now,
	}

	if x.concurrency < 1 {
		x.concurrency = 1
	}

	if uc.segmenter != nil && uc.parser != nil && uc.embedder != nil {
		extractor, err := extract.New(uc.segmenter, uc.parser, uc.embedder,
			extract.WithMinSentenceLength(p.MinSentenceLength),
			extract.WithKeywords(p.EventKeywords...),
			extract.WithTimeout(p.CallTimeout),
		)
		if err == nil {
			x.extractor = extractor
		}
	}

	return x
}

// Extract turns articles into embedded candidate statements
func (x *TimelineUseCase) Extract(ctx context.Context, articles []*model.Article) ([]*model.Candidate, error) {
	if x.extractor == nil {
		return nil, goerr.Wrap(ErrExtractionNotConfigured, "cannot extract candidates")
	}
	return x.extractor.Extract(ctx, articles)
}

// Cluster groups candidates into milestone clusters
func (x *TimelineUseCase) Cluster(ctx context.Context, candidates []*model.Candidate) ([]*model.Cluster, error) {
	return x.clusterer.Cluster(ctx, candidates)
}

// BuildTimeline clusters candidates and produces a timeline. Per-cluster date
// resolution and summarization run concurrently; a failing cluster degrades
// only its own entry.
func (x *TimelineUseCase) BuildTimeline(ctx context.Context, candidates []*model.Candidate) (*model.Timeline, error) {
	clusters, err := x.Cluster(ctx, candidates)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to cluster candidates", goerr.V("candidates", len(candidates)))
	}

	dates := make([]*model.Date, len(clusters))
	summaries := make([]*model.Summary, len(clusters))

	var eg errgroup.Group
	eg.SetLimit(x.concurrency)
	for i, cl := range clusters {
		eg.Go(func() error {
			dates[i] = x.resolver.Resolve(cl)
			summaries[i] = x.summarizer.Summarize(ctx, cl, dates[i])
			return nil
		})
	}
	_ = eg.Wait()

	timeline, err := assemble.Assemble(clusters, dates, summaries)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to assemble timeline")
	}
	timeline.ID = model.NewTimelineID()
	timeline.CreatedAt = x.now().UTC()

	logging.From(ctx).Info("built timeline",
		"timeline_id", timeline.ID,
		"candidates", len(candidates),
		"entries", len(timeline.Entries),
	)
	return timeline, nil
}

// Run executes the whole pipeline for the articles of one query, stores the
// result and publishes it to the configured exporter and notifier. Export
// and notification failures are logged and do not fail the run.
func (x *TimelineUseCase) Run(ctx context.Context, query string, articles []*model.Article) (*model.Timeline, error) {
	timeline, err := x.Build(ctx, query, articles)
	if err != nil {
		return nil, err
	}

	x.Publish(ctx, timeline)

	return timeline, nil
}

// Build executes the pipeline for the articles of one query and stores the
// result without publishing it
func (x *TimelineUseCase) Build(ctx context.Context, query string, articles []*model.Article) (*model.Timeline, error) {
	if len(articles) == 0 {
		return nil, goerr.Wrap(ErrNoArticles, "cannot build timeline", goerr.V(QueryKey, query))
	}
	if x.maxArticles > 0 && len(articles) > x.maxArticles {
		logging.From(ctx).Info("limiting articles", "given", len(articles), "max", x.maxArticles)
		articles = articles[:x.maxArticles]
	}

	candidates, err := x.Extract(ctx, articles)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract candidates", goerr.V(QueryKey, query))
	}

	timeline, err := x.BuildTimeline(ctx, candidates)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build timeline", goerr.V(QueryKey, query))
	}
	timeline.Query = query

	if x.repo != nil {
		if err := x.repo.Timeline().Put(ctx, timeline); err != nil {
			return nil, goerr.Wrap(err, "failed to save timeline", goerr.V(model.TimelineIDKey, timeline.ID))
		}
	}

	return timeline, nil
}

// Publish sends the timeline to the exporter and the notifier when they are
// configured
func (x *TimelineUseCase) Publish(ctx context.Context, timeline *model.Timeline) {
	if x.exporter != nil {
		location, err := x.exporter.Export(ctx, timeline)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to export timeline")
		} else {
			logging.From(ctx).Info("exported timeline", "timeline_id", timeline.ID, "location", location)
		}
	}

	if x.notifier != nil {
		if err := x.notifier.NotifyTimeline(ctx, timeline); err != nil {
			_ = errutil.Handle(ctx, err, "failed to notify timeline")
		}
	}
}

// Get returns a stored timeline
func (x *TimelineUseCase) Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error) {
	if x.repo == nil {
		return nil, goerr.Wrap(ErrRepositoryNotConfigured, "cannot get timeline")
	}
	return x.repo.Timeline().Get(ctx, id)
}

// Latest returns the most recently created stored timeline
func (x *TimelineUseCase) Latest(ctx context.Context) (*model.Timeline, error) {
	if x.repo == nil {
		return nil, goerr.Wrap(ErrRepositoryNotConfigured, "cannot get latest timeline")
	}
	return x.repo.Timeline().Latest(ctx)
}

// List returns stored timelines, newest first
func (x *TimelineUseCase) List(ctx context.Context, limit int) ([]*model.Timeline, error) {
	if x.repo == nil {
		return nil, goerr.Wrap(ErrRepositoryNotConfigured, "cannot list timelines")
	}
	return x.repo.Timeline().List(ctx, limit)
}
