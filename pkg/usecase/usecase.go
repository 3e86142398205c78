package usecase

import (
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model/config"
)

type UseCases struct {
	repo      interfaces.Repository
	pipeline  *config.Pipeline
	segmenter interfaces.Segmenter
	parser    interfaces.DateParser
	embedder  interfaces.Embedder
	generator interfaces.Generator
	notifier  interfaces.Notifier
	exporter  interfaces.Exporter
	now       func() time.Time

	Timeline *TimelineUseCase
}

type Option func(*UseCases)

func WithPipelineConfig(cfg *config.Pipeline) Option {
	return func(uc *UseCases) {
		uc.pipeline = cfg
	}
}

// WithExtraction enables article extraction. All three services are needed.
func WithExtraction(segmenter interfaces.Segmenter, parser interfaces.DateParser, embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.segmenter = segmenter
		uc.parser = parser
		uc.embedder = embedder
	}
}

func WithGenerator(generator interfaces.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = generator
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithExporter(exporter interfaces.Exporter) Option {
	return func(uc *UseCases) {
		uc.exporter = exporter
	}
}

// WithClock replaces the clock used for timeline creation times
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the use cases. repo may be nil, in which case timelines are
// not persisted.
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		pipeline: config.DefaultPipeline(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Timeline = NewTimelineUseCase(uc)

	return uc
}
