package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/model/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// Summarizer turns a cluster into a Milestone Summary through a Generator.
// It never fails: generation and parse errors produce local fallback records.
type Summarizer struct {
	generator interfaces.Generator

	timeout                     time.Duration
	textCap                     int
	maxSources                  int
	generationFailureConfidence float64
	parseFailureConfidence      float64
}

// Option is a functional option for Summarizer
type Option func(*Summarizer)

// WithTimeout bounds each generation call
func WithTimeout(d time.Duration) Option {
	return func(s *Summarizer) {
		s.timeout = d
	}
}

// WithTextCap sets the character cap of fallback milestone text
func WithTextCap(n int) Option {
	return func(s *Summarizer) {
		s.textCap = n
	}
}

// WithMaxSources sets the maximum number of sources in a summary
func WithMaxSources(n int) Option {
	return func(s *Summarizer) {
		s.maxSources = n
	}
}

// WithFallbackConfidence sets the confidence of records built after a
// generation failure and after a parse failure
func WithFallbackConfidence(generationFailure, parseFailure float64) Option {
	return func(s *Summarizer) {
		s.generationFailureConfidence = generationFailure
		s.parseFailureConfidence = parseFailure
	}
}

// New creates a Summarizer. With a nil generator every cluster gets the
// generation failure fallback.
func New(generator interfaces.Generator, opts ...Option) *Summarizer {
	s := &Summarizer{
		generator:                   generator,
		timeout:                     config.DefaultCallTimeout,
		textCap:                     config.DefaultFallbackTextCap,
		maxSources:                  config.DefaultMaxSources,
		generationFailureConfidence: config.DefaultGenerationFailureConfidence,
		parseFailureConfidence:      config.DefaultParseFailureConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize builds the summary of cluster. canonical is the resolved date of
// the cluster and may be nil.
func (s *Summarizer) Summarize(ctx context.Context, cluster *model.Cluster, canonical *model.Date) *model.Summary {
	logger := logging.From(ctx).With("cluster", cluster.Index)

	prompt := BuildPrompt(cluster, canonical)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed, using fallback summary", "error", err)
		return s.generationFallback(cluster, canonical, err)
	}

	summary, err := ParseResponse(text, s.maxSources)
	if err != nil {
		logger.Warn("failed to parse generated summary, using fallback summary", "error", err)
		return s.parseFallback(cluster, canonical)
	}

	logger.Debug("summarized cluster",
		"confidence", summary.Confidence,
		"contradiction", summary.HasContradiction(),
	)
	return summary
}

// generate calls the generator under the per-call timeout. Every returned
// error wraps model.ErrGenerationFailure.
func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: generator is not configured", model.ErrGenerationFailure)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrGenerationFailure, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrGenerationFailure, err)
	}
	return text, nil
}

func (s *Summarizer) generationFallback(cluster *model.Cluster, canonical *model.Date, cause error) *model.Summary {
	return &model.Summary{
		Date:       canonical,
		Milestone:  firstText(cluster, s.textCap),
		Confidence: s.generationFailureConfidence,
		Sources:    cluster.Sources(s.maxSources),
		Notes:      cause.Error(),
	}
}

func (s *Summarizer) parseFallback(cluster *model.Cluster, canonical *model.Date) *model.Summary {
	return &model.Summary{
		Date:       canonical,
		Milestone:  firstText(cluster, s.textCap),
		Confidence: s.parseFailureConfidence,
		Sources:    []string{},
		Notes:      "",
	}
}

func firstText(cluster *model.Cluster, limit int) string {
	if len(cluster.Members) == 0 {
		return ""
	}
	return Truncate(cluster.Members[0].Text, limit)
}

// Truncate cuts s to at most limit characters
func Truncate(s string, limit int) string {
	if limit < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
