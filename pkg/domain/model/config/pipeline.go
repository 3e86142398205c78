package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Default tuning values. They are empirically chosen for sentence embedding
// models of a few hundred dimensions and are expected to be tuned per model.
const (
	DefaultDistanceThreshold           = 1.05
	DefaultMentionWeight               = 1.5
	DefaultPublishWeight               = 1.0
	DefaultGenerationFailureConfidence = 0.4
	DefaultParseFailureConfidence      = 0.5
	DefaultFallbackTextCap             = 240
	DefaultMaxSources                  = 3
	DefaultMinSentenceLength           = 20
	DefaultConcurrency                 = 4
	DefaultCallTimeout                 = 30 * time.Second
	DefaultMaxArticles                 = 12
	DefaultMaxOutputTokens             = 400
)

// DefaultEventKeywords flag a sentence as an event candidate by
// case-insensitive substring match
var DefaultEventKeywords = []string{
	"launch",
	"announce",
	"launched",
	"land",
	"landed",
	"release",
	"rolled out",
	"reported",
	"confirmed",
	"said",
	"claimed",
}

// Pipeline holds every tunable of the timeline pipeline
type Pipeline struct {
	DistanceThreshold           float64
	MentionWeight               float64
	PublishWeight               float64
	GenerationFailureConfidence float64
	ParseFailureConfidence      float64
	FallbackTextCap             int
	MaxSources                  int
	MinSentenceLength           int
	EventKeywords               []string
	Concurrency                 int
	CallTimeout                 time.Duration
	MaxArticles                 int
	MaxOutputTokens             int
}

// DefaultPipeline returns the default tuning
func DefaultPipeline() *Pipeline {
	keywords := make([]string, len(DefaultEventKeywords))
	copy(keywords, DefaultEventKeywords)

	return &Pipeline{
		DistanceThreshold:           DefaultDistanceThreshold,
		MentionWeight:               DefaultMentionWeight,
		PublishWeight:               DefaultPublishWeight,
		GenerationFailureConfidence: DefaultGenerationFailureConfidence,
		ParseFailureConfidence:      DefaultParseFailureConfidence,
		FallbackTextCap:             DefaultFallbackTextCap,
		MaxSources:                  DefaultMaxSources,
		MinSentenceLength:           DefaultMinSentenceLength,
		EventKeywords:               keywords,
		Concurrency:                 DefaultConcurrency,
		CallTimeout:                 DefaultCallTimeout,
		MaxArticles:                 DefaultMaxArticles,
		MaxOutputTokens:             DefaultMaxOutputTokens,
	}
}

// Validate checks ranges of all values
func (p *Pipeline) Validate() error {
	if p.DistanceThreshold <= 0 {
		return goerr.New("distance threshold must be positive", goerr.V("threshold", p.DistanceThreshold))
	}
	if p.MentionWeight <= 0 || p.PublishWeight <= 0 {
		return goerr.New("date signal weights must be positive",
			goerr.V("mention_weight", p.MentionWeight),
			goerr.V("publish_weight", p.PublishWeight))
	}
	for name, v := range map[string]float64{
		"generation_failure_confidence": p.GenerationFailureConfidence,
		"parse_failure_confidence":      p.ParseFailureConfidence,
	} {
		if v < 0 || v > 1 {
			return goerr.New("confidence must be between 0 and 1", goerr.V("name", name), goerr.V("value", v))
		}
	}
	if p.FallbackTextCap < 1 {
		return goerr.New("fallback text cap must be positive", goerr.V("cap", p.FallbackTextCap))
	}
	if p.MaxSources < 1 {
		return goerr.New("max sources must be positive", goerr.V("max_sources", p.MaxSources))
	}
	if p.MinSentenceLength < 0 {
		return goerr.New("min sentence length must not be negative", goerr.V("min_sentence_length", p.MinSentenceLength))
	}
	if p.Concurrency < 1 {
		return goerr.New("concurrency must be positive", goerr.V("concurrency", p.Concurrency))
	}
	if p.CallTimeout <= 0 {
		return goerr.New("call timeout must be positive", goerr.V("call_timeout", p.CallTimeout))
	}
	if p.MaxArticles < 0 {
		return goerr.New("max articles must not be negative", goerr.V("max_articles", p.MaxArticles))
	}
	if p.MaxOutputTokens < 1 {
		return goerr.New("max output tokens must be positive", goerr.V("max_output_tokens", p.MaxOutputTokens))
	}
	return nil
}
