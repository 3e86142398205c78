package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/model/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// Extractor turns articles into embedded candidate statements
type Extractor struct {
	segmenter interfaces.Segmenter
	parser    interfaces.DateParser
	embedder  interfaces.Embedder

	minLength int
	keywords  []string
	timeout   time.Duration
}

// Option is a functional option for Extractor
type Option func(*Extractor)

// WithMinSentenceLength sets the length a sentence must exceed to be kept
func WithMinSentenceLength(n int) Option {
	return func(x *Extractor) {
		x.minLength = n
	}
}

// WithKeywords replaces the event keyword set
func WithKeywords(keywords ...string) Option {
	return func(x *Extractor) {
		x.keywords = normalizeKeywords(keywords)
	}
}

// WithTimeout bounds the embedding call
func WithTimeout(d time.Duration) Option {
	return func(x *Extractor) {
		x.timeout = d
	}
}

// New creates an Extractor. All services are required.
func New(segmenter interfaces.Segmenter, parser interfaces.DateParser, embedder interfaces.Embedder, opts ...Option) (*Extractor, error) {
	if segmenter == nil {
		return nil, goerr.New("segmenter is required")
	}
	if parser == nil {
		return nil, goerr.New("date parser is required")
	}
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}

	x := &Extractor{
		segmenter: segmenter,
		parser:    parser,
		embedder:  embedder,
		minLength: config.DefaultMinSentenceLength,
		keywords:  normalizeKeywords(config.DefaultEventKeywords),
		timeout:   config.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Extract splits every article into sentences and keeps those that mention an
// event keyword or a resolvable date. Candidates whose embedding could not be
// computed are dropped. Any service failure fails the whole batch with an
// error wrapping model.ErrDependencyUnavailable.
func (x *Extractor) Extract(ctx context.Context, articles []*model.Article) ([]*model.Candidate, error) {
	logger := logging.From(ctx)

	var candidates []*model.Candidate
	for _, article := range articles {
		if article == nil {
			continue
		}

		found, err := x.extractArticle(ctx, article)
		if err != nil {
			return nil, err
		}
		logger.Debug("extracted candidates from article", "url", article.URL, "candidates", len(found))
		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 {
		return []*model.Candidate{}, nil
	}

	embedded, err := x.embed(ctx, candidates)
	if err != nil {
		return nil, err
	}

	logger.Info("extracted candidates",
		"articles", len(articles),
		"candidates", len(candidates),
		"embedded", len(embedded),
	)
	return embedded, nil
}

func (x *Extractor) extractArticle(ctx context.Context, article *model.Article) ([]*model.Candidate, error) {
	body := article.Body()
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	sentences, err := x.segmenter.Segment(ctx, body)
	if err != nil {
		return nil, unavailable(err, "failed to segment article", goerr.V("url", article.URL))
	}

	var candidates []*model.Candidate
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len([]rune(sentence)) <= x.minLength {
			continue
		}

		date, err := x.resolveDate(ctx, sentence)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve date", goerr.V("url", article.URL))
		}

		if date == nil && !x.hasKeyword(sentence) {
			continue
		}

		candidates = append(candidates, &model.Candidate{
			SourceURL:         article.URL,
			SourceTitle:       article.Title,
			SourceName:        article.Source,
			SourcePublishedAt: article.PublishedAt,
			Text:              sentence,
			MentionedDate:     date,
		})
	}
	return candidates, nil
}

// resolveDate tries the recognized date entities with strict parsing first,
// then the whole sentence with loose parsing that prefers past dates. A nil
// date with nil error means no date could be resolved.
func (x *Extractor) resolveDate(ctx context.Context, sentence string) (*model.Date, error) {
	entities, err := x.segmenter.RecognizeDates(ctx, sentence)
	if err != nil {
		return nil, unavailable(err, "failed to recognize date entities", goerr.V("sentence", sentence))
	}

	for _, entity := range entities {
		if d, err := x.parser.Parse(entity, false); err == nil && d != nil {
			return d, nil
		}
	}

	d, err := x.parser.Parse(sentence, true)
	if err != nil {
		return nil, nil
	}
	return d, nil
}

func (x *Extractor) hasKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range x.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// embed attaches embeddings to candidates and drops those without a usable
// vector. The dimension of the first usable vector is the run's dimension.
func (x *Extractor) embed(ctx context.Context, candidates []*model.Candidate) ([]*model.Candidate, error) {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	vectors, err := x.embedder.Embed(embedCtx, texts)
	if err != nil {
		return nil, unavailable(err, "failed to embed candidates", goerr.V("count", len(texts)))
	}

	dim := 0
	result := make([]*model.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) != dim {
			logging.From(ctx).Warn("dropping candidate with mismatched embedding dimension",
				"expected", dim, "actual", len(vectors[i]), "text", c.Text)
			continue
		}
		c.Embedding = vectors[i]
		result = append(result, c)
	}

	if dropped := len(candidates) - len(result); dropped > 0 {
		logging.From(ctx).Warn("candidates without embedding were dropped", "dropped", dropped)
	}
	return result, nil
}

func unavailable(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", model.ErrDependencyUnavailable, err), msg, opts...)
}

func normalizeKeywords(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			result = append(result, kw)
		}
	}
	return result
}
