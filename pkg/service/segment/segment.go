package segment

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/markusmobius/go-dateparser"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
)

// Segmenter splits article text into English sentences and finds calendar
// date expressions inside them
type Segmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	languages []string
	now       func() time.Time
}

var _ interfaces.Segmenter = &Segmenter{}

type Option func(*Segmenter)

// WithClock sets the reference time used to anchor relative expressions
func WithClock(now func() time.Time) Option {
	return func(s *Segmenter) {
		s.now = now
	}
}

// WithLanguages restricts date recognition to the given language codes
func WithLanguages(languages ...string) Option {
	return func(s *Segmenter) {
		s.languages = languages
	}
}

func New(opts ...Option) (*Segmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load sentence tokenizer")
	}

	s := &Segmenter{
		tokenizer: tokenizer,
		languages: []string{"en"},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Segment returns the non-empty sentences of text in order
func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "segmentation canceled")
	}

	tokens := s.tokenizer.Tokenize(text)
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		sentence := strings.Join(strings.Fields(token.Text), " ")
		for _, part := range splitAfterNumbers(sentence) {
			if part != "" {
				result = append(result, part)
			}
		}
	}
	return result, nil
}

// splitAfterNumbers splits a whitespace-normalized sentence where a number is
// followed by a period and a capitalized word. The punkt tokenizer treats
// "January 10. Officials" and "2024. Officials" as one sentence.
func splitAfterNumbers(sentence string) []string {
	runes := []rune(sentence)
	var parts []string
	start := 0
	for i := 1; i+2 < len(runes); i++ {
		if runes[i] != '.' || !unicode.IsDigit(runes[i-1]) {
			continue
		}
		if runes[i+1] != ' ' || !unicode.IsUpper(runes[i+2]) {
			continue
		}
		parts = append(parts, string(runes[start:i+1]))
		start = i + 2
	}
	return append(parts, string(runes[start:]))
}

// RecognizeDates returns the substrings of sentence that look like date
// expressions, in order of appearance. Numbers that parse as a bare year or
// time of day are not reported.
func (s *Segmenter) RecognizeDates(ctx context.Context, sentence string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "date recognition canceled")
	}

	cfg := &dateparser.Configuration{
		Languages:           s.languages,
		CurrentTime:         s.now(),
		PreferredDateSource: dateparser.Past,
	}

	_, found, err := dateparser.Search(cfg, sentence)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search date expressions", goerr.V("sentence", sentence))
	}

	result := make([]string, 0, len(found))
	for _, f := range found {
		text := strings.TrimSpace(f.Text)
		if !looksLikeDate(text) {
			continue
		}
		result = append(result, text)
	}
	return result, nil
}

// looksLikeDate rejects bare numbers and clock times that the search
// reports as dates. Anything with a letter or a date separator is kept.
func looksLikeDate(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || r == '-' || r == '/' {
			return true
		}
	}
	return false
}
