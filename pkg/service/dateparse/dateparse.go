package dateparse

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/markusmobius/go-dateparser"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// Parser resolves calendar dates with go-dateparser
type Parser struct {
	languages []string
	now       func() time.Time
}

var _ interfaces.DateParser = &Parser{}

type Option func(*Parser)

// WithClock sets the reference time for relative and partial expressions
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithLanguages restricts parsing to the given language codes
func WithLanguages(languages ...string) Option {
	return func(p *Parser) {
		p.languages = languages
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		languages: []string{"en"},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse resolves text to a calendar date. Strict mode requires day, month
// and year to be present. With preferPast, partial expressions such as
// "March 3" resolve to the most recent past occurrence relative to the
// clock. Failures wrap model.ErrParseFailure.
func (p *Parser) Parse(text string, preferPast bool) (*model.Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(model.ErrParseFailure, "empty date expression")
	}

	cfg := &dateparser.Configuration{
		Languages:   p.languages,
		CurrentTime: p.now(),
	}
	if preferPast {
		cfg.PreferredDateSource = dateparser.Past
	} else {
		cfg.StrictParsing = true
	}

	dt, err := dateparser.Parse(cfg, text)
	if err != nil {
		return nil, goerr.Wrap(model.ErrParseFailure, "failed to parse date expression",
			goerr.V("text", text),
			goerr.V("cause", err.Error()))
	}
	if dt.Time.IsZero() {
		return nil, goerr.Wrap(model.ErrParseFailure, "no date in expression", goerr.V("text", text))
	}

	return model.DateOf(dt.Time).Ptr(), nil
}
