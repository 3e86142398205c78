package generation

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
)

// DefaultMaxOutputChars bounds the text returned from one generation. The
// provider-side token limit normally stops the reply well before this.
const DefaultMaxOutputChars = 4000

// Gollem generates text through a gollem LLM client. Each call opens a fresh
// session so that no history leaks between clusters.
type Gollem struct {
	llmClient       gollem.LLMClient
	systemPrompt    string
	schema          *gollem.Parameter
	maxOutputChars  int
	maxOutputTokens int
}

var _ interfaces.Generator = &Gollem{}

type Option func(*Gollem)

func WithSystemPrompt(prompt string) Option {
	return func(g *Gollem) {
		g.systemPrompt = prompt
	}
}

// WithResponseSchema requests JSON output following schema
func WithResponseSchema(schema *gollem.Parameter) Option {
	return func(g *Gollem) {
		g.schema = schema
	}
}

func WithMaxOutputChars(n int) Option {
	return func(g *Gollem) {
		g.maxOutputChars = n
	}
}

// WithMaxOutputTokens caps the tokens the provider may generate per call.
// Zero leaves the client default in place.
func WithMaxOutputTokens(n int) Option {
	return func(g *Gollem) {
		g.maxOutputTokens = n
	}
}

func New(llmClient gollem.LLMClient, opts ...Option) (*Gollem, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Gollem{
		llmClient:      llmClient,
		maxOutputChars: DefaultMaxOutputChars,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gollem) Generate(ctx context.Context, prompt string) (string, error) {
	sessionOpts := []gollem.SessionOption{}
	if g.systemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(g.systemPrompt))
	}
	if g.schema != nil {
		sessionOpts = append(sessionOpts,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(g.schema),
		)
	}

	session, err := g.llmClient.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	genOpts := []gollem.GenerateOption{gollem.WithTemperature(0)}
	if g.maxOutputTokens > 0 {
		genOpts = append(genOpts, gollem.WithMaxTokens(g.maxOutputTokens))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)}, genOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text")
	}

	text := strings.Join(resp.Texts, "")
	if g.maxOutputChars > 0 {
		if runes := []rune(text); len(runes) > g.maxOutputChars {
			text = string(runes[:g.maxOutputChars])
		}
	}
	return text, nil
}

// SummarySchema is the response schema of a milestone summary record
func SummarySchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "MilestoneSummary",
		Description: "Structured summary of one event milestone",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"date": {
				Type:        gollem.TypeString,
				Description: "Date of the milestone as YYYY-MM-DD, empty if unknown",
			},
			"milestone": {
				Type:        gollem.TypeString,
				Description: "One factual sentence of 10 to 25 words",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Support of the milestone by the quotes, between 0 and 1",
				Required:    true,
			},
			"sources": {
				Type:        gollem.TypeArray,
				Description: "Up to 3 source names that best support the milestone",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
			"notes": {
				Type:        gollem.TypeString,
				Description: "Contradictions between quotes, empty if none",
			},
		},
	}
}
