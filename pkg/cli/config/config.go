package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/chronicle/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file. Every pipeline
// value is optional and falls back to the built-in default.
type AppConfig struct {
	Pipeline PipelineSection `toml:"pipeline"`
	Keywords KeywordsSection `toml:"keywords"`

	path string
}

// PipelineSection overrides pipeline tunables
type PipelineSection struct {
	DistanceThreshold           *float64 `toml:"distance_threshold"`
	MentionWeight               *float64 `toml:"mention_weight"`
	PublishWeight               *float64 `toml:"publish_weight"`
	GenerationFailureConfidence *float64 `toml:"generation_failure_confidence"`
	ParseFailureConfidence      *float64 `toml:"parse_failure_confidence"`
	FallbackTextCap             *int     `toml:"fallback_text_cap"`
	MaxSources                  *int     `toml:"max_sources"`
	MinSentenceLength           *int     `toml:"min_sentence_length"`
	Concurrency                 *int     `toml:"concurrency"`
	CallTimeout                 string   `toml:"call_timeout"`
	MaxArticles                 *int     `toml:"max_articles"`
	MaxOutputTokens             *int     `toml:"max_output_tokens"`
}

// KeywordsSection extends or replaces the event keyword set
type KeywordsSection struct {
	Replace bool     `toml:"replace"`
	Extra   []string `toml:"extra"`
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("CHRONICLE_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppConfig) Path() string {
	return a.path
}

func (a AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.path),
		slog.Int("extra_keywords", len(a.Keywords.Extra)),
		slog.Bool("replace_keywords", a.Keywords.Replace),
	)
}

// Configure loads the file given by --config and returns the resulting
// pipeline tuning. Without a file the default tuning is returned.
func (a *AppConfig) Configure() (*domainConfig.Pipeline, error) {
	if a.path == "" {
		return domainConfig.DefaultPipeline(), nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	loaded.path = a.path
	*a = *loaded

	return a.ToPipeline()
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Keywords.Replace && len(normalize(a.Keywords.Extra)) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "keywords.replace requires at least one keyword in keywords.extra")
	}

	p, err := a.ToPipeline()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid pipeline section", goerr.V("cause", err.Error()))
	}
	return nil
}

// ToPipeline applies the overrides in the file on top of the default tuning
func (a *AppConfig) ToPipeline() (*domainConfig.Pipeline, error) {
	p := domainConfig.DefaultPipeline()
	s := a.Pipeline

	setFloat(&p.DistanceThreshold, s.DistanceThreshold)
	setFloat(&p.MentionWeight, s.MentionWeight)
	setFloat(&p.PublishWeight, s.PublishWeight)
	setFloat(&p.GenerationFailureConfidence, s.GenerationFailureConfidence)
	setFloat(&p.ParseFailureConfidence, s.ParseFailureConfidence)
	setInt(&p.FallbackTextCap, s.FallbackTextCap)
	setInt(&p.MaxSources, s.MaxSources)
	setInt(&p.MinSentenceLength, s.MinSentenceLength)
	setInt(&p.Concurrency, s.Concurrency)
	setInt(&p.MaxArticles, s.MaxArticles)
	setInt(&p.MaxOutputTokens, s.MaxOutputTokens)

	if s.CallTimeout != "" {
		d, err := time.ParseDuration(s.CallTimeout)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidDuration, "invalid pipeline.call_timeout",
				goerr.V("call_timeout", s.CallTimeout))
		}
		p.CallTimeout = d
	}

	extra := normalize(a.Keywords.Extra)
	if a.Keywords.Replace {
		p.EventKeywords = extra
	} else {
		p.EventKeywords = mergeKeywords(p.EventKeywords, extra)
	}

	return p, nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	config.path = path
	return &config, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func normalize(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			result = append(result, kw)
		}
	}
	return result
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, kw := range append(append([]string{}, base...), extra...) {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		result = append(result, kw)
	}
	return result
}
