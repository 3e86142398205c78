package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	t.Run("overrides pipeline values", func(t *testing.T) {
		path := writeConfig(t, `
[pipeline]
distance_threshold = 0.9
mention_weight = 2.0
max_sources = 5
concurrency = 8
call_timeout = "45s"
max_articles = 20
max_output_tokens = 256

[keywords]
extra = ["Acquired", "  ", "launch"]
`)
		cfg, err := config.LoadAppConfiguration(path)
		gt.NoError(t, err).Required()

		p, err := cfg.ToPipeline()
		gt.NoError(t, err).Required()
		gt.Number(t, p.DistanceThreshold).Equal(0.9)
		gt.Number(t, p.MentionWeight).Equal(2.0)
		gt.Number(t, p.PublishWeight).Equal(1.0)
		gt.Number(t, p.MaxSources).Equal(5)
		gt.Number(t, p.Concurrency).Equal(8)
		gt.Number(t, p.MaxArticles).Equal(20)
		gt.Number(t, p.MaxOutputTokens).Equal(256)
		gt.Value(t, p.CallTimeout).Equal(45 * time.Second)
		gt.Array(t, p.EventKeywords).Has("acquired")
		gt.Array(t, p.EventKeywords).Has("rolled out")

		count := 0
		for _, kw := range p.EventKeywords {
			if kw == "launch" {
				count++
			}
		}
		gt.Number(t, count).Equal(1)
	})

	t.Run("replaces keywords", func(t *testing.T) {
		path := writeConfig(t, `
[keywords]
replace = true
extra = ["merger"]
`)
		cfg, err := config.LoadAppConfiguration(path)
		gt.NoError(t, err).Required()

		p, err := cfg.ToPipeline()
		gt.NoError(t, err).Required()
		gt.Array(t, p.EventKeywords).Length(1).Required()
		gt.Value(t, p.EventKeywords[0]).Equal("merger")
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, ""))
		gt.NoError(t, err).Required()

		p, err := cfg.ToPipeline()
		gt.NoError(t, err).Required()
		gt.Number(t, p.DistanceThreshold).Equal(1.05)
		gt.Number(t, p.MaxArticles).Equal(12)
		gt.Number(t, p.MaxOutputTokens).Equal(400)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(writeConfig(t, "[pipeline\nfoo"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(writeConfig(t, "[pipeline]\ncall_timeout = \"soon\"\n"))
		gt.Error(t, err).Is(config.ErrInvalidDuration)
	})

	t.Run("out of range value", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(writeConfig(t, "[pipeline]\nparse_failure_confidence = 1.5\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("replace without keywords", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(writeConfig(t, "[keywords]\nreplace = true\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestAppConfigConfigure(t *testing.T) {
	t.Run("defaults without path", func(t *testing.T) {
		p, err := config.NewAppConfigForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Number(t, p.DistanceThreshold).Equal(1.05)
	})

	t.Run("loads file", func(t *testing.T) {
		path := writeConfig(t, "[pipeline]\nmin_sentence_length = 10\n")
		cfg := config.NewAppConfigForTest(path)
		p, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Number(t, p.MinSentenceLength).Equal(10)
		gt.Value(t, cfg.Path()).Equal(path)
	})

	t.Run("fails on missing file", func(t *testing.T) {
		_, err := config.NewAppConfigForTest("/nonexistent/chronicle.toml").Configure()
		gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})
}
