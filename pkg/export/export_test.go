package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/m-mizutani/gt"
	"github.com/mattn/go-runewidth"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/export"
)

func sampleTimeline() *model.Timeline {
	return &model.Timeline{
		ID:        model.TimelineID("3f1c7a52-3c1e-4a53-9a57-2a0b8f7f5e10"),
		Query:     "lunar lander",
		CreatedAt: time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC),
		Entries: []*model.Entry{
			{
				Date:       model.NewDate(2024, time.January, 10).Ptr(),
				Milestone:  "The lander launched from Cape Canaveral",
				Confidence: 0.92,
				Sources:    []string{"BBC", "AP"},
				Notes:      "CONTRADICTION DETECTED: one source reports January 11",
				SupportingStatements: []model.SupportingStatement{
					{Text: "The lander launched on January 10.", SourceName: "BBC", URL: "https://example.com/a"},
					{Text: "Launch happened January 11.", SourceName: "AP", URL: "https://example.com/b"},
				},
			},
			{
				Milestone:  "月面着陸に成功した",
				Confidence: 0.4,
				Sources:    []string{},
				Notes:      "",
				SupportingStatements: []model.SupportingStatement{
					{Text: "着陸に成功", SourceName: "NHK", URL: "https://example.com/c"},
				},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []export.Format{export.FormatJSON, export.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			want := sampleTimeline()

			data, err := export.Marshal(want, format)
			gt.NoError(t, err).Required()

			got, err := export.Unmarshal(data, format)
			gt.NoError(t, err).Required()

			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalJSONShape(t *testing.T) {
	data, err := export.Marshal(sampleTimeline(), export.FormatJSON)
	gt.NoError(t, err).Required()

	gt.String(t, string(data)).Contains(`"date": "2024-01-10"`)
	gt.String(t, string(data)).Contains(`"date": null`)
	gt.String(t, string(data)).Contains(`"milestone_text": "The lander launched from Cape Canaveral"`)
}

func TestUnmarshalInvalid(t *testing.T) {
	_, err := export.Unmarshal([]byte("{not json"), export.FormatJSON)
	gt.Error(t, err).Is(model.ErrParseFailure)

	_, err = export.Unmarshal([]byte("# Timeline"), export.FormatMarkdown)
	gt.Error(t, err).Is(model.ErrInvalidInput)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]export.Format{
		"json":     export.FormatJSON,
		".yml":     export.FormatYAML,
		"YAML":     export.FormatYAML,
		"md":       export.FormatMarkdown,
		"markdown": export.FormatMarkdown,
	}
	for in, want := range cases {
		got, err := export.ParseFormat(in)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(want)
	}

	_, err := export.ParseFormat("csv")
	gt.Error(t, err).Is(model.ErrInvalidInput)

	gt.String(t, export.FormatMarkdown.Extension()).Equal("md")
	gt.String(t, export.FormatYAML.Extension()).Equal("yaml")
}

func TestMarkdown(t *testing.T) {
	md := export.Markdown(sampleTimeline())

	gt.String(t, md).Contains("# Timeline: lunar lander")
	gt.String(t, md).Contains("2024-01-10")
	gt.String(t, md).Contains(export.UndatedLabel)
	gt.String(t, md).Contains("0.92")
	gt.String(t, md).Contains("BBC, AP")
	gt.String(t, md).Contains("## Notes")
	gt.String(t, md).Contains("CONTRADICTION DETECTED")
	gt.String(t, md).Contains("- BBC: 1")
	gt.String(t, md).Contains("- NHK: 1")

	// every table line has the same display width even with wide characters
	width := -1
	for _, line := range strings.Split(md, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		w := runewidth.StringWidth(line)
		if width < 0 {
			width = w
		}
		gt.Number(t, w).Equal(width)
	}
	gt.Number(t, width).GreaterOrEqual(1)
}

func TestMarkdownEmpty(t *testing.T) {
	md := export.Markdown(&model.Timeline{Query: "nothing"})
	gt.String(t, md).Contains("No events found.")
}

func TestUnmarshalArticles(t *testing.T) {
	t.Run("JSON object", func(t *testing.T) {
		set, err := export.UnmarshalArticles([]byte(`{
			"query": "lunar lander",
			"articles": [
				{"url": "https://example.com/a", "title": "A", "source": "BBC",
				 "published_at": "2024-01-11T08:00:00Z", "content": "The lander launched."},
				{"url": "https://example.com/b", "source": "AP", "raw_content": "snippet only"}
			]
		}`), export.FormatJSON)
		gt.NoError(t, err).Required()
		gt.String(t, set.Query).Equal("lunar lander")
		gt.Array(t, set.Articles).Length(2).Required()
		gt.Value(t, set.Articles[0].PublishedAt).NotNil()
		gt.Value(t, set.Articles[0].PublishedAt.Day()).Equal(11)
		gt.Value(t, set.Articles[1].PublishedAt).Nil()
		gt.String(t, set.Articles[1].Body()).Equal("snippet only")
	})

	t.Run("JSON list", func(t *testing.T) {
		set, err := export.UnmarshalArticles([]byte(`[{"url": "u", "content": "c"}]`), export.FormatJSON)
		gt.NoError(t, err).Required()
		gt.String(t, set.Query).Equal("")
		gt.Array(t, set.Articles).Length(1)
	})

	t.Run("YAML object", func(t *testing.T) {
		set, err := export.UnmarshalArticles([]byte(`
query: lunar lander
articles:
  - url: https://example.com/a
    source: BBC
    published_at: 2024-01-11T08:00:00Z
    content: The lander launched.
`), export.FormatYAML)
		gt.NoError(t, err).Required()
		gt.String(t, set.Query).Equal("lunar lander")
		gt.Array(t, set.Articles).Length(1).Required()
		gt.Value(t, set.Articles[0].PublishedAt).NotNil()
	})

	t.Run("YAML list", func(t *testing.T) {
		set, err := export.UnmarshalArticles([]byte("- url: u\n  content: c\n- url: v\n  content: d\n"), export.FormatYAML)
		gt.NoError(t, err).Required()
		gt.Array(t, set.Articles).Length(2)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := export.UnmarshalArticles([]byte("  "), export.FormatJSON)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})
}
