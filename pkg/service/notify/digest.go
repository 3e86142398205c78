package notify

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/slack-go/slack"
)

// BuildDigest renders the Block Kit digest of a timeline and its plain text
// fallback. The digest carries the entry count, the date range, the number
// of contradicted entries and the top sources by supporting statements.
func BuildDigest(timeline *model.Timeline, topSources int, linkBase string) ([]slack.Block, string) {
	title := timeline.Query
	if title == "" {
		title = string(timeline.ID)
	}
	text := fmt.Sprintf("Timeline ready: %s (%d entries)", title, len(timeline.Entries))

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Timeline: "+title, true, false),
		),
	}

	contradictions := 0
	for _, e := range timeline.Entries {
		if e.HasContradiction() {
			contradictions++
		}
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Entries*\n%d", len(timeline.Entries)), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Date range*\n"+dateRange(timeline), false, false),
	}
	if contradictions > 0 {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Contradictions*\n%d", contradictions), false, false))
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	if counts := timeline.SourceCounts(); len(counts) > 0 {
		if topSources > 0 && len(counts) > topSources {
			counts = counts[:topSources]
		}
		lines := make([]string, 0, len(counts))
		for _, c := range counts {
			lines = append(lines, fmt.Sprintf("• %s (%d)", c.Source, c.Count))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Top sources*\n"+strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}

	contextText := fmt.Sprintf("ID: `%s`", timeline.ID)
	if linkBase != "" {
		contextText = fmt.Sprintf("<%s/api/timelines/%s|%s>", strings.TrimRight(linkBase, "/"), timeline.ID, timeline.ID)
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, contextText, false, false),
	))

	return blocks, text
}

func dateRange(timeline *model.Timeline) string {
	first, last := timeline.DateRange()
	switch {
	case first == nil:
		return "undated"
	case *first == *last:
		return first.String()
	default:
		return first.String() + " to " + last.String()
	}
}
