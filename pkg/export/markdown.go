package export

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// UndatedLabel is shown in place of the date of undated entries
const UndatedLabel = "Undated"

var tableHeader = []string{"Date", "Milestone", "Confidence", "Sources"}

// Markdown renders a timeline as a table aligned by display width, followed
// by contradiction notes and per-source statement counts
func Markdown(timeline *model.Timeline) string {
	var sb strings.Builder

	title := timeline.Query
	if title == "" {
		title = string(timeline.ID)
	}
	fmt.Fprintf(&sb, "# Timeline: %s\n\n", title)
	if !timeline.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "Created at %s\n\n", timeline.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	if len(timeline.Entries) == 0 {
		sb.WriteString("No events found.\n")
		return sb.String()
	}

	rows := make([][]string, 0, len(timeline.Entries))
	for _, e := range timeline.Entries {
		rows = append(rows, []string{
			EntryDate(e),
			cell(e.Milestone),
			fmt.Sprintf("%.2f", e.Confidence),
			cell(strings.Join(e.Sources, ", ")),
		})
	}
	writeTable(&sb, tableHeader, rows)

	var notes []string
	for _, e := range timeline.Entries {
		if e.Notes != "" {
			notes = append(notes, fmt.Sprintf("- %s: %s", EntryDate(e), e.Notes))
		}
	}
	if len(notes) > 0 {
		sb.WriteString("\n## Notes\n\n")
		sb.WriteString(strings.Join(notes, "\n"))
		sb.WriteString("\n")
	}

	if counts := timeline.SourceCounts(); len(counts) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for _, c := range counts {
			fmt.Fprintf(&sb, "- %s: %d\n", c.Source, c.Count)
		}
	}

	return sb.String()
}

// EntryDate returns the ISO date of an entry or UndatedLabel
func EntryDate(e *model.Entry) string {
	if e.Date == nil {
		return UndatedLabel
	}
	return e.Date.String()
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeTable(sb *strings.Builder, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(c, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
}
