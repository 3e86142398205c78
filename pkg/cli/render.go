package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/export"
)

// formatConsole is the colored terminal rendering, in addition to the
// export formats
const formatConsole = "console"

var (
	headerColor   = color.New(color.Bold)
	dateColor     = color.New(color.FgCyan)
	highColor     = color.New(color.FgGreen)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgRed)
	sourceColor   = color.New(color.Faint)
	conflictColor = color.New(color.FgRed, color.Bold)
)

func writeTimeline(w io.Writer, timeline *model.Timeline, format string) error {
	if format == formatConsole {
		return renderConsole(w, timeline)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	data, err := export.Marshal(timeline, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write timeline")
	}
	return nil
}

func confidenceColor(confidence float64) *color.Color {
	switch {
	case confidence >= 0.7:
		return highColor
	case confidence >= 0.5:
		return mediumColor
	default:
		return lowColor
	}
}

func renderConsole(w io.Writer, timeline *model.Timeline) error {
	var b strings.Builder

	headerColor.Fprintf(&b, "%s\n", timeline.Query)
	sourceColor.Fprintf(&b, "%s  %s\n\n", timeline.ID, timeline.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(timeline.Entries) == 0 {
		b.WriteString("No events found.\n")
	}

	for _, e := range timeline.Entries {
		dateColor.Fprintf(&b, "%-10s", export.EntryDate(e))
		b.WriteString("  ")
		confidenceColor(e.Confidence).Fprintf(&b, "[%.2f]", e.Confidence)
		fmt.Fprintf(&b, " %s\n", e.Milestone)

		if len(e.Sources) > 0 {
			sourceColor.Fprintf(&b, "            %s\n", strings.Join(e.Sources, ", "))
		}
		if e.HasContradiction() {
			conflictColor.Fprintf(&b, "            ! %s\n", e.Notes)
		} else if e.Notes != "" {
			sourceColor.Fprintf(&b, "            %s\n", e.Notes)
		}
	}

	if counts := timeline.SourceCounts(); len(counts) > 0 {
		b.WriteString("\n")
		headerColor.Fprintf(&b, "Sources\n")
		for _, sc := range counts {
			fmt.Fprintf(&b, "  %s (%d)\n", sc.Source, sc.Count)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write timeline")
	}
	return nil
}

func writeTimelineList(w io.Writer, timelines []*model.Timeline) error {
	var b strings.Builder
	if len(timelines) == 0 {
		b.WriteString("No timelines stored.\n")
	}
	for _, t := range timelines {
		sourceColor.Fprintf(&b, "%s  %s", t.ID, t.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "  %3d entries  %s\n", len(t.Entries), t.Query)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write timeline list")
	}
	return nil
}
