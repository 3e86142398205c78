package assemble

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// Assemble merges clusters, their canonical dates and their summaries into a
// timeline whose entries are sorted by date, undated entries last in
// discovery order. The three slices are index-aligned. Identity fields of the
// timeline are left to the caller.
func Assemble(clusters []*model.Cluster, dates []*model.Date, summaries []*model.Summary) (*model.Timeline, error) {
	if len(dates) != len(clusters) || len(summaries) != len(clusters) {
		return nil, goerr.Wrap(model.ErrInvalidInput, "clusters, dates and summaries are not aligned",
			goerr.V("clusters", len(clusters)),
			goerr.V("dates", len(dates)),
			goerr.V("summaries", len(summaries)))
	}

	entries := make([]*model.Entry, 0, len(clusters))
	for i, cl := range clusters {
		summary := summaries[i]
		if cl == nil || summary == nil {
			return nil, goerr.Wrap(model.ErrInvalidInput, "missing cluster or summary", goerr.V(model.ClusterKey, i))
		}

		date := summary.Date
		if date == nil {
			date = dates[i]
		}

		sources := summary.Sources
		if sources == nil {
			sources = []string{}
		}

		statements := make([]model.SupportingStatement, len(cl.Members))
		for j, m := range cl.Members {
			statements[j] = model.SupportingStatement{
				Text:       m.Text,
				SourceName: m.SourceName,
				URL:        m.SourceURL,
			}
		}

		entries = append(entries, &model.Entry{
			Date:                 date,
			Milestone:            summary.Milestone,
			Confidence:           summary.Confidence,
			Sources:              sources,
			Notes:                summary.Notes,
			SupportingStatements: statements,
		})
	}

	model.SortEntries(entries)
	return &model.Timeline{Entries: entries}, nil
}
