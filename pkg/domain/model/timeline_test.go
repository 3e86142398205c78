package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

func TestNewTimelineID(t *testing.T) {
	id := model.NewTimelineID()
	gt.Number(t, len(id)).Equal(36)
	gt.Value(t, id).NotEqual(model.NewTimelineID())
}

func TestSortEntries(t *testing.T) {
	t.Run("undated entries sort last", func(t *testing.T) {
		entries := []*model.Entry{
			{Milestone: "march", Date: model.NewDate(2024, time.March, 1).Ptr()},
			{Milestone: "undated"},
			{Milestone: "january", Date: model.NewDate(2024, time.January, 5).Ptr()},
		}
		model.SortEntries(entries)

		gt.String(t, entries[0].Milestone).Equal("january")
		gt.String(t, entries[1].Milestone).Equal("march")
		gt.String(t, entries[2].Milestone).Equal("undated")
	})

	t.Run("undated and same-day entries keep discovery order", func(t *testing.T) {
		day := model.NewDate(2024, time.May, 5)
		entries := []*model.Entry{
			{Milestone: "u1"},
			{Milestone: "d1", Date: day.Ptr()},
			{Milestone: "u2"},
			{Milestone: "d2", Date: day.Ptr()},
			{Milestone: "u3"},
		}
		model.SortEntries(entries)

		var got []string
		for _, e := range entries {
			got = append(got, e.Milestone)
		}
		gt.Value(t, got).Equal([]string{"d1", "d2", "u1", "u2", "u3"})
	})
}

func TestTimelineSourceCounts(t *testing.T) {
	tl := &model.Timeline{
		Entries: []*model.Entry{
			{SupportingStatements: []model.SupportingStatement{
				{SourceName: "Reuters"}, {SourceName: "BBC"}, {SourceName: "AP"},
			}},
			{SupportingStatements: []model.SupportingStatement{
				{SourceName: "BBC"}, {SourceName: ""}, {SourceName: "AP"},
			}},
			{SupportingStatements: []model.SupportingStatement{
				{SourceName: "BBC"},
			}},
		},
	}

	gt.Value(t, tl.SourceCounts()).Equal([]model.SourceCount{
		{Source: "BBC", Count: 3},
		{Source: "AP", Count: 2},
		{Source: "Reuters", Count: 1},
	})
}

func TestTimelineDateRange(t *testing.T) {
	jan := model.NewDate(2024, time.January, 5)
	mar := model.NewDate(2024, time.March, 1)

	tl := &model.Timeline{Entries: []*model.Entry{
		{Date: jan.Ptr()}, {Date: mar.Ptr()}, {},
	}}
	first, last := tl.DateRange()
	gt.Value(t, *first).Equal(jan)
	gt.Value(t, *last).Equal(mar)

	first, last = (&model.Timeline{Entries: []*model.Entry{{}}}).DateRange()
	gt.Value(t, first).Nil()
	gt.Value(t, last).Nil()
}

func TestSummaryHasContradiction(t *testing.T) {
	gt.Bool(t, (&model.Summary{Notes: "CONTRADICTION DETECTED: launch on 10th vs 11th"}).HasContradiction()).True()
	gt.Bool(t, (&model.Summary{Notes: "contradiction detected"}).HasContradiction()).True()
	gt.Bool(t, (&model.Summary{Notes: "all sources agree"}).HasContradiction()).False()
}

func TestClusterSources(t *testing.T) {
	c := &model.Cluster{Members: []*model.Candidate{
		{SourceName: "BBC"}, {SourceName: "BBC"}, {SourceName: "AP"},
		{SourceName: ""}, {SourceName: "Reuters"}, {SourceName: "CNN"},
	}}
	gt.Value(t, c.Sources(3)).Equal([]string{"BBC", "AP", "Reuters"})
	gt.Value(t, c.Sources(1)).Equal([]string{"BBC"})
}

func TestArticleBody(t *testing.T) {
	gt.String(t, (&model.Article{Content: "full", RawContent: "snippet"}).Body()).Equal("full")
	gt.String(t, (&model.Article{RawContent: "snippet"}).Body()).Equal("snippet")
}
