package resolve_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/core/resolve"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

func day(d int) model.Date {
	return model.NewDate(2024, time.January, d)
}

func published(d int) *time.Time {
	t := time.Date(2024, time.January, d, 15, 30, 0, 0, time.UTC)
	return &t
}

func TestWeightedMedian(t *testing.T) {
	t.Run("heavier later signal wins", func(t *testing.T) {
		got, ok := resolve.WeightedMedian([]resolve.Signal{
			{Ordinal: day(1).Ordinal(), Weight: 1.0},
			{Ordinal: day(10).Ordinal(), Weight: 1.5},
		})
		gt.Bool(t, ok).True()
		gt.Value(t, model.DateFromOrdinal(got)).Equal(day(10))
	})

	t.Run("three equal mentions resolve to the middle", func(t *testing.T) {
		got, ok := resolve.WeightedMedian([]resolve.Signal{
			{Ordinal: day(9).Ordinal(), Weight: 1.5},
			{Ordinal: day(1).Ordinal(), Weight: 1.5},
			{Ordinal: day(5).Ordinal(), Weight: 1.5},
		})
		gt.Bool(t, ok).True()
		gt.Value(t, model.DateFromOrdinal(got)).Equal(day(5))
	})

	t.Run("half exactly reached at the first point", func(t *testing.T) {
		got, ok := resolve.WeightedMedian([]resolve.Signal{
			{Ordinal: 100, Weight: 1},
			{Ordinal: 200, Weight: 1},
		})
		gt.Bool(t, ok).True()
		gt.Number(t, got).Equal(100)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := resolve.WeightedMedian(nil)
		gt.Bool(t, ok).False()
	})

	t.Run("unreachable half falls back to middle index of input order", func(t *testing.T) {
		got, ok := resolve.WeightedMedian([]resolve.Signal{
			{Ordinal: 30, Weight: math.NaN()},
			{Ordinal: 10, Weight: math.NaN()},
			{Ordinal: 20, Weight: math.NaN()},
		})
		gt.Bool(t, ok).True()
		gt.Number(t, got).Equal(10)
	})
}

func TestResolve(t *testing.T) {
	r := resolve.New()

	t.Run("nil when no member has a date signal", func(t *testing.T) {
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{Text: "no dates here"},
			{Text: "nor here"},
		}})
		gt.Value(t, got).Nil()
	})

	t.Run("publish date alone is enough", func(t *testing.T) {
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{SourcePublishedAt: published(7)},
		}})
		gt.Value(t, got).NotNil()
		gt.Value(t, *got).Equal(day(7))
	})

	t.Run("mention outweighs a publish date", func(t *testing.T) {
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{MentionedDate: day(10).Ptr(), SourcePublishedAt: published(1)},
		}})
		gt.Value(t, *got).Equal(day(10))
	})

	t.Run("outlier mention does not drag the median", func(t *testing.T) {
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{MentionedDate: day(10).Ptr(), SourcePublishedAt: published(11)},
			{MentionedDate: day(10).Ptr(), SourcePublishedAt: published(11)},
			{MentionedDate: model.NewDate(1999, time.January, 1).Ptr()},
		}})
		gt.Value(t, *got).Equal(day(10))
	})

	t.Run("publish time is taken as UTC calendar day", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		ts := time.Date(2024, time.January, 11, 3, 0, 0, 0, jst)
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{SourcePublishedAt: &ts},
		}})
		gt.Value(t, *got).Equal(day(10))
	})

	t.Run("custom weights", func(t *testing.T) {
		r := resolve.New(resolve.WithWeights(1, 3))
		got := r.Resolve(&model.Cluster{Members: []*model.Candidate{
			{MentionedDate: day(10).Ptr(), SourcePublishedAt: published(2)},
		}})
		gt.Value(t, *got).Equal(day(2))
	})
}

func TestSignals(t *testing.T) {
	r := resolve.New()
	signals := r.Signals(&model.Cluster{Members: []*model.Candidate{
		{MentionedDate: day(3).Ptr(), SourcePublishedAt: published(4)},
		{},
		{SourcePublishedAt: published(5)},
	}})
	gt.Value(t, signals).Equal([]resolve.Signal{
		{Ordinal: day(3).Ordinal(), Weight: 1.5},
		{Ordinal: day(4).Ordinal(), Weight: 1.0},
		{Ordinal: day(5).Ordinal(), Weight: 1.0},
	})
}
