package dateparse_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/service/dateparse"
)

func newParser() *dateparse.Parser {
	return dateparse.New(dateparse.WithClock(func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	}))
}

func TestParseStrict(t *testing.T) {
	p := newParser()

	t.Run("complete date", func(t *testing.T) {
		d, err := p.Parse("January 10, 2024", false)
		gt.NoError(t, err).Required()
		gt.Value(t, *d).Equal(model.NewDate(2024, time.January, 10))
	})

	t.Run("iso date", func(t *testing.T) {
		d, err := p.Parse("2023-11-02", false)
		gt.NoError(t, err).Required()
		gt.Value(t, *d).Equal(model.NewDate(2023, time.November, 2))
	})

	t.Run("missing year is rejected", func(t *testing.T) {
		_, err := p.Parse("March 3", false)
		gt.Error(t, err).Is(model.ErrParseFailure)
	})
}

func TestParsePreferPast(t *testing.T) {
	p := newParser()

	d, err := p.Parse("March 3", true)
	gt.NoError(t, err).Required()
	gt.Value(t, *d).Equal(model.NewDate(2024, time.March, 3))

	// August has not happened yet relative to the clock
	d, err = p.Parse("August 20", true)
	gt.NoError(t, err).Required()
	gt.Value(t, *d).Equal(model.NewDate(2023, time.August, 20))
}

func TestParseFailure(t *testing.T) {
	p := newParser()

	_, err := p.Parse("", true)
	gt.Error(t, err).Is(model.ErrParseFailure)

	_, err = p.Parse("the quick brown fox", true)
	gt.Error(t, err).Is(model.ErrParseFailure)
}
