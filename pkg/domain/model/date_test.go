package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

func TestDateOrdinal(t *testing.T) {
	t.Run("first day of the calendar is ordinal 1", func(t *testing.T) {
		gt.Number(t, model.NewDate(1, time.January, 1).Ordinal()).Equal(1)
	})

	t.Run("unix epoch", func(t *testing.T) {
		gt.Number(t, model.NewDate(1970, time.January, 1).Ordinal()).Equal(719163)
	})

	t.Run("round trip", func(t *testing.T) {
		for _, d := range []model.Date{
			model.NewDate(1957, time.October, 4),
			model.NewDate(2024, time.February, 29),
			model.NewDate(2024, time.December, 31),
		} {
			gt.Value(t, model.DateFromOrdinal(d.Ordinal())).Equal(d)
		}
	})

	t.Run("consecutive days differ by one", func(t *testing.T) {
		a := model.NewDate(2023, time.December, 31)
		b := model.NewDate(2024, time.January, 1)
		gt.Number(t, b.Ordinal()-a.Ordinal()).Equal(1)
		gt.Bool(t, a.Before(b)).True()
		gt.Bool(t, b.Before(a)).False()
	})
}

func TestNewDateNormalizes(t *testing.T) {
	gt.Value(t, model.NewDate(2024, time.January, 32)).Equal(model.NewDate(2024, time.February, 1))
}

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2024-01-10")
	gt.NoError(t, err).Required()
	gt.Value(t, d).Equal(model.NewDate(2024, time.January, 10))
	gt.String(t, d.String()).Equal("2024-01-10")

	_, err = model.ParseDate("January 10")
	gt.Error(t, err).Is(model.ErrParseFailure)
	gt.Bool(t, errors.Is(err, model.ErrParseFailure)).True()
}

func TestDateJSON(t *testing.T) {
	type doc struct {
		Date    *model.Date `json:"date"`
		Missing *model.Date `json:"missing"`
	}

	raw, err := json.Marshal(doc{Date: model.NewDate(2024, time.March, 1).Ptr()})
	gt.NoError(t, err).Required()
	gt.String(t, string(raw)).Equal(`{"date":"2024-03-01","missing":null}`)

	var decoded doc
	gt.NoError(t, json.Unmarshal(raw, &decoded)).Required()
	gt.Value(t, decoded.Date).NotNil()
	gt.Value(t, *decoded.Date).Equal(model.NewDate(2024, time.March, 1))
	gt.Value(t, decoded.Missing).Nil()

	gt.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &decoded))
}
