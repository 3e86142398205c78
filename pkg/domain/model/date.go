package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the wire format of Date
const DateLayout = "2006-01-02"

// unixEpochOrdinal is the ordinal of 1970-01-01 when 0001-01-01 is day 1
const unixEpochOrdinal = 719163

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day without time of day or zone. Optional dates are
// represented as *Date, nil meaning undated.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the given components, so NewDate(2024, 1, 32) is 2024-02-01
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, goerr.Wrap(ErrParseFailure, "invalid date", goerr.V("date", s), goerr.V("cause", err.Error()))
	}
	return DateOf(t), nil
}

// DateFromOrdinal is the inverse of Date.Ordinal
func DateFromOrdinal(ordinal int) Date {
	return DateOf(time.Unix(int64(ordinal-unixEpochOrdinal)*secondsPerDay, 0).UTC())
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Ordinal returns a linear day number where 0001-01-01 is 1
func (d Date) Ordinal() int {
	return int(d.Time().Unix()/secondsPerDay) + unixEpochOrdinal
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Ordinal() < other.Ordinal()
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Ptr returns a pointer to a copy of d
func (d Date) Ptr() *Date {
	return &d
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
