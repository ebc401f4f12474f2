// Package week aligns calendar dates to Monday–Sunday weeks.
//
// Every function here works on the calendar components of its input
// (year, month, day) and returns UTC midnights, so the result never depends
// on the server's or the client's timezone.
package week

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the only date format exchanged with clients and the store.
const Layout = "2006-01-02"

// ErrInvalidDate is returned for anything that is not a real YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date (YYYY-MM-DD)")

var ymd = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if !ymd.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Date(t).Format(Layout)
}

// Date drops the clock and location of t, keeping its calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Start returns the Monday of the week containing t. Sundays belong to the
// week that started six days earlier.
func Start(t time.Time) time.Time {
	d := Date(t)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// End returns the Sunday closing the week containing t.
func End(t time.Time) time.Time {
	return Start(t).AddDate(0, 0, 6)
}

// Key returns the week key (the Monday, as YYYY-MM-DD) for an ISO date.
func Key(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(Start(t)), nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// Of returns the Monday–Sunday range containing t.
func Of(t time.Time) Range {
	s := Start(t)
	return Range{Start: s, End: s.AddDate(0, 0, 6)}
}

// Current returns the week containing now, read in UTC.
func Current(now time.Time) Range {
	return Of(now.UTC())
}

// FromStart builds the week range beginning at start. start is not realigned.
func FromStart(start time.Time) Range {
	s := Date(start)
	return Range{Start: s, End: s.AddDate(0, 0, 6)}
}

func (r Range) StartISO() string { return FormatDate(r.Start) }
func (r Range) EndISO() string   { return FormatDate(r.End) }

func (r Range) String() string {
	return r.StartISO() + ".." + r.EndISO()
}

// IsZero reports whether the range was never set.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether the calendar date of t falls inside r.
func (r Range) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(Date(r.Start)) && !d.After(Date(r.End))
}

// Equal compares calendar dates only.
func (r Range) Equal(o Range) bool {
	return Date(r.Start).Equal(Date(o.Start)) && Date(r.End).Equal(Date(o.End))
}
