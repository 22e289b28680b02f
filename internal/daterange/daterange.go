// Package daterange provides an inclusive instant interval and the ways the
// scheduler decomposes it: by day, by week bucket and by single week.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"rostercal/internal/calendar"
)

// ErrInvalidRange is returned by New when end is before start.
var ErrInvalidRange = errors.New("range end is before start")

// DateRange is the inclusive interval [Start, End].
//
// None of the methods modify the receiver; decompositions that adjust the
// bounds work on a copy.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New returns [start, end], rejecting inverted bounds.
func New(start, end time.Time) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%s > %s: %w", start.Format(time.RFC3339), end.Format(time.RFC3339), ErrInvalidRange)
	}
	return DateRange{Start: start, End: end}, nil
}

// Day returns the range from t to one tick before the same time next day.
func Day(t time.Time) DateRange {
	return DateRange{Start: t, End: t.AddDate(0, 0, 1).Add(-calendar.Tick)}
}

// WeekRange returns weekCount whole weeks starting at the week that contains
// t, with weeks beginning on firstDayOfWeek.
func WeekRange(t time.Time, firstDayOfWeek time.Weekday, weekCount int) DateRange {
	if weekCount < 1 {
		weekCount = 1
	}
	start := calendar.StartOfDay(calendar.FirstOfWeek(t, firstDayOfWeek))
	return DateRange{Start: start, End: start.AddDate(0, 0, 7*weekCount).Add(-calendar.Tick)}
}

// MonthRange returns monthCount whole months starting at t's month.
func MonthRange(t time.Time, monthCount int) DateRange {
	if monthCount < 1 {
		monthCount = 1
	}
	start := calendar.FirstOfMonth(t)
	return DateRange{Start: start, End: start.AddDate(0, monthCount, 0).Add(-calendar.Tick)}
}

// YearRange returns yearCount whole calendar years starting at t's year.
func YearRange(t time.Time, yearCount int) DateRange {
	if yearCount < 1 {
		yearCount = 1
	}
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(yearCount, 0, 0).Add(-calendar.Tick)}
}

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns every calendar date from Start's date to End's date, inclusive.
func (r DateRange) Days() []time.Time {
	first := calendar.StartOfDay(r.Start)
	n := calendar.DaysBetween(first, r.End) + 1
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, first.AddDate(0, 0, i))
	}
	return days
}

// SliceWeek extracts the weekNumber-th (1-based) seven-day week of the range,
// aligned on firstDayOfWeek. It reports false when the range touches fewer
// than seven calendar days or the week lies past the end of the range.
func (r DateRange) SliceWeek(firstDayOfWeek time.Weekday, weekNumber int) (DateRange, bool) {
	if weekNumber < 1 || calendar.DaysBetween(r.Start, r.End)+1 < 7 {
		return DateRange{}, false
	}
	from := r.Start
	if weekNumber > 1 {
		from = r.Start.AddDate(0, 0, 7*(weekNumber-1))
		limit := calendar.StartOfDay(calendar.FirstOfWeek(r.End, firstDayOfWeek)).AddDate(0, 0, 7).Add(-calendar.Tick)
		if from.After(limit) {
			return DateRange{}, false
		}
	}
	return WeekRange(from, firstDayOfWeek, 1), true
}

func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + " - " + r.End.Format(time.DateOnly)
}
