// Package calendar holds the date arithmetic shared by rules, ranges and the
// scheduler. Dates are plain time.Time values truncated to midnight in their
// own location; no time-zone conversion happens here.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Tick is the smallest time unit used to close half-open periods,
// e.g. a week ends one Tick before the next week starts.
const Tick = time.Nanosecond

// ErrNoSuchDate is returned when a requested occurrence does not exist in the
// target month (a "5th Monday" in a four-Monday month, February 30th, ...).
var ErrNoSuchDate = errors.New("no such date")

// Date returns midnight of the given calendar day in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay drops the time-of-day part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-Tick)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// FirstOfMonth returns day 1 of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastOfMonth returns the last day of t's month. Going through the first of
// the next month handles December and leap years.
func LastOfMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return LastOfMonth(Date(year, month, 1)).Day()
}

// WeekOfMonth returns the 1-based week of the month t falls in, with weeks
// starting on firstDayOfWeek. Day 1 is always in week 1.
func WeekOfMonth(t time.Time, firstDayOfWeek time.Weekday) int {
	offset := (7 + int(FirstOfMonth(t).Weekday()) - int(firstDayOfWeek)) % 7
	return (t.Day()-1+offset)/7 + 1
}

// FirstOfWeek moves t back to the most recent firstDayOfWeek (t itself if it
// already is one). The time of day is preserved.
func FirstOfWeek(t time.Time, firstDayOfWeek time.Weekday) time.Time {
	diff := (7 + int(t.Weekday()) - int(firstDayOfWeek)) % 7
	return t.AddDate(0, 0, -diff)
}

// LastOfWeek returns the sixth day after FirstOfWeek.
func LastOfWeek(t time.Time, firstDayOfWeek time.Weekday) time.Time {
	return FirstOfWeek(t, firstDayOfWeek).AddDate(0, 0, 6)
}

// NthWeekdayOfMonth returns the nth weekday of the month, counted from day 1.
// It returns ErrNoSuchDate when the month has fewer than n such weekdays.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, fmt.Errorf("occurrence %d of %s: %w", n, weekday, ErrNoSuchDate)
	}
	first := Date(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+7*(n-1))
	if d.Month() != month {
		return time.Time{}, fmt.Errorf("occurrence %d of %s in %d-%02d: %w", n, weekday, year, month, ErrNoSuchDate)
	}
	return d, nil
}

// LastWeekdayOfMonth walks back from the end of the month to the last
// occurrence of weekday.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	d := LastOfMonth(Date(year, month, 1))
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
