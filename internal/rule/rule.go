// Package rule implements DateRule, a set of optional calendar constraints
// that is either tested against a date (Match) or resolved to the single
// date it denotes in a year (ResolveDate).
package rule

import (
	"fmt"
	"iter"
	"time"

	"rostercal/internal/calendar"
	"rostercal/internal/daterange"
)

// WeekGroup tags a rule for bi-weekly alternation.
type WeekGroup int

const (
	NoWeekGroup WeekGroup = iota
	FirstWeekGroup
	SecondWeekGroup
)

func (g WeekGroup) String() string {
	switch g {
	case FirstWeekGroup:
		return "first"
	case SecondWeekGroup:
		return "second"
	default:
		return ""
	}
}

// DateRule is a conjunction of independent, optional constraints. Zero
// values mean "unset": Month, DayOfMonth, WeekOfMonth and Nth are 1-based so
// 0 never denotes a real value, the booleans only constrain when true, and
// DayOfWeek, StartTime and EndTime are pointers because their zero values are
// meaningful. A zero DateRule matches every date.
type DateRule struct {
	Name string

	Month       time.Month
	DayOfMonth  int
	WeekOfMonth int

	FirstOfMonth     bool
	LastOfMonth      bool
	FirstWeekOfMonth bool
	LastWeekOfMonth  bool

	DayOfWeek *time.Weekday
	// Nth is the occurrence of DayOfWeek within the month (4 with Thursday is
	// the 4th Thursday). It never matches without DayOfWeek, or when negative.
	Nth int

	StartTime *calendar.TimeOfDay
	EndTime   *calendar.TimeOfDay

	// WeekStart is the first day of the week used for week-of-month
	// numbering. The zero value is Sunday.
	WeekStart time.Weekday

	Group WeekGroup
}

// Weekday returns a pointer for DateRule.DayOfWeek.
func Weekday(d time.Weekday) *time.Weekday { return &d }

// At returns a pointer for DateRule.StartTime / EndTime.
func At(hour, minute int) *calendar.TimeOfDay {
	return &calendar.TimeOfDay{Hour: hour, Minute: minute}
}

// Match reports whether date satisfies every constraint set on r. Only the
// calendar date of the argument is considered.
func (r DateRule) Match(date time.Time) bool {
	if r.Month != 0 && r.Month != date.Month() {
		return false
	}
	lastOfMonth := calendar.LastOfMonth(date)
	if r.FirstOfMonth && date.Day() != 1 {
		return false
	}
	if r.LastOfMonth && date.Day() != lastOfMonth.Day() {
		return false
	}
	if r.DayOfMonth != 0 && r.DayOfMonth != date.Day() {
		return false
	}
	if r.DayOfWeek != nil && *r.DayOfWeek != date.Weekday() {
		return false
	}

	if r.WeekOfMonth != 0 || r.FirstWeekOfMonth || r.LastWeekOfMonth {
		week := calendar.WeekOfMonth(date, r.WeekStart)
		if r.WeekOfMonth != 0 && r.WeekOfMonth != week {
			return false
		}
		if r.FirstWeekOfMonth && week != 1 {
			return false
		}
		if r.LastWeekOfMonth {
			if r.DayOfWeek != nil {
				// "last Friday": exactly one day, not the whole last week.
				last := calendar.LastWeekdayOfMonth(date.Year(), date.Month(), *r.DayOfWeek)
				if !calendar.SameDay(date, last) {
					return false
				}
			} else if week != calendar.WeekOfMonth(lastOfMonth, r.WeekStart) {
				return false
			}
		}
	}

	if r.Nth != 0 {
		if r.DayOfWeek == nil || r.Nth < 0 {
			return false
		}
		// date already has the right weekday here, so it is occurrence
		// (day-1)/7+1 counting from day 1.
		if (date.Day()-1)/7+1 != r.Nth {
			return false
		}
	}
	return true
}

// ResolveDate returns the canonical date r denotes in year, using r.Month or
// January when the rule has no month.
func (r DateRule) ResolveDate(year int) (time.Time, error) {
	month := r.Month
	if month == 0 {
		month = time.January
	}
	return r.ResolveDateIn(year, month)
}

// ResolveDateIn is ResolveDate for an explicit month. The first applicable
// constraint wins: first/last of month, day of month, then the weekday
// forms. A rule with none of them resolves to day 1.
//
// It returns calendar.ErrNoSuchDate when the denoted occurrence does not
// exist in that month; the result never spills into a neighbouring month.
func (r DateRule) ResolveDateIn(year int, month time.Month) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("month %d: %w", month, calendar.ErrNoSuchDate)
	}
	first := calendar.Date(year, month, 1)

	switch {
	case r.FirstOfMonth:
		return first, nil
	case r.LastOfMonth:
		return calendar.LastOfMonth(first), nil
	case r.DayOfMonth != 0:
		if r.DayOfMonth < 1 || r.DayOfMonth > calendar.DaysInMonth(year, month) {
			return time.Time{}, fmt.Errorf("day %d of %d-%02d: %w", r.DayOfMonth, year, month, calendar.ErrNoSuchDate)
		}
		return calendar.Date(year, month, r.DayOfMonth), nil
	case r.DayOfWeek != nil:
		return r.resolveWeekday(year, month, *r.DayOfWeek)
	}
	return first, nil
}

func (r DateRule) resolveWeekday(year int, month time.Month, wd time.Weekday) (time.Time, error) {
	switch {
	case r.Nth > 0:
		return calendar.NthWeekdayOfMonth(year, month, wd, r.Nth)
	case r.LastWeekOfMonth:
		return calendar.LastWeekdayOfMonth(year, month, wd), nil
	case r.FirstWeekOfMonth:
		return calendar.NthWeekdayOfMonth(year, month, wd, 1)
	case r.WeekOfMonth != 0:
		firstOcc, err := calendar.NthWeekdayOfMonth(year, month, wd, 1)
		if err != nil {
			return time.Time{}, err
		}
		d := firstOcc.AddDate(0, 0, 7*(r.WeekOfMonth-1))
		if r.WeekOfMonth < 1 || d.Month() != month {
			return time.Time{}, fmt.Errorf("week %d %s of %d-%02d: %w", r.WeekOfMonth, wd, year, month, calendar.ErrNoSuchDate)
		}
		return d, nil
	}
	return calendar.NthWeekdayOfMonth(year, month, wd, 1)
}

// AllDatesInYear yields, in ascending order, every date of year that r
// matches. Each range over the sequence walks the year afresh.
func (r DateRule) AllDatesInYear(year int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		end := calendar.Date(year+1, time.January, 1)
		for d := calendar.Date(year, time.January, 1); d.Before(end); d = d.AddDate(0, 0, 1) {
			if r.Match(d) && !yield(d) {
				return
			}
		}
	}
}

// ToDateRange places r's time window on date's calendar day. A missing
// start is midnight and a missing end is the last instant of the day. An
// end earlier than the start is taken to be on the following day.
func (r DateRule) ToDateRange(date time.Time) daterange.DateRange {
	day := calendar.StartOfDay(date)
	start := day
	if r.StartTime != nil {
		start = r.StartTime.On(day)
	}
	end := calendar.EndOfDay(day)
	if r.EndTime != nil {
		end = r.EndTime.On(day)
		if end.Before(start) {
			end = r.EndTime.On(day.AddDate(0, 0, 1))
		}
	}
	return daterange.DateRange{Start: start, End: end}
}
