package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"rostercal/internal/rule"
)

// ErrNotExpressible is returned by RRule for rules whose semantics have no
// RFC 5545 equivalent, e.g. week-of-month buckets.
var ErrNotExpressible = errors.New("rule has no RRULE equivalent")

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// RRule returns the recurrence rule generating the same dates r matches,
// starting at dtstart. Only these shapes are supported:
//
//   - an optional month, plus
//   - at most one of first-of-month, last-of-month or a day of month, plus
//   - an optional weekday, either plain or as an nth / last occurrence (the
//     occurrence forms cannot be combined with a day of month).
func RRule(r rule.DateRule, dtstart time.Time) (*rrule.RRule, error) {
	opt, err := rruleOption(r)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(opt)
}

// RRuleString is the RRULE property value for r, without DTSTART.
func RRuleString(r rule.DateRule) (string, error) {
	opt, err := rruleOption(r)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

func rruleOption(r rule.DateRule) (rrule.ROption, error) {
	opt := rrule.ROption{
		Freq: rrule.DAILY,
		Wkst: rruleWeekdays[r.WeekStart],
	}

	if r.WeekOfMonth != 0 || r.FirstWeekOfMonth || r.Nth < 0 {
		return opt, ErrNotExpressible
	}
	if (r.Nth != 0 || r.LastWeekOfMonth) && r.DayOfWeek == nil {
		return opt, ErrNotExpressible
	}
	if r.Nth != 0 && r.LastWeekOfMonth {
		return opt, ErrNotExpressible
	}

	if r.Month != 0 {
		opt.Bymonth = []int{int(r.Month)}
	}

	days := 0
	if r.FirstOfMonth {
		opt.Bymonthday = append(opt.Bymonthday, 1)
		days++
	}
	if r.LastOfMonth {
		opt.Bymonthday = append(opt.Bymonthday, -1)
		days++
	}
	if r.DayOfMonth != 0 {
		opt.Bymonthday = append(opt.Bymonthday, r.DayOfMonth)
		days++
	}
	if days > 1 {
		return opt, ErrNotExpressible
	}
	if days == 1 {
		opt.Freq = rrule.MONTHLY
	}

	if r.DayOfWeek != nil {
		wd := rruleWeekdays[*r.DayOfWeek]
		switch {
		case r.Nth > 0:
			wd = wd.Nth(r.Nth)
		case r.LastWeekOfMonth:
			wd = wd.Nth(-1)
		}
		if r.Nth > 0 || r.LastWeekOfMonth {
			if days > 0 {
				return opt, ErrNotExpressible
			}
			// Occurrence numbers are only relative to the month under MONTHLY.
			opt.Freq = rrule.MONTHLY
		}
		opt.Byweekday = []rrule.Weekday{wd}
	}
	return opt, nil
}
