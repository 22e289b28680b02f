package config

import (
	"fmt"
	"strings"
	"time"

	"rostercal/internal/calendar"
	"rostercal/internal/rule"
	"rostercal/internal/scheduler"
)

// ToRule converts the YAML form into a rule.DateRule, checking that every
// set field is within range.
func (rc RuleConfig) ToRule() (rule.DateRule, error) {
	r := rule.DateRule{
		Name:             rc.Name,
		Month:            time.Month(rc.Month),
		DayOfMonth:       rc.DayOfMonth,
		WeekOfMonth:      rc.WeekOfMonth,
		FirstOfMonth:     rc.FirstOfMonth,
		LastOfMonth:      rc.LastOfMonth,
		FirstWeekOfMonth: rc.FirstWeekOfMonth,
		LastWeekOfMonth:  rc.LastWeekOfMonth,
		Nth:              rc.Nth,
	}

	if rc.Month < 0 || rc.Month > 12 {
		return r, fmt.Errorf("month %d out of range 1-12", rc.Month)
	}
	if rc.DayOfMonth < 0 || rc.DayOfMonth > 31 {
		return r, fmt.Errorf("day_of_month %d out of range 1-31", rc.DayOfMonth)
	}
	if rc.WeekOfMonth < 0 || rc.WeekOfMonth > 6 {
		return r, fmt.Errorf("week_of_month %d out of range 1-6", rc.WeekOfMonth)
	}
	if rc.Nth < 0 || rc.Nth > 5 {
		return r, fmt.Errorf("nth %d out of range 1-5", rc.Nth)
	}

	if rc.DayOfWeek != "" {
		wd, err := calendar.ParseWeekday(rc.DayOfWeek)
		if err != nil {
			return r, fmt.Errorf("day_of_week: %w", err)
		}
		r.DayOfWeek = rule.Weekday(wd)
	}
	if rc.Nth != 0 && r.DayOfWeek == nil {
		return r, fmt.Errorf("nth %d needs day_of_week", rc.Nth)
	}
	if rc.WeekNumberingStart != "" {
		wd, err := calendar.ParseWeekday(rc.WeekNumberingStart)
		if err != nil {
			return r, fmt.Errorf("week_numbering_start: %w", err)
		}
		r.WeekStart = wd
	}
	if rc.Start != "" {
		tod, err := calendar.ParseTimeOfDay(rc.Start)
		if err != nil {
			return r, fmt.Errorf("start: %w", err)
		}
		r.StartTime = &tod
	}
	if rc.End != "" {
		tod, err := calendar.ParseTimeOfDay(rc.End)
		if err != nil {
			return r, fmt.Errorf("end: %w", err)
		}
		r.EndTime = &tod
	}

	switch strings.ToLower(strings.TrimSpace(rc.WeekGroup)) {
	case "":
	case "first":
		r.Group = rule.FirstWeekGroup
	case "second":
		r.Group = rule.SecondWeekGroup
	default:
		return r, fmt.Errorf("week_group %q: want first or second", rc.WeekGroup)
	}
	return r, nil
}

// Scheduler builds the scheduler for this block. firstDayOfWeek is the
// configured week start.
func (b BlockConfig) Scheduler(firstDayOfWeek time.Weekday) (scheduler.Scheduler, error) {
	cadence, err := scheduler.ParseCadence(b.Cadence)
	if err != nil {
		return scheduler.Scheduler{}, err
	}
	rules := make([]rule.DateRule, 0, len(b.Rules))
	for i, rc := range b.Rules {
		r, err := rc.ToRule()
		if err != nil {
			return scheduler.Scheduler{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	s := scheduler.New(cadence, rules...)
	s.FirstDayOfWeek = firstDayOfWeek
	s.AdjustToFullWeeks = b.AdjustToFullWeeks
	return s, nil
}
