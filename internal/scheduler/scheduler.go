// Package scheduler expands a list of date rules over a date range according
// to a recurrence cadence.
package scheduler

import (
	"time"

	"rostercal/internal/daterange"
	appLog "rostercal/internal/log"
	"rostercal/internal/rule"
)

// Match is one expanded occurrence: the rule that fired, the date it fired
// on and the concrete interval it produced.
type Match struct {
	RuleIndex int
	Date      time.Time
	Range     daterange.DateRange
}

// Scheduler holds the configuration of one expansion. It keeps no state
// between calls, so a single value can expand many ranges concurrently.
type Scheduler struct {
	Rules             []rule.DateRule
	Cadence           Cadence
	FirstDayOfWeek    time.Weekday
	AdjustToFullWeeks bool
}

// New returns a Scheduler with weeks starting on Monday.
func New(cadence Cadence, rules ...rule.DateRule) Scheduler {
	return Scheduler{
		Rules:          rules,
		Cadence:        cadence,
		FirstDayOfWeek: time.Monday,
	}
}

// Expand returns the interval of every match, in scan order.
func (s Scheduler) Expand(r daterange.DateRange) []daterange.DateRange {
	matches := s.ExpandMatches(r)
	out := make([]daterange.DateRange, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Range)
	}
	return out
}

// ExpandMatches walks r according to the cadence and tests every rule
// against every candidate date:
//
//   - None stops at the first date any rule matches, taking the first
//     matching rule in list order.
//   - Daily, Monthly and Yearly scan every date; periodicity beyond a day
//     comes from the rules themselves.
//   - Weekly scans the week buckets of r (see DateRange.DaysByWeek).
//   - BiWeekly alternates between FirstWeekGroup and SecondWeekGroup rules
//     on consecutive buckets when any rule carries a group, and otherwise
//     applies all rules on odd buckets only.
//
// With no rules every cadence but None yields nothing.
func (s Scheduler) ExpandMatches(r daterange.DateRange) []Match {
	if len(s.Rules) == 0 && s.Cadence != None {
		return nil
	}

	var out []Match
	switch s.Cadence {
	case None:
		out = s.firstMatch(r)
	case Weekly:
		for _, week := range r.DaysByWeek(s.FirstDayOfWeek, s.AdjustToFullWeeks) {
			out = s.appendMatches(out, week.Days, allRules)
		}
	case BiWeekly:
		out = s.biWeekly(r)
	default:
		// Monthly and Yearly have no traversal of their own yet.
		out = s.appendMatches(out, r.Days(), allRules)
	}

	appLog.Debug("scheduler expanded range",
		"range", r.String(),
		"cadence", s.Cadence.String(),
		"rules", len(s.Rules),
		"matches", len(out),
	)
	return out
}

func (s Scheduler) firstMatch(r daterange.DateRange) []Match {
	for _, d := range r.Days() {
		for i, rl := range s.Rules {
			if rl.Match(d) {
				return []Match{{RuleIndex: i, Date: d, Range: rl.ToDateRange(d)}}
			}
		}
	}
	return nil
}

func (s Scheduler) biWeekly(r daterange.DateRange) []Match {
	grouped := false
	for _, rl := range s.Rules {
		if rl.Group != rule.NoWeekGroup {
			grouped = true
			break
		}
	}

	var out []Match
	for _, week := range r.DaysByWeek(s.FirstDayOfWeek, s.AdjustToFullWeeks) {
		odd := week.Index%2 == 1
		switch {
		case grouped && odd:
			out = s.appendMatches(out, week.Days, inGroup(rule.FirstWeekGroup))
		case grouped:
			out = s.appendMatches(out, week.Days, inGroup(rule.SecondWeekGroup))
		case odd:
			out = s.appendMatches(out, week.Days, allRules)
		}
	}
	return out
}

func allRules(rule.DateRule) bool { return true }

func inGroup(g rule.WeekGroup) func(rule.DateRule) bool {
	return func(r rule.DateRule) bool { return r.Group == g }
}

func (s Scheduler) appendMatches(out []Match, days []time.Time, use func(rule.DateRule) bool) []Match {
	for _, d := range days {
		for i, rl := range s.Rules {
			if use(rl) && rl.Match(d) {
				out = append(out, Match{RuleIndex: i, Date: d, Range: rl.ToDateRange(d)})
			}
		}
	}
	return out
}
