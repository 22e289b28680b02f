package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"rostercal/internal/calendar"
	"rostercal/internal/config"
	"rostercal/internal/daterange"
	"rostercal/internal/ics"
	appLog "rostercal/internal/log"
	"rostercal/internal/roster"
	"rostercal/internal/rule"
)

// pipeline runs one expand+encode+write cycle. It is shared between the
// initial run and the cron job, so runs are serialized.
type pipeline struct {
	conf *config.Config
	from string
	to   string
	now  func() time.Time

	mu     sync.Mutex
	writer *ics.Writer
}

func (p *pipeline) run() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := time.Now()
	body, err := p.generate()
	if err != nil {
		return err
	}
	if p.writer == nil {
		p.writer = ics.NewWriter(p.conf.Output)
	}
	res, err := p.writer.Write(body)
	if err != nil {
		return err
	}
	appLog.Info("generate completed", "path", p.writer.Path(), "changed", res.Changed, "took", time.Since(started).String())
	return nil
}

// generate expands every block over the resolved range and encodes the
// result together with the holidays falling in that range.
func (p *pipeline) generate() ([]byte, error) {
	rng, err := resolveRange(p.from, p.to, p.now(), p.conf.HorizonDays)
	if err != nil {
		return nil, err
	}

	blocks, err := buildBlocks(p.conf)
	if err != nil {
		return nil, err
	}
	res, err := roster.Expand(blocks, roster.ExpandConfig{
		Range:             rng,
		MaxShiftsPerBlock: p.conf.MaxShiftsPerBlock,
	})
	if err != nil {
		return nil, err
	}

	holidayRules := make([]rule.DateRule, 0, len(p.conf.Holidays))
	for _, h := range p.conf.Holidays {
		r, err := h.ToRule()
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		holidayRules = append(holidayRules, r)
	}
	all := roster.ResolveHolidays(holidayRules, rng.Start.Year(), rng.End.Year())
	holidays := all[:0]
	for _, h := range all {
		if rng.Contains(h.Date) {
			holidays = append(holidays, h)
		}
	}

	appLog.Debug("expanded range", "range", rng, "shifts", len(res.Shifts), "holidays", len(holidays))

	// DTSTAMP is pinned to the day so unchanged rosters encode identically.
	stamp := calendar.StartOfDay(p.now().UTC())
	return ics.Encode(res.Shifts, holidays, ics.EncodeOptions{Name: "Roster", Stamp: stamp})
}

func buildBlocks(conf *config.Config) ([]roster.Block, error) {
	blocks := make([]roster.Block, 0, len(conf.Blocks))
	for _, bc := range conf.Blocks {
		s, err := bc.Scheduler(conf.FirstDayOfWeek())
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", bc.Name, err)
		}
		blocks = append(blocks, roster.Block{Name: bc.Name, Scheduler: s})
	}
	return blocks, nil
}

// resolveRange turns the --from/--to flags into a whole-day range. Missing
// bounds default to today and today+horizon-1.
func resolveRange(from, to string, now time.Time, horizonDays int) (daterange.DateRange, error) {
	start := calendar.Date(now.Year(), now.Month(), now.Day())
	if from != "" {
		d, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return daterange.DateRange{}, fmt.Errorf("--from: %w", err)
		}
		start = d
	}

	if horizonDays <= 0 {
		horizonDays = 1
	}
	end := start.AddDate(0, 0, horizonDays-1)
	if to != "" {
		d, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return daterange.DateRange{}, fmt.Errorf("--to: %w", err)
		}
		end = d
	}
	if end.Before(start) {
		return daterange.DateRange{}, errors.New("--to is before --from")
	}
	return daterange.New(start, calendar.EndOfDay(end))
}

func logRRules(conf *config.Config) {
	report := func(kind, owner string, rc config.RuleConfig) {
		r, err := rc.ToRule()
		if err != nil {
			return
		}
		s, err := ics.RRuleString(r)
		if err != nil {
			appLog.Info("rule has no rrule", kind, owner, "rule", rc.Name, "reason", err.Error())
			return
		}
		appLog.Info("rule rrule", kind, owner, "rule", rc.Name, "rrule", s)
	}
	for _, b := range conf.Blocks {
		for _, rc := range b.Rules {
			report("block", b.Name, rc)
		}
	}
	for _, h := range conf.Holidays {
		report("holiday", h.Name, h)
	}
}
