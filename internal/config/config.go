package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"rostercal/internal/calendar"
	appLog "rostercal/internal/log"
)

const (
	defaultWeekStart         = "monday"
	defaultRefreshCron       = "0 * * * *"
	defaultHorizonDays       = 28
	defaultOutput            = "./var/roster.ics"
	defaultMaxShiftsPerBlock = 5000
)

// RuleConfig is the YAML form of a rule.DateRule. Zero values mean "not
// constrained", as in the rule itself.
type RuleConfig struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Month       int `yaml:"month,omitempty" json:"month,omitempty"`
	DayOfMonth  int `yaml:"day_of_month,omitempty" json:"day_of_month,omitempty"`
	WeekOfMonth int `yaml:"week_of_month,omitempty" json:"week_of_month,omitempty"`

	FirstOfMonth     bool `yaml:"first_of_month,omitempty" json:"first_of_month,omitempty"`
	LastOfMonth      bool `yaml:"last_of_month,omitempty" json:"last_of_month,omitempty"`
	FirstWeekOfMonth bool `yaml:"first_week_of_month,omitempty" json:"first_week_of_month,omitempty"`
	LastWeekOfMonth  bool `yaml:"last_week_of_month,omitempty" json:"last_week_of_month,omitempty"`

	// DayOfWeek is a weekday name, e.g. "thursday" or "thu".
	DayOfWeek string `yaml:"day_of_week,omitempty" json:"day_of_week,omitempty"`
	// Nth selects the nth DayOfWeek of the month.
	Nth int `yaml:"nth,omitempty" json:"nth,omitempty"`

	// Start / End are "HH:MM" or "HH:MM:SS".
	Start string `yaml:"start,omitempty" json:"start,omitempty"`
	End   string `yaml:"end,omitempty" json:"end,omitempty"`

	// WeekNumberingStart is the first weekday for week-of-month numbering.
	// Defaults to sunday.
	WeekNumberingStart string `yaml:"week_numbering_start,omitempty" json:"week_numbering_start,omitempty"`

	// WeekGroup is "", "first" or "second"; only used by biweekly blocks.
	WeekGroup string `yaml:"week_group,omitempty" json:"week_group,omitempty"`
}

// BlockConfig describes a shift block: a named rule set and the cadence it
// is expanded with.
type BlockConfig struct {
	Name string `yaml:"name" json:"name"`
	// Cadence is one of none, daily, weekly, biweekly, monthly, yearly.
	Cadence           string       `yaml:"cadence" json:"cadence"`
	AdjustToFullWeeks bool         `yaml:"adjust_to_full_weeks,omitempty" json:"adjust_to_full_weeks,omitempty"`
	Rules             []RuleConfig `yaml:"rules" json:"rules"`
}

// Config is the top-level application configuration.
type Config struct {
	// WeekStart is the first day of the week used to group days into weeks
	// for weekly and biweekly blocks. Defaults to "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a standard 5-field cron spec controlling how often the
	// calendar file is regenerated when not running with --once.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is the number of days expanded from today when no explicit
	// range is given.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// Output is where the iCalendar file is written.
	Output string `yaml:"output" json:"output"`

	// MaxShiftsPerBlock caps the expansion of a single block.
	MaxShiftsPerBlock int `yaml:"max_shifts_per_block" json:"max_shifts_per_block"`

	Blocks   []BlockConfig `yaml:"blocks" json:"blocks"`
	Holidays []RuleConfig  `yaml:"holidays" json:"holidays"`
}

// DefaultConfig returns an in-memory default configuration with a Monday to
// Friday day shift.
func DefaultConfig() *Config {
	weekdays := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	rules := make([]RuleConfig, 0, len(weekdays))
	for _, d := range weekdays {
		rules = append(rules, RuleConfig{DayOfWeek: d, Start: "09:00", End: "17:00"})
	}
	return &Config{
		WeekStart:         defaultWeekStart,
		RefreshCron:       defaultRefreshCron,
		HorizonDays:       defaultHorizonDays,
		Output:            defaultOutput,
		MaxShiftsPerBlock: defaultMaxShiftsPerBlock,
		Blocks: []BlockConfig{
			{Name: "Day shift", Cadence: "weekly", Rules: rules},
		},
		Holidays: []RuleConfig{
			{Name: "New Year's Day", Month: 1, DayOfMonth: 1},
			{Name: "Thanksgiving", Month: 11, DayOfWeek: "thursday", Nth: 4},
			{Name: "Christmas Day", Month: 12, DayOfMonth: 25},
		},
	}
}

// Normalize fills in missing/zero values with defaults. Values that are set
// but invalid are left as they are for Validate to report.
func (c *Config) Normalize() {
	if c.WeekStart == "" {
		c.WeekStart = defaultWeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.MaxShiftsPerBlock <= 0 {
		c.MaxShiftsPerBlock = defaultMaxShiftsPerBlock
	}
	if c.Blocks == nil {
		c.Blocks = []BlockConfig{}
	}
	if c.Holidays == nil {
		c.Holidays = []RuleConfig{}
	}
}

// FirstDayOfWeek returns the parsed WeekStart.
func (c *Config) FirstDayOfWeek() time.Weekday {
	wd, err := calendar.ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Monday
	}
	return wd
}

// Validate checks the refresh schedule and every block and holiday rule,
// reporting the first problem found.
func (c *Config) Validate() error {
	if _, err := calendar.ParseWeekday(c.WeekStart); err != nil {
		return fmt.Errorf("week_start: %w", err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", c.RefreshCron, err)
	}
	seen := make(map[string]bool, len(c.Blocks))
	for i, b := range c.Blocks {
		if b.Name == "" {
			return fmt.Errorf("blocks[%d]: name is empty", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("blocks[%d]: duplicate name %q", i, b.Name)
		}
		seen[b.Name] = true
		if _, err := b.Scheduler(time.Monday); err != nil {
			return fmt.Errorf("blocks[%d] %q: %w", i, b.Name, err)
		}
	}
	for i, h := range c.Holidays {
		if h.Name == "" {
			return fmt.Errorf("holidays[%d]: name is empty", i)
		}
		if _, err := h.ToRule(); err != nil {
			return fmt.Errorf("holidays[%d] %q: %w", i, h.Name, err)
		}
	}
	return nil
}

// Load reads the YAML config at path and fills in defaults. A missing file
// is not an error: DefaultConfig is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		appLog.Info("default config written", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save normalizes cfg and replaces the file at path with its YAML form. The
// file is renamed into place so readers never see a partial config, and ends
// up readable by the owner only.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rostercal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
