package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rostercal/internal/calendar"
	"rostercal/internal/config"
)

func fixedNow() time.Time {
	return time.Date(2025, 12, 1, 8, 30, 0, 0, time.UTC)
}

func TestResolveRange(t *testing.T) {
	rng, err := resolveRange("", "", fixedNow(), 7)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2025, 12, 1), rng.Start)
	assert.Equal(t, calendar.EndOfDay(calendar.Date(2025, 12, 7)), rng.End)

	rng, err = resolveRange("2025-12-24", "2025-12-26", fixedNow(), 7)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2025, 12, 24), rng.Start)
	assert.Equal(t, calendar.EndOfDay(calendar.Date(2025, 12, 26)), rng.End)

	_, err = resolveRange("2025-12-26", "2025-12-24", fixedNow(), 7)
	assert.Error(t, err)
	_, err = resolveRange("26/12/2025", "", fixedNow(), 7)
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"--config", "x.yaml", "--once", "-o", "out.ics", "--from", "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", f.configPath)
	assert.True(t, f.once)
	assert.Equal(t, "out.ics", f.out)
	assert.Equal(t, "2025-01-01", f.from)
	assert.False(t, f.rrule)
	assert.Equal(t, "info", f.logLevel)

	f, err = parseFlags([]string{"--log-level", "error"})
	require.NoError(t, err)
	assert.Equal(t, "error", f.logLevel)

	_, err = parseFlags([]string{"--bogus"})
	assert.Error(t, err)
}

func TestPipelineWritesCalendar(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Output = filepath.Join(t.TempDir(), "roster.ics")

	p := &pipeline{conf: conf, from: "2025-12-22", to: "2025-12-28", now: fixedNow}
	require.NoError(t, p.run())

	data, err := os.ReadFile(conf.Output)
	require.NoError(t, err)
	text := string(data)

	// Mon-Fri day shifts, plus Christmas.
	assert.Equal(t, 5, strings.Count(text, "CATEGORIES:shift"))
	assert.Equal(t, 1, strings.Count(text, "CATEGORIES:holiday"))
	assert.Contains(t, text, "DTSTART:20251222T090000\r\n")
	assert.Contains(t, text, "SUMMARY:Christmas Day")
	assert.NotContains(t, text, "Thanksgiving")

	// A second run over the same input leaves the file alone.
	require.NoError(t, p.run())
	again, err := os.ReadFile(conf.Output)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
