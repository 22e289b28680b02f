package ics

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rostercal/internal/calendar"
	"rostercal/internal/model"
	"rostercal/internal/rule"
)

var stamp = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleShifts() []model.Shift {
	return []model.Shift{
		{
			Block:       "Day shift",
			Rule:        "Mon",
			InstanceKey: "Day shift@2025-12-01T09:00:00Z",
			Start:       time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
			End:         time.Date(2025, 12, 1, 17, 0, 0, 0, time.UTC),
		},
		{
			Block:       "Night",
			InstanceKey: "Night@2025-12-01T22:00:00Z",
			Start:       time.Date(2025, 12, 1, 22, 0, 0, 0, time.UTC),
			End:         time.Date(2025, 12, 2, 6, 0, 0, 0, time.UTC),
		},
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	holidays := []model.Holiday{{Name: "Christmas", Date: calendar.Date(2025, 12, 25)}}

	body, err := Encode(sampleShifts(), holidays, EncodeOptions{Name: "Roster", Stamp: stamp})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 3)

	assert.Equal(t, "20251201T090000", events[0].GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20251202T060000", events[1].GetProperty(ical.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Day shift (Mon)", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Night", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Christmas", events[2].GetProperty(ical.ComponentPropertySummary).Value)

	text := string(body)
	assert.Contains(t, text, "X-WR-CALNAME:Roster")
	assert.Contains(t, text, "DTSTART;VALUE=DATE:20251225")
	assert.Contains(t, text, "CATEGORIES:holiday")
}

func TestEncodeKeepsWallClockTimes(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	shifts := []model.Shift{{
		Block:       "Day shift",
		InstanceKey: "Day shift@2025-12-01T09:00:00+09:00",
		Start:       time.Date(2025, 12, 1, 9, 0, 0, 0, seoul),
		End:         time.Date(2025, 12, 1, 17, 0, 0, 0, seoul),
	}}

	body, err := Encode(shifts, nil, EncodeOptions{Stamp: stamp})
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "DTSTART:20251201T090000\r\n")
	assert.Contains(t, text, "DTEND:20251201T170000\r\n")
	assert.NotContains(t, text, "TZID")
	assert.NotContains(t, text, "DTSTART:20251201T000000Z")
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := Encode(sampleShifts(), nil, EncodeOptions{Stamp: stamp})
	require.NoError(t, err)
	b, err := Encode(sampleShifts(), nil, EncodeOptions{Stamp: stamp})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.Equal(t, eventUID("Night@2025-12-01T22:00:00Z"), eventUID("Night@2025-12-01T22:00:00Z"))
	assert.NotEqual(t, eventUID("Night@2025-12-01T22:00:00Z"), eventUID("Night@2025-12-08T22:00:00Z"))
	assert.True(t, strings.HasSuffix(eventUID("x"), "@rostercal"))
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := Encode(sampleShifts(), nil, EncodeOptions{})
	assert.Error(t, err)

	_, err = Encode([]model.Shift{{Block: "x"}}, nil, EncodeOptions{Stamp: stamp})
	assert.Error(t, err)
}

func TestRRuleMatchesRuleDates(t *testing.T) {
	cases := []struct {
		name string
		rule rule.DateRule
	}{
		{"thanksgiving", rule.DateRule{Month: time.November, DayOfWeek: rule.Weekday(time.Thursday), Nth: 4}},
		{"last friday", rule.DateRule{DayOfWeek: rule.Weekday(time.Friday), LastWeekOfMonth: true}},
		{"first of month", rule.DateRule{FirstOfMonth: true}},
		{"last of month", rule.DateRule{LastOfMonth: true}},
		{"july 4", rule.DateRule{Month: time.July, DayOfMonth: 4}},
		{"wednesdays", rule.DateRule{DayOfWeek: rule.Weekday(time.Wednesday)}},
		{"day 31", rule.DateRule{DayOfMonth: 31}},
		{"friday 13th", rule.DateRule{DayOfMonth: 13, DayOfWeek: rule.Weekday(time.Friday)}},
		{"november", rule.DateRule{Month: time.November}},
	}

	for _, year := range []int{2024, 2025} {
		from := calendar.Date(year, time.January, 1)
		to := calendar.EndOfDay(calendar.Date(year, time.December, 31))
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rr, err := RRule(tc.rule, from)
				require.NoError(t, err)

				want := slices.Collect(tc.rule.AllDatesInYear(year))
				got := rr.Between(from, to, true)
				require.NotEmpty(t, want)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestRRuleString(t *testing.T) {
	s, err := RRuleString(rule.DateRule{Month: time.November, DayOfWeek: rule.Weekday(time.Thursday), Nth: 4})
	require.NoError(t, err)
	assert.Contains(t, s, "FREQ=MONTHLY")
	assert.Contains(t, s, "BYMONTH=11")
	assert.Contains(t, s, "BYDAY=+4TH")
}

func TestRRuleNotExpressible(t *testing.T) {
	cases := map[string]rule.DateRule{
		"week of month":        {WeekOfMonth: 2},
		"first week":           {FirstWeekOfMonth: true},
		"last week no weekday": {LastWeekOfMonth: true},
		"nth no weekday":       {Nth: 2},
		"negative nth":         {DayOfWeek: rule.Weekday(time.Monday), Nth: -1},
		"two day selectors":    {FirstOfMonth: true, DayOfMonth: 1},
		"nth and day":          {DayOfWeek: rule.Weekday(time.Monday), Nth: 1, DayOfMonth: 3},
		"nth and last":         {DayOfWeek: rule.Weekday(time.Monday), Nth: 1, LastWeekOfMonth: true},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := RRule(r, stamp)
			assert.ErrorIs(t, err, ErrNotExpressible)
		})
	}
}

func TestWriterSkipsUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "roster.ics")
	w := NewWriter(path)
	assert.Equal(t, path, w.Path())

	res, err := w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.FileExists(t, path)
	assert.FileExists(t, path+".meta.json")

	res, err = w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	require.NoError(t, err)
	assert.False(t, res.Changed)

	res, err = w.Write([]byte("BEGIN:VCALENDAR\r\nX-CHANGED:1\r\nEND:VCALENDAR\r\n"))
	require.NoError(t, err)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-CHANGED")
}

func TestWriterRewritesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.ics")
	w := NewWriter(path)
	body := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")

	_, err := w.Write(body)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	res, err := w.Write(body)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.FileExists(t, path)

	_, err = w.Write(nil)
	assert.Error(t, err)
}
