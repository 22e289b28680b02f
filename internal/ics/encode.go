package ics

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"rostercal/internal/calendar"
	"rostercal/internal/model"
)

const productID = "-//rostercal//shift calendar//EN"

// floatingFormat is an RFC 5545 local date-time without Z or TZID: shifts are
// wall-clock times and show at the same hour in every client time zone.
const floatingFormat = "20060102T150405"

// uidNamespace seeds the name-based UUIDs used as VEVENT UIDs, so the same
// shift gets the same UID on every export.
var uidNamespace = uuid.MustParse("6f2c4a8e-3b1d-5e7f-9a0b-c4d5e6f70812")

// EncodeOptions controls calendar-level properties.
type EncodeOptions struct {
	// Name is exposed as X-WR-CALNAME.
	Name string
	// Stamp is written as DTSTAMP on every event. Keeping it stable keeps
	// the output byte-identical between runs with the same input.
	Stamp time.Time
}

// Encode renders shifts as timed VEVENTs and holidays as all-day VEVENTs.
// Shift times are written as floating times; their location is ignored.
//
//   - UID is derived from the shift's InstanceKey (or holiday name + date).
//   - SUMMARY is the block name, with the rule name appended when present.
//   - CATEGORIES is "shift" or "holiday".
func Encode(shifts []model.Shift, holidays []model.Holiday, opts EncodeOptions) ([]byte, error) {
	if opts.Stamp.IsZero() {
		return nil, errors.New("encode: stamp is zero")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, s := range shifts {
		if s.InstanceKey == "" {
			return nil, errors.New("encode: shift without instance key")
		}
		ev := cal.AddEvent(eventUID(s.InstanceKey))
		ev.SetDtStampTime(opts.Stamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, s.Start.Format(floatingFormat))
		ev.SetProperty(ical.ComponentPropertyDtEnd, s.End.Format(floatingFormat))
		ev.SetSummary(shiftSummary(s))
		ev.AddProperty(ical.ComponentPropertyCategories, "shift")
	}

	for _, h := range holidays {
		day := calendar.StartOfDay(h.Date)
		ev := cal.AddEvent(eventUID("holiday/" + h.Name + "/" + day.Format(time.DateOnly)))
		ev.SetDtStampTime(opts.Stamp)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(h.Name)
		ev.AddProperty(ical.ComponentPropertyCategories, "holiday")
	}

	return []byte(cal.Serialize()), nil
}

func eventUID(key string) string {
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@rostercal"
}

func shiftSummary(s model.Shift) string {
	if s.Rule == "" || s.Rule == s.Block {
		return s.Block
	}
	return s.Block + " (" + s.Rule + ")"
}
