package daterange

import (
	"time"

	"rostercal/internal/calendar"
)

// WeekBucket is one contiguous run of days produced by PartitionByWeek.
// Index is 1-based, in traversal order.
type WeekBucket struct {
	Index int
	Days  []time.Time
}

// SnapToWeeks widens the range to whole weeks: Start moves to midnight of its
// week's first day, End to the last instant of its week.
func (r DateRange) SnapToWeeks(firstDayOfWeek time.Weekday) DateRange {
	start := calendar.StartOfDay(calendar.FirstOfWeek(r.Start, firstDayOfWeek))
	end := calendar.StartOfDay(calendar.FirstOfWeek(r.End, firstDayOfWeek)).AddDate(0, 0, 7).Add(-calendar.Tick)
	return DateRange{Start: start, End: end}
}

// PartitionByWeek walks the range one day at a time from Start and closes a
// bucket each time the walk reaches End's weekday. Days left over after the
// last closed bucket are dropped.
//
// With snapToFullWeeks the range is first widened by SnapToWeeks, so End's
// weekday is the day before firstDayOfWeek and every bucket holds seven days.
// Without it, bucket boundaries follow End's weekday only and the first
// bucket may be short.
func (r DateRange) PartitionByWeek(firstDayOfWeek time.Weekday, snapToFullWeeks bool) []WeekBucket {
	if snapToFullWeeks {
		r = r.SnapToWeeks(firstDayOfWeek)
	}

	var (
		buckets []WeekBucket
		current []time.Time
	)
	closing := r.End.Weekday()
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		current = append(current, d)
		if d.Weekday() == closing {
			buckets = append(buckets, WeekBucket{Index: len(buckets) + 1, Days: current})
			current = nil
		}
	}
	return buckets
}

// DaysByWeek is PartitionByWeek with each instant reduced to its date.
func (r DateRange) DaysByWeek(firstDayOfWeek time.Weekday, snapToFullWeeks bool) []WeekBucket {
	buckets := r.PartitionByWeek(firstDayOfWeek, snapToFullWeeks)
	for i := range buckets {
		for j, d := range buckets[i].Days {
			buckets[i].Days[j] = calendar.StartOfDay(d)
		}
	}
	return buckets
}
