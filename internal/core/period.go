// Package core provides the domain records and calendar math shared by the
// aggregation pipeline.
//
// All bucket math operates on (year, month, day) components only, never on
// wall-clock offsets, so bucket assignment cannot shift near midnight in the
// caller's timezone.
package core

import "time"

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularity selects the bucket width for aggregation.
type Granularity string

// IsValid returns true if the granularity is one of the supported widths.
func (g Granularity) IsValid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// DateColumn returns the date column name carried by aggregate views of this
// granularity.
func (g Granularity) DateColumn() string {
	switch g {
	case Weekly:
		return "week_start"
	case Monthly:
		return "month_start"
	default:
		return "day"
	}
}

// WeekStart returns the Monday that opens the week containing d, at UTC
// midnight. Weeks run Monday through Sunday: a Sunday resolves to the Monday
// six days earlier, never to the following day.
func WeekStart(d time.Time) time.Time {
	year, month, day := d.Date()
	wd := int(d.Weekday()) // Sunday == 0
	diff := day - wd + 1
	if wd == 0 {
		diff = day - 6
	}
	return time.Date(year, month, diff, 0, 0, 0, 0, time.UTC)
}

// WeekEnd returns the last instant of the week containing d: the Sunday six
// days after WeekStart, at 23:59:59.999.
func WeekEnd(d time.Time) time.Time {
	start := WeekStart(d)
	year, month, day := start.AddDate(0, 0, 6).Date()
	return time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// Truncate normalizes d down to its bucket start for the given granularity:
// the day itself, the ISO week start, or the first of the calendar month.
// Unsupported granularities truncate to the day.
func Truncate(d time.Time, g Granularity) time.Time {
	year, month, day := d.Date()
	switch g {
	case Weekly:
		return WeekStart(d)
	case Monthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

// BucketKey returns the YYYY-MM-DD key of the bucket containing d.
func BucketKey(d time.Time, g Granularity) string {
	return Truncate(d, g).Format("2006-01-02")
}
