package core

import (
	"fmt"
	"time"
)

// PeriodKey returns the billing-period key for a point in time, formatted as
// two-digit month dot two-digit year, e.g. "07.25". Recurring obligations
// store this key in LastMonthPaid to make settlement idempotent per period.
func PeriodKey(t time.Time) string {
	return fmt.Sprintf("%02d.%02d", int(t.Month()), t.Year()%100)
}

// EpochMillis converts a time to the epoch-millisecond representation used
// for created_at and deadlines. Comparisons happen on integers so timezone
// truncation can never reorder events.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis is the inverse of EpochMillis, always in UTC.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// MonthWindow returns the half-open [start, end) epoch-millisecond window of
// a calendar month in UTC.
func MonthWindow(year, month int) (startMs, endMs int64) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.UnixMilli(), end.UnixMilli()
}

// PreviousMonth steps a year/month pair one month back.
func PreviousMonth(year, month int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return t.Year(), int(t.Month())
}
