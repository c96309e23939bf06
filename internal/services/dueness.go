// Package services holds the business logic: ledger posting, the settlement
// engine, category statistics and the thin user/savings orchestration.
//
// This file contains the dueness checks the settlement pass runs for every
// obligation. They are pure functions of the obligation and the clock so
// idempotence is easy to reason about and to test.
package services

import (
	"time"

	"ledger/internal/core"
)

// RecurringDue reports whether a recurring obligation should settle now.
// An obligation is due when its billing period key differs from the current
// one and the day of month has been reached. Checking the stored period key
// makes re-runs within the same period no-ops.
func RecurringDue(rec core.Recurring, now time.Time) bool {
	if rec.LastMonthPaid == core.PeriodKey(now) {
		return false
	}
	// Clamp the target day for short months so a charge on the 31st still
	// fires in February.
	target := rec.DayOfMonth
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if target > lastDay {
		target = lastDay
	}
	return now.Day() >= target
}

// DeadlineDue reports whether a one-shot obligation should auto-settle.
// Comparison happens on epoch milliseconds; calendar-date truncation never
// enters the picture.
func DeadlineDue(o core.DeadlineObligation, nowMs int64) bool {
	if !o.AutoSettle || o.Deadline <= 0 {
		return false
	}
	return nowMs >= o.Deadline
}
