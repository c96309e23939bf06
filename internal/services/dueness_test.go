package services

import (
	"testing"
	"time"

	"ledger/internal/core"
)

func TestRecurringDue(t *testing.T) {
	tests := []struct {
		name string
		rec  core.Recurring
		now  time.Time
		want bool
	}{
		{
			name: "due when day reached and period unpaid",
			rec:  core.Recurring{DayOfMonth: 5, LastMonthPaid: "06.25"},
			now:  time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "due when day passed",
			rec:  core.Recurring{DayOfMonth: 5, LastMonthPaid: "06.25"},
			now:  time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "not due before day of month",
			rec:  core.Recurring{DayOfMonth: 5, LastMonthPaid: "06.25"},
			now:  time.Date(2025, 7, 4, 23, 59, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "not due when period already paid",
			rec:  core.Recurring{DayOfMonth: 5, LastMonthPaid: "07.25"},
			now:  time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "never paid is due once day reached",
			rec:  core.Recurring{DayOfMonth: 1, LastMonthPaid: ""},
			now:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "day 31 clamps in a 30-day month",
			rec:  core.Recurring{DayOfMonth: 31, LastMonthPaid: "05.25"},
			now:  time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "day 31 clamps in February",
			rec:  core.Recurring{DayOfMonth: 31, LastMonthPaid: "01.25"},
			now:  time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecurringDue(tt.rec, tt.now); got != tt.want {
				t.Errorf("RecurringDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeadlineDue(t *testing.T) {
	deadline := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name  string
		o     core.DeadlineObligation
		nowMs int64
		want  bool
	}{
		{
			name:  "due after deadline",
			o:     core.DeadlineObligation{AutoSettle: true, Deadline: deadline},
			nowMs: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC).UnixMilli(),
			want:  true,
		},
		{
			name:  "due exactly at deadline",
			o:     core.DeadlineObligation{AutoSettle: true, Deadline: deadline},
			nowMs: deadline,
			want:  true,
		},
		{
			name:  "not due before deadline",
			o:     core.DeadlineObligation{AutoSettle: true, Deadline: deadline},
			nowMs: deadline - 1,
			want:  false,
		},
		{
			name:  "manual-only obligations never auto-settle",
			o:     core.DeadlineObligation{AutoSettle: false, Deadline: deadline},
			nowMs: deadline + 1,
			want:  false,
		},
		{
			name:  "missing deadline never auto-settles",
			o:     core.DeadlineObligation{AutoSettle: true, Deadline: 0},
			nowMs: deadline,
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeadlineDue(tt.o, tt.nowMs); got != tt.want {
				t.Errorf("DeadlineDue() = %v, want %v", got, tt.want)
			}
		})
	}
}
