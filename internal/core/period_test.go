package core

import (
	"testing"
	"time"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC), "07.25"},
		{time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), "12.25"},
		{time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), "01.30"},
	}
	for _, tt := range tests {
		if got := PeriodKey(tt.in); got != tt.want {
			t.Errorf("PeriodKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(2025, 7)

	first := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if start != first.UnixMilli() {
		t.Errorf("start = %d, want %d", start, first.UnixMilli())
	}
	if end != first.AddDate(0, 1, 0).UnixMilli() {
		t.Errorf("end = %d, want %d", end, first.AddDate(0, 1, 0).UnixMilli())
	}

	inside := time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC).UnixMilli()
	if inside < start || inside >= end {
		t.Error("last instant of July should fall inside the window")
	}
	outside := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if outside < end {
		t.Error("first instant of August should fall outside the window")
	}
}

func TestMonthWindowDecemberRollover(t *testing.T) {
	_, end := MonthWindow(2025, 12)
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if end != jan.UnixMilli() {
		t.Errorf("December window should end at January 1 of next year")
	}
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		year, month         int
		wantYear, wantMonth int
	}{
		{2025, 7, 2025, 6},
		{2025, 1, 2024, 12},
	}
	for _, tt := range tests {
		y, m := PreviousMonth(tt.year, tt.month)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = %d, %d; want %d, %d",
				tt.year, tt.month, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestEpochMillisRoundTrip(t *testing.T) {
	now := time.Date(2025, 7, 2, 15, 4, 5, 0, time.UTC)
	ms := EpochMillis(now)
	if got := FromEpochMillis(ms); !got.Equal(now) {
		t.Errorf("round trip = %v, want %v", got, now)
	}
}
