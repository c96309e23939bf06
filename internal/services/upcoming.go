package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/core"
)

// UpcomingChecker sweeps obligations falling due within the notify window
// and pushes a heads-up through the notification gateway. It reads only;
// settlement itself is the SettlementProcessor's job.
type UpcomingChecker struct {
	store      SettlementStore
	notifier   Notifier
	windowDays int
}

func NewUpcomingChecker(store SettlementStore, notifier Notifier, windowDays int) *UpcomingChecker {
	return &UpcomingChecker{store: store, notifier: notifier, windowDays: windowDays}
}

// RunPass notifies each user about obligations due within the window.
// Notification failures are logged and skipped; the pass never retries.
func (c *UpcomingChecker) RunPass(ctx context.Context, now time.Time) (int, error) {
	if c.notifier == nil {
		return 0, nil
	}

	userIDs, err := c.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	notified := 0
	for _, userID := range userIDs {
		items := c.collect(ctx, userID, now)
		if len(items) == 0 {
			continue
		}
		if err := c.notifier.NotifyUpcoming(ctx, userID, items); err != nil {
			slog.WarnContext(ctx, "Upcoming-payments notification failed",
				"component", "settlement",
				"user_id", userID,
				"items", len(items),
				"error", err)
			continue
		}
		notified++
	}
	return notified, nil
}

func (c *UpcomingChecker) collect(ctx context.Context, userID string, now time.Time) []UpcomingItem {
	var items []UpcomingItem

	nowMs := core.EpochMillis(now)
	beforeMs := core.EpochMillis(now.AddDate(0, 0, c.windowDays))

	for _, direction := range []core.TransactionType{core.Expense, core.Income} {
		obligations, err := c.store.ListUpcomingObligations(ctx, userID, direction, nowMs, beforeMs)
		if err != nil {
			slog.WarnContext(ctx, "Failed to list upcoming obligations",
				"component", "settlement",
				"user_id", userID,
				"direction", string(direction),
				"error", err)
			continue
		}
		kind := "incoming_payment"
		if direction == core.Income {
			kind = "incoming_income"
		}
		for _, o := range obligations {
			days := int(core.FromEpochMillis(o.Deadline).Sub(now).Hours() / 24)
			items = append(items, UpcomingItem{
				Kind:       kind,
				Title:      o.Title,
				Amount:     o.Amount,
				DueInDays:  days,
				DeadlineMs: o.Deadline,
			})
		}
	}

	recurrings, err := c.store.ListRecurrings(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list recurrings for upcoming check",
			"component", "settlement",
			"user_id", userID,
			"error", err)
		return items
	}
	for _, rec := range recurrings {
		// Skip charges already settled this period.
		if rec.LastMonthPaid == core.PeriodKey(now) {
			continue
		}
		days := rec.DayOfMonth - now.Day()
		if days < 0 || days > c.windowDays {
			continue
		}
		items = append(items, UpcomingItem{
			Kind:      "recurring",
			Title:     rec.Title,
			Amount:    rec.Amount,
			DueInDays: days,
		})
	}

	return items
}
