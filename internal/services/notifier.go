package services

import (
	"context"

	"ledger/internal/core"
)

// Notifier is the gateway for user-facing notifications. Delivery is
// fire-and-forget: callers log failures and never retry or roll back.
type Notifier interface {
	NotifyTransaction(ctx context.Context, tx core.Transaction) error
	NotifyUpcoming(ctx context.Context, userID string, items []UpcomingItem) error
}

// UpcomingItem describes one obligation due soon, sent ahead of settlement
// so the user can react before money moves.
type UpcomingItem struct {
	Kind       string // "incoming_payment", "incoming_income" or "recurring"
	Title      string
	Amount     core.Money
	DueInDays  int
	DeadlineMs int64 // zero for recurring items
}
