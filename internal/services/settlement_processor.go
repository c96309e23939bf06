package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/core"
)

// SettlementStore is the obligation-side slice of the repository used by the
// settlement pass.
type SettlementStore interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	ListRecurrings(ctx context.Context, userID string) ([]core.Recurring, error)
	MarkRecurringPaid(ctx context.Context, id, periodKey string) error
	ListAutoSettleObligations(ctx context.Context, userID string, direction core.TransactionType) ([]core.DeadlineObligation, error)
	ListUpcomingObligations(ctx context.Context, userID string, direction core.TransactionType, nowMs, beforeMs int64) ([]core.DeadlineObligation, error)
	GetDeadlineObligation(ctx context.Context, direction core.TransactionType, id, userID string) (core.DeadlineObligation, error)
	DeleteDeadlineObligation(ctx context.Context, direction core.TransactionType, id, userID string) error
}

// TransactionPoster is the ledger boundary settlement posts through.
// A failed post means the obligation stays unsettled.
type TransactionPoster interface {
	PostTransaction(ctx context.Context, p PostTransactionParams) (core.Transaction, error)
}

// SettlementProcessor converts due obligations into ledger transactions.
// Recurring obligations are marked per billing period; deadline obligations
// are deleted once settled, which makes their re-runs naturally idempotent.
type SettlementProcessor struct {
	store  SettlementStore
	ledger TransactionPoster
}

func NewSettlementProcessor(store SettlementStore, ledger TransactionPoster) *SettlementProcessor {
	return &SettlementProcessor{store: store, ledger: ledger}
}

var errPassIncomplete = errors.New("settlement pass completed with errors")

// RunPass sweeps every user's obligations once. A failure on one obligation
// is logged and skipped; it never aborts the rest of the pass. Partial
// settlement across the batch is the documented semantics, not a bug.
func (p *SettlementProcessor) RunPass(ctx context.Context, now time.Time) (int, error) {
	userIDs, err := p.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	slog.InfoContext(ctx, "Settlement pass starting",
		"component", "settlement",
		"users", len(userIDs),
		"period", core.PeriodKey(now))

	settled := 0
	failed := 0

	for _, userID := range userIDs {
		settled += p.settleRecurrings(ctx, userID, now, &failed)
		settled += p.settleDeadlines(ctx, userID, core.Expense, now, &failed)
		settled += p.settleDeadlines(ctx, userID, core.Income, now, &failed)
	}

	slog.InfoContext(ctx, "Settlement pass complete",
		"component", "settlement",
		"settled", settled,
		"failed", failed)

	if failed > 0 {
		return settled, errPassIncomplete
	}
	return settled, nil
}

func (p *SettlementProcessor) settleRecurrings(ctx context.Context, userID string, now time.Time, failed *int) int {
	recurrings, err := p.store.ListRecurrings(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list recurrings",
			"component", "settlement", "user_id", userID, "error", err)
		*failed++
		return 0
	}

	settled := 0
	for _, rec := range recurrings {
		if !RecurringDue(rec, now) {
			continue
		}
		if err := p.settleRecurring(ctx, rec, now); err != nil {
			slog.ErrorContext(ctx, "Failed to settle recurring obligation",
				"component", "settlement",
				"recurring_id", rec.ID,
				"user_id", userID,
				"error", err)
			*failed++
			continue
		}
		settled++
	}
	return settled
}

// settleRecurring posts the period's charge and then advances the period
// mark. The mark is the last step and runs unconditionally after a
// successful post; a crash between the two is the window re-runs must
// tolerate, so the mark failure is surfaced rather than swallowed.
func (p *SettlementProcessor) settleRecurring(ctx context.Context, rec core.Recurring, now time.Time) error {
	periodKey := core.PeriodKey(now)

	_, err := p.ledger.PostTransaction(ctx, PostTransactionParams{
		UserID:   rec.UserID,
		Title:    rec.Title,
		Category: core.CategoryRecurring,
		Note:     fmt.Sprintf("Recurring charge for %s.", rec.Title),
		Amount:   rec.Amount,
		Type:     core.Expense,
	})
	if err != nil {
		return fmt.Errorf("%w: post recurring charge: %v", core.ErrDependency, err)
	}

	if err := p.store.MarkRecurringPaid(ctx, rec.ID, periodKey); err != nil {
		return fmt.Errorf("mark period %s paid: %w", periodKey, err)
	}

	slog.InfoContext(ctx, "Recurring obligation settled",
		"component", "settlement",
		"recurring_id", rec.ID,
		"user_id", rec.UserID,
		"amount_cents", rec.Amount.Cents,
		"period", periodKey)
	return nil
}

func (p *SettlementProcessor) settleDeadlines(ctx context.Context, userID string, direction core.TransactionType, now time.Time, failed *int) int {
	obligations, err := p.store.ListAutoSettleObligations(ctx, userID, direction)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list deadline obligations",
			"component", "settlement",
			"user_id", userID,
			"direction", string(direction),
			"error", err)
		*failed++
		return 0
	}

	nowMs := core.EpochMillis(now)
	settled := 0
	for _, o := range obligations {
		if !DeadlineDue(o, nowMs) {
			continue
		}
		if err := p.settleDeadline(ctx, o); err != nil {
			slog.ErrorContext(ctx, "Failed to settle deadline obligation",
				"component", "settlement",
				"obligation_id", o.ID,
				"user_id", userID,
				"direction", string(direction),
				"error", err)
			*failed++
			continue
		}
		settled++
	}
	return settled
}

// settleDeadline posts the transaction and deletes the obligation row.
// Deletion is the terminal state: a re-run finds no row and does nothing.
// The delete only happens after the post confirms.
func (p *SettlementProcessor) settleDeadline(ctx context.Context, o core.DeadlineObligation) error {
	_, err := p.ledger.PostTransaction(ctx, PostTransactionParams{
		UserID:   o.UserID,
		Title:    o.Title,
		Category: obligationCategory(o.Direction),
		Note:     fmt.Sprintf("Automatic settlement: %s", obligationLabel(o)),
		Amount:   o.Amount,
		Type:     o.Direction,
	})
	if err != nil {
		return fmt.Errorf("%w: post settlement transaction: %v", core.ErrDependency, err)
	}

	if err := p.store.DeleteDeadlineObligation(ctx, o.Direction, o.ID, o.UserID); err != nil {
		return fmt.Errorf("delete settled obligation: %w", err)
	}

	slog.InfoContext(ctx, "Deadline obligation settled",
		"component", "settlement",
		"obligation_id", o.ID,
		"user_id", o.UserID,
		"direction", string(o.Direction),
		"amount_cents", o.Amount.Cents)
	return nil
}

// SettleObligation is the manual path: the user settles a specific
// obligation now, regardless of auto_settle or deadline. The obligation is
// deleted only after the posting confirms; a posting failure surfaces as a
// dependency error with the row intact.
func (p *SettlementProcessor) SettleObligation(ctx context.Context, direction core.TransactionType, id, userID string) (core.Transaction, error) {
	o, err := p.store.GetDeadlineObligation(ctx, direction, id, userID)
	if err != nil {
		return core.Transaction{}, err
	}

	tx, err := p.ledger.PostTransaction(ctx, PostTransactionParams{
		UserID:   o.UserID,
		Title:    o.Title,
		Category: obligationCategory(o.Direction),
		Note:     fmt.Sprintf("Settlement: %s", obligationLabel(o)),
		Amount:   o.Amount,
		Type:     o.Direction,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: post settlement transaction: %v", core.ErrDependency, err)
	}

	if err := p.store.DeleteDeadlineObligation(ctx, direction, id, userID); err != nil {
		return core.Transaction{}, fmt.Errorf("delete settled obligation: %w", err)
	}
	return tx, nil
}

func obligationCategory(direction core.TransactionType) string {
	if direction == core.Income {
		return core.CategoryIncomingIncome
	}
	return core.CategoryIncomingPayment
}

func obligationLabel(o core.DeadlineObligation) string {
	if o.Description != "" {
		return o.Description
	}
	return o.Title
}
