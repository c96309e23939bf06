package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// Deadline obligations live in two tables with identical shape; the
// direction tag picks the table. This keeps the original wire layout while
// the code treats both kinds as one variant.
func obligationTable(direction core.TransactionType) (string, error) {
	switch direction {
	case core.Expense:
		return "incoming_payments", nil
	case core.Income:
		return "incoming_incomes", nil
	default:
		return "", fmt.Errorf("direction %q: %w", direction, core.ErrInvalidType)
	}
}

const recurringColumns = `id, user_id, title, amount, day_of_month, last_month_paid`

func scanRecurring(s scanner) (core.Recurring, error) {
	var rec core.Recurring
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Amount.Cents, &rec.DayOfMonth, &rec.LastMonthPaid); err != nil {
		return core.Recurring{}, err
	}
	return rec, nil
}

func (r *Repository) CreateRecurring(ctx context.Context, rec core.Recurring) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrings (id, user_id, title, amount, day_of_month, last_month_paid)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, rec.Amount.Cents, rec.DayOfMonth, rec.LastMonthPaid,
	)
	if err != nil {
		return fmt.Errorf("insert recurring: %w", err)
	}
	return nil
}

func (r *Repository) ListRecurrings(ctx context.Context, userID string) ([]core.Recurring, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurrings WHERE user_id = ? ORDER BY day_of_month ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurrings: %w", err)
	}
	defer rows.Close()

	var recs []core.Recurring
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *Repository) DeleteRecurring(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurrings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring: %w", err)
	}
	return affectedOrNotFound(res)
}

// MarkRecurringPaid advances last_month_paid to the given period key. This is
// the settlement mark; it runs immediately after the ledger post succeeds.
func (r *Repository) MarkRecurringPaid(ctx context.Context, id, periodKey string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurrings SET last_month_paid = ? WHERE id = ?`, periodKey, id)
	if err != nil {
		return fmt.Errorf("mark recurring paid: %w", err)
	}
	return affectedOrNotFound(res)
}

const obligationColumns = `id, user_id, title, description, deadline, amount, auto_settle, created_at`

func scanObligation(s scanner, direction core.TransactionType) (core.DeadlineObligation, error) {
	var o core.DeadlineObligation
	var deadline sql.NullInt64
	var auto int64
	if err := s.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &deadline, &o.Amount.Cents, &auto, &o.CreatedAt); err != nil {
		return core.DeadlineObligation{}, err
	}
	o.Deadline = deadline.Int64
	o.AutoSettle = auto != 0
	o.Direction = direction
	return o, nil
}

func (r *Repository) CreateDeadlineObligation(ctx context.Context, o core.DeadlineObligation) error {
	table, err := obligationTable(o.Direction)
	if err != nil {
		return err
	}
	var deadline any
	if o.Deadline > 0 {
		deadline = o.Deadline
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO `+table+` (id, user_id, title, description, deadline, amount, auto_settle, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Title, o.Description, deadline, o.Amount.Cents,
		boolToInt(o.AutoSettle), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *Repository) ListDeadlineObligations(ctx context.Context, userID string, direction core.TransactionType) ([]core.DeadlineObligation, error) {
	table, err := obligationTable(direction)
	if err != nil {
		return nil, err
	}
	return r.queryObligations(ctx, direction,
		`SELECT `+obligationColumns+` FROM `+table+`
		 WHERE user_id = ? ORDER BY deadline IS NULL, deadline ASC`,
		userID,
	)
}

// ListAutoSettleObligations returns obligations eligible for automatic
// settlement: auto_settle set and a deadline present.
func (r *Repository) ListAutoSettleObligations(ctx context.Context, userID string, direction core.TransactionType) ([]core.DeadlineObligation, error) {
	table, err := obligationTable(direction)
	if err != nil {
		return nil, err
	}
	return r.queryObligations(ctx, direction,
		`SELECT `+obligationColumns+` FROM `+table+`
		 WHERE user_id = ? AND auto_settle = 1 AND deadline IS NOT NULL`,
		userID,
	)
}

// ListUpcomingObligations returns obligations with a deadline inside
// [now, before), used for upcoming-payment notifications.
func (r *Repository) ListUpcomingObligations(ctx context.Context, userID string, direction core.TransactionType, nowMs, beforeMs int64) ([]core.DeadlineObligation, error) {
	table, err := obligationTable(direction)
	if err != nil {
		return nil, err
	}
	return r.queryObligations(ctx, direction,
		`SELECT `+obligationColumns+` FROM `+table+`
		 WHERE user_id = ? AND deadline IS NOT NULL AND deadline >= ? AND deadline < ?
		 ORDER BY deadline ASC`,
		userID, nowMs, beforeMs,
	)
}

func (r *Repository) GetDeadlineObligation(ctx context.Context, direction core.TransactionType, id, userID string) (core.DeadlineObligation, error) {
	table, err := obligationTable(direction)
	if err != nil {
		return core.DeadlineObligation{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM `+table+` WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	o, err := scanObligation(row, direction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.DeadlineObligation{}, core.ErrNotFound
		}
		return core.DeadlineObligation{}, fmt.Errorf("get obligation: %w", err)
	}
	return o, nil
}

func (r *Repository) DeleteDeadlineObligation(ctx context.Context, direction core.TransactionType, id, userID string) error {
	table, err := obligationTable(direction)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return affectedOrNotFound(res)
}

func (r *Repository) queryObligations(ctx context.Context, direction core.TransactionType, query string, args ...any) ([]core.DeadlineObligation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query obligations: %w", err)
	}
	defer rows.Close()

	var out []core.DeadlineObligation
	for rows.Next() {
		o, err := scanObligation(rows, direction)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
