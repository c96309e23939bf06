package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

const transactionColumns = `id, user_id, title, amount, category, created_at, type, internal_operation, note`

func scanTransaction(s scanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ string
	var internal int64
	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.Title, &tx.Amount.Cents, &tx.Category,
		&tx.CreatedAt, &typ, &internal, &tx.Note,
	); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.InternalOperation = internal != 0
	return tx, nil
}

// InsertTransaction appends a ledger row and bumps the owner's balance by the
// signed amount inside one SQL transaction. Either both writes commit or
// neither does.
func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, title, amount, category, created_at, type, internal_operation, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Title, tx.Amount.Cents, tx.Category,
		tx.CreatedAt, string(tx.Type), boolToInt(tx.InternalOperation), tx.Note,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	res, err := sqlTx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`,
		tx.Amount.Cents, tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update balance rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("user %s: %w", tx.UserID, core.ErrNotFound)
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a ledger row and reverses its balance effect
// atomically. Returns the deleted row so callers can report what was undone.
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID string) (core.Transaction, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	row := sqlTx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID,
	); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx,
		`UPDATE users SET balance = balance - ? WHERE id = ?`,
		tx.Amount.Cents, userID,
	); err != nil {
		return core.Transaction{}, fmt.Errorf("reverse balance: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit delete: %w", err)
	}
	return tx, nil
}

// ListTransactions returns a user's transactions newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
}

// ListTransactionsSince returns transactions created at or after the given
// epoch-millisecond cutoff, newest first.
func (r *Repository) ListTransactionsSince(ctx context.Context, userID string, sinceMs int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC`,
		userID, sinceMs,
	)
}

// ListMonthTransactions returns a user's transactions whose created_at falls
// inside the given UTC calendar month. Internal operations are excluded when
// excludeInternal is set; statistics always exclude them.
func (r *Repository) ListMonthTransactions(ctx context.Context, userID string, year, month int, excludeInternal bool) ([]core.Transaction, error) {
	startMs, endMs := core.MonthWindow(year, month)
	query := `SELECT ` + transactionColumns + ` FROM transactions
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?`
	if excludeInternal {
		query += ` AND internal_operation = 0`
	}
	query += ` ORDER BY created_at DESC`
	return r.queryTransactions(ctx, query, userID, startMs, endMs)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Summary holds the aggregate figures for one user's ledger.
type Summary struct {
	Balance           core.Money
	Income            core.Money
	Expense           core.Money
	TotalTransactions int64
}

// GetSummary computes balance, income and expense sums straight from the
// transaction log. Balance here is the replay value; it must match the
// denormalized users.balance column at all times.
func (r *Repository) GetSummary(ctx context.Context, userID string) (Summary, error) {
	var s Summary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0),
			COUNT(*)
		FROM transactions WHERE user_id = ?`, userID,
	).Scan(&s.Balance.Cents, &s.Income.Cents, &s.Expense.Cents, &s.TotalTransactions)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	return s, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
