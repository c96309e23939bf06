package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

const savingColumns = `id, user_id, title, goal, deposited, created_at`

func scanSaving(s scanner) (core.Saving, error) {
	var sv core.Saving
	if err := s.Scan(&sv.ID, &sv.UserID, &sv.Title, &sv.Goal.Cents, &sv.Deposited.Cents, &sv.CreatedAt); err != nil {
		return core.Saving{}, err
	}
	return sv, nil
}

func (r *Repository) CreateSaving(ctx context.Context, sv core.Saving) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings (id, user_id, title, goal, deposited, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.UserID, sv.Title, sv.Goal.Cents, sv.Deposited.Cents, sv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saving: %w", err)
	}
	return nil
}

func (r *Repository) ListSavings(ctx context.Context, userID string) ([]core.Saving, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+savingColumns+` FROM savings WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.Saving
	for rows.Next() {
		sv, err := scanSaving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saving: %w", err)
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteSaving(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete saving: %w", err)
	}
	return affectedOrNotFound(res)
}

// AddDeposit bumps the deposited amount atomically and returns the updated
// row. The matching internal-operation transaction is posted by the service.
func (r *Repository) AddDeposit(ctx context.Context, id, userID string, amount core.Money) (core.Saving, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings SET deposited = deposited + ? WHERE id = ? AND user_id = ?`,
		amount.Cents, id, userID,
	)
	if err != nil {
		return core.Saving{}, fmt.Errorf("add deposit: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return core.Saving{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+savingColumns+` FROM savings WHERE id = ? AND user_id = ?`, id, userID)
	sv, err := scanSaving(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Saving{}, core.ErrNotFound
		}
		return core.Saving{}, fmt.Errorf("reload saving: %w", err)
	}
	return sv, nil
}
