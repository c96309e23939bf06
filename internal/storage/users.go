package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

const userColumns = `id, email, username, balance, monthly_limit, avatar`

func scanUser(s scanner) (core.User, error) {
	var u core.User
	if err := s.Scan(&u.ID, &u.Email, &u.Username, &u.Balance.Cents, &u.MonthlyLimit.Cents, &u.Avatar); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u core.User, createdAtMs int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, balance, monthly_limit, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.Balance.Cents, u.MonthlyLimit.Cents, u.Avatar, createdAtMs,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// FindUser looks a user up by id or email; used by the create-or-get path
// where the auth provider may have issued a new id for a known address.
func (r *Repository) FindUser(ctx context.Context, id, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? OR (email != '' AND email = ?)`, id, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *Repository) UpdateUsername(ctx context.Context, id, username string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ? WHERE id = ?`, username, id)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	return affectedOrNotFound(res)
}

// SetBalance overrides the denormalized balance. This is the explicit repair
// path; normal mutations always go through the ledger increments.
func (r *Repository) SetBalance(ctx context.Context, id string, balance core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET balance = ? WHERE id = ?`, balance.Cents, id)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return affectedOrNotFound(res)
}

// ListUserIDs returns every user id; the settlement pass iterates them.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
