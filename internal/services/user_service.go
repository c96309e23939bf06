package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledger/internal/core"
)

// Default monthly budget for new users, 3000.00 in cents.
const defaultMonthlyLimitCents = 300000

// UserStore is the user-side slice of the repository.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User, createdAtMs int64) error
	GetUser(ctx context.Context, id string) (core.User, error)
	FindUser(ctx context.Context, id, email string) (core.User, error)
	UpdateUsername(ctx context.Context, id, username string) error
	SetBalance(ctx context.Context, id string, balance core.Money) error
}

type UserService struct {
	store UserStore
	now   func() time.Time
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, now: time.Now}
}

// CreateOrGet registers a user on first contact with the id the auth
// provider issued, or returns the existing record. The username falls back
// to the email's local part and gets backfilled for older rows.
func (s *UserService) CreateOrGet(ctx context.Context, id, email, avatar string) (core.User, error) {
	if strings.TrimSpace(id) == "" {
		return core.User{}, core.ErrEmptyUserID
	}

	username := ""
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	existing, err := s.store.FindUser(ctx, id, email)
	switch {
	case err == nil:
		if existing.Username == "" && username != "" {
			if err := s.store.UpdateUsername(ctx, existing.ID, username); err != nil {
				return core.User{}, fmt.Errorf("backfill username: %w", err)
			}
			existing.Username = username
		}
		return existing, nil
	case errors.Is(err, core.ErrNotFound):
		// fall through to create
	default:
		return core.User{}, err
	}

	u := core.User{
		ID:           id,
		Email:        email,
		Username:     username,
		MonthlyLimit: core.Money{Cents: defaultMonthlyLimitCents},
		Avatar:       avatar,
	}
	if err := s.store.CreateUser(ctx, u, core.EpochMillis(s.now())); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created",
		"component", "users", "user_id", id, "username", username)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

// SetBalance is the explicit balance override. It bypasses the ledger on
// purpose; the caller takes responsibility for the invariant.
func (s *UserService) SetBalance(ctx context.Context, id string, balance core.Money) (core.User, error) {
	if err := s.store.SetBalance(ctx, id, balance); err != nil {
		return core.User{}, err
	}
	return s.store.GetUser(ctx, id)
}
