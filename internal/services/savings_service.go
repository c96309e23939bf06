package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// SavingStore is the savings-goal slice of the repository.
type SavingStore interface {
	CreateSaving(ctx context.Context, sv core.Saving) error
	ListSavings(ctx context.Context, userID string) ([]core.Saving, error)
	DeleteSaving(ctx context.Context, id, userID string) error
	AddDeposit(ctx context.Context, id, userID string, amount core.Money) (core.Saving, error)
}

// SavingsService manages savings goals. Deposits post an internal-operation
// expense so the balance moves while statistics stay untouched.
type SavingsService struct {
	store  SavingStore
	ledger TransactionPoster
	now    func() time.Time
}

func NewSavingsService(store SavingStore, ledger TransactionPoster) *SavingsService {
	return &SavingsService{store: store, ledger: ledger, now: time.Now}
}

func (s *SavingsService) Create(ctx context.Context, userID, title string, goal core.Money) (core.Saving, error) {
	sv := core.Saving{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Goal:      goal,
		CreatedAt: core.EpochMillis(s.now()),
	}
	if err := sv.Validate(); err != nil {
		return core.Saving{}, err
	}
	if err := s.store.CreateSaving(ctx, sv); err != nil {
		return core.Saving{}, fmt.Errorf("create saving: %w", err)
	}
	return sv, nil
}

func (s *SavingsService) List(ctx context.Context, userID string) ([]core.Saving, error) {
	return s.store.ListSavings(ctx, userID)
}

func (s *SavingsService) Delete(ctx context.Context, id, userID string) error {
	return s.store.DeleteSaving(ctx, id, userID)
}

// Deposit moves money into a savings goal: bump the deposited amount, then
// post the matching internal transfer. A failed post rolls the bump back so
// the goal never shows money the ledger does not.
func (s *SavingsService) Deposit(ctx context.Context, id, userID string, amount core.Money) (core.Saving, error) {
	if err := amount.Validate(); err != nil {
		return core.Saving{}, err
	}

	sv, err := s.store.AddDeposit(ctx, id, userID, amount)
	if err != nil {
		return core.Saving{}, err
	}

	_, err = s.ledger.PostTransaction(ctx, PostTransactionParams{
		UserID:            userID,
		Title:             "Savings deposit",
		Category:          core.CategorySavingsDeposit,
		Note:              fmt.Sprintf("Deposited %s to savings goal %s.", amount, sv.Title),
		Amount:            amount,
		Type:              core.Expense,
		InternalOperation: true,
	})
	if err != nil {
		if _, revertErr := s.store.AddDeposit(ctx, id, userID, core.Money{Cents: -amount.Cents}); revertErr != nil {
			slog.ErrorContext(ctx, "Failed to revert savings deposit after posting failure",
				"component", "savings",
				"saving_id", id,
				"user_id", userID,
				"error", revertErr)
		}
		return core.Saving{}, fmt.Errorf("%w: post deposit transaction: %v", core.ErrDependency, err)
	}

	return sv, nil
}
