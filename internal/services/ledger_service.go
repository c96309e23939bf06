package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// LedgerStore is the slice of the repository the ledger needs. The insert
// and delete are atomic with the balance update on the store side.
type LedgerStore interface {
	InsertTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	ListTransactionsSince(ctx context.Context, userID string, sinceMs int64) ([]core.Transaction, error)
	GetSummary(ctx context.Context, userID string) (storage.Summary, error)
}

// LedgerService owns the transaction log and the balance invariant: after
// every post or delete, users.balance equals the sum of the user's
// transaction amounts.
type LedgerService struct {
	store    LedgerStore
	notifier Notifier
	now      func() time.Time
}

func NewLedgerService(store LedgerStore, notifier Notifier) *LedgerService {
	return &LedgerService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// PostTransactionParams carries a transaction before sign normalization.
// Amount is unsigned; the type decides the sign.
type PostTransactionParams struct {
	UserID            string
	Title             string
	Category          string
	Note              string
	Amount            core.Money
	Type              core.TransactionType
	InternalOperation bool
	CreatedAt         int64 // epoch ms; zero means "now"
}

// PostTransaction validates, normalizes the sign from the type and appends
// the transaction together with its balance effect. The notification is
// best-effort and never rolls the posting back.
func (s *LedgerService) PostTransaction(ctx context.Context, p PostTransactionParams) (core.Transaction, error) {
	createdAt := p.CreatedAt
	if createdAt == 0 {
		createdAt = core.EpochMillis(s.now())
	}

	tx := core.Transaction{
		ID:                uuid.NewString(),
		UserID:            p.UserID,
		Title:             p.Title,
		Category:          p.Category,
		Amount:            p.Type.Signed(p.Amount),
		Type:              p.Type,
		InternalOperation: p.InternalOperation,
		CreatedAt:         createdAt,
		Note:              p.Note,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("post transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction posted",
		"component", "ledger",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"type", string(tx.Type),
		"internal", tx.InternalOperation)

	s.notify(ctx, tx)
	return tx, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id, userID string) error {
	tx, err := s.store.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"component", "ledger",
		"transaction_id", id,
		"user_id", userID,
		"reversed_cents", tx.Amount.Cents)

	s.notify(ctx, tx)
	return nil
}

func (s *LedgerService) GetSummary(ctx context.Context, userID string) (storage.Summary, error) {
	return s.store.GetSummary(ctx, userID)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// ListLastDays returns the user's transactions from the trailing daysBack
// days, computed on the epoch-millisecond axis.
func (s *LedgerService) ListLastDays(ctx context.Context, userID string, daysBack int) ([]core.Transaction, error) {
	if daysBack <= 0 {
		return nil, core.ErrInvalidAmount
	}
	cutoff := core.EpochMillis(s.now().AddDate(0, 0, -daysBack))
	return s.store.ListTransactionsSince(ctx, userID, cutoff)
}

func (s *LedgerService) notify(ctx context.Context, tx core.Transaction) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyTransaction(ctx, tx); err != nil {
		slog.WarnContext(ctx, "Transaction notification failed",
			"component", "ledger",
			"transaction_id", tx.ID,
			"error", err)
	}
}
