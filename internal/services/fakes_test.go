package services

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// fakeStore is an in-memory SettlementStore for the engine tests.
type fakeStore struct {
	userIDs     []string
	recurrings  map[string]*core.Recurring          // by id
	obligations map[string]*core.DeadlineObligation // by id

	markErr   error
	deleteErr error
}

func newFakeStore(userIDs ...string) *fakeStore {
	return &fakeStore{
		userIDs:     userIDs,
		recurrings:  make(map[string]*core.Recurring),
		obligations: make(map[string]*core.DeadlineObligation),
	}
}

func (f *fakeStore) addRecurring(rec core.Recurring) {
	c := rec
	f.recurrings[rec.ID] = &c
}

func (f *fakeStore) addObligation(o core.DeadlineObligation) {
	c := o
	f.obligations[o.ID] = &c
}

func (f *fakeStore) ListUserIDs(context.Context) ([]string, error) {
	return f.userIDs, nil
}

func (f *fakeStore) ListRecurrings(_ context.Context, userID string) ([]core.Recurring, error) {
	var out []core.Recurring
	for _, rec := range f.recurrings {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkRecurringPaid(_ context.Context, id, periodKey string) error {
	if f.markErr != nil {
		return f.markErr
	}
	rec, ok := f.recurrings[id]
	if !ok {
		return core.ErrNotFound
	}
	rec.LastMonthPaid = periodKey
	return nil
}

func (f *fakeStore) ListAutoSettleObligations(_ context.Context, userID string, direction core.TransactionType) ([]core.DeadlineObligation, error) {
	var out []core.DeadlineObligation
	for _, o := range f.obligations {
		if o.UserID == userID && o.Direction == direction && o.AutoSettle && o.Deadline > 0 {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUpcomingObligations(_ context.Context, userID string, direction core.TransactionType, nowMs, beforeMs int64) ([]core.DeadlineObligation, error) {
	var out []core.DeadlineObligation
	for _, o := range f.obligations {
		if o.UserID == userID && o.Direction == direction && o.Deadline >= nowMs && o.Deadline < beforeMs {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDeadlineObligation(_ context.Context, direction core.TransactionType, id, userID string) (core.DeadlineObligation, error) {
	o, ok := f.obligations[id]
	if !ok || o.UserID != userID || o.Direction != direction {
		return core.DeadlineObligation{}, core.ErrNotFound
	}
	return *o, nil
}

func (f *fakeStore) DeleteDeadlineObligation(_ context.Context, direction core.TransactionType, id, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	o, ok := f.obligations[id]
	if !ok || o.UserID != userID || o.Direction != direction {
		return core.ErrNotFound
	}
	delete(f.obligations, id)
	return nil
}

// fakePoster records posted transactions and can be told to fail.
type fakePoster struct {
	posted  []PostTransactionParams
	postErr error
}

func (f *fakePoster) PostTransaction(_ context.Context, p PostTransactionParams) (core.Transaction, error) {
	if f.postErr != nil {
		return core.Transaction{}, f.postErr
	}
	f.posted = append(f.posted, p)
	return core.Transaction{
		ID:     fmt.Sprintf("tx-%d", len(f.posted)),
		UserID: p.UserID,
		Title:  p.Title,
		Amount: p.Type.Signed(p.Amount),
		Type:   p.Type,
	}, nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	transactions []core.Transaction
	upcoming     map[string][]UpcomingItem
	err          error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{upcoming: make(map[string][]UpcomingItem)}
}

func (f *fakeNotifier) NotifyTransaction(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeNotifier) NotifyUpcoming(_ context.Context, userID string, items []UpcomingItem) error {
	if f.err != nil {
		return f.err
	}
	f.upcoming[userID] = append(f.upcoming[userID], items...)
	return nil
}

var errStoreDown = errors.New("store down")
