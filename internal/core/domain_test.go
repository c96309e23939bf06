package core

import (
	"errors"
	"testing"
)

func TestTransactionTypeSigned(t *testing.T) {
	tests := []struct {
		name   string
		typ    TransactionType
		amount int64
		want   int64
	}{
		{"expense flips positive", Expense, 5000, -5000},
		{"expense keeps negative", Expense, -5000, -5000},
		{"income flips negative", Income, -5000, 5000},
		{"income keeps positive", Income, 5000, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.typ.Signed(Money{Cents: tt.amount})
			if got.Cents != tt.want {
				t.Errorf("Signed(%d) = %d, want %d", tt.amount, got.Cents, tt.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		UserID:   "u1",
		Title:    "groceries",
		Category: "food",
		Amount:   Money{Cents: -5000},
		Type:     Expense,
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid expense", func(tx *Transaction) {}, nil},
		{"missing user", func(tx *Transaction) { tx.UserID = " " }, ErrEmptyUserID},
		{"missing title", func(tx *Transaction) { tx.Title = "" }, ErrEmptyTitle},
		{"missing category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"expense with positive amount", func(tx *Transaction) { tx.Amount = Money{Cents: 5000} }, ErrInvalidAmount},
		{"income with negative amount", func(tx *Transaction) {
			tx.Type = Income
			tx.Amount = Money{Cents: -5000}
		}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringValidate(t *testing.T) {
	r := Recurring{UserID: "u1", Title: "rent", Amount: Money{Cents: 10000}, DayOfMonth: 5}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid recurring rejected: %v", err)
	}

	r.DayOfMonth = 0
	if !errors.Is(r.Validate(), ErrInvalidDay) {
		t.Error("day 0 should be rejected")
	}
	r.DayOfMonth = 32
	if !errors.Is(r.Validate(), ErrInvalidDay) {
		t.Error("day 32 should be rejected")
	}
}

func TestSavingGoalPercentage(t *testing.T) {
	s := Saving{Goal: Money{Cents: 100000}, Deposited: Money{Cents: 25000}}
	if got := s.GoalPercentage(); got != 25 {
		t.Errorf("GoalPercentage() = %v, want 25", got)
	}
	s.Goal = Money{}
	if got := s.GoalPercentage(); got != 0 {
		t.Errorf("zero goal should report 0, got %v", got)
	}
}
