package core

import (
	"errors"
	"strings"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// Category labels used by the settlement engine when it posts transactions.
// These are stable wire values; the UI treats categories as free text.
const (
	CategoryRecurring       = "recurring"
	CategoryIncomingPayment = "incoming_payment"
	CategoryIncomingIncome  = "incoming-incomes"
	CategorySavingsDeposit  = "invest-goal"
)

type (
	TransactionType string

	// Transaction is an immutable ledger entry. Amount carries the sign:
	// negative for expenses, positive for incomes.
	Transaction struct {
		ID                string
		UserID            string
		Title             string
		Category          string
		Amount            Money
		Type              TransactionType
		InternalOperation bool
		CreatedAt         int64 // epoch milliseconds
		Note              string
	}

	// User carries the denormalized running balance. Balance must equal the
	// sum of the user's transaction amounts after every ledger mutation.
	User struct {
		ID           string
		Email        string
		Username     string
		Balance      Money
		MonthlyLimit Money
		Avatar       string
	}

	// Recurring is a monthly obligation settled once per billing period.
	// LastMonthPaid holds the "MM.YY" key of the last settled period.
	Recurring struct {
		ID            string
		UserID        string
		Title         string
		Amount        Money // unsigned
		DayOfMonth    int
		LastMonthPaid string
	}

	// DeadlineObligation is a one-shot scheduled payment or income. It is
	// deleted once settled; Direction decides the sign of the posted
	// transaction.
	DeadlineObligation struct {
		ID          string
		UserID      string
		Title       string
		Description string
		Amount      Money // unsigned
		Deadline    int64 // epoch milliseconds, 0 when not set
		AutoSettle  bool
		Direction   TransactionType
		CreatedAt   int64
	}

	// Saving is a named savings goal. Deposits post internal-operation
	// transactions so they stay out of expense statistics.
	Saving struct {
		ID        string
		UserID    string
		Title     string
		Goal      Money
		Deposited Money
		CreatedAt int64
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidDay      = errors.New("invalid day of month")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyUserID     = errors.New("empty user id")
	ErrMissingDeadline = errors.New("missing deadline")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

// Signed returns amount with the sign implied by the transaction type.
func (t TransactionType) Signed(amount Money) Money {
	if t == Expense {
		return Money{Cents: -abs64(amount.Cents)}
	}
	return Money{Cents: abs64(amount.Cents)}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	// Sign invariant: expense negative, income positive.
	if t.Type == Expense && t.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	if t.Type == Income && t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Recurring) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (o DeadlineObligation) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(o.Title) == "" {
		return ErrEmptyTitle
	}
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if !o.Direction.Valid() {
		return ErrInvalidType
	}
	if o.Deadline < 0 {
		return ErrMissingDeadline
	}
	return nil
}

func (s Saving) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	return s.Goal.Validate()
}

// GoalPercentage reports deposited as a percentage of the goal.
func (s Saving) GoalPercentage() float64 {
	if s.Goal.Cents == 0 {
		return 0
	}
	return float64(s.Deposited.Cents) / float64(s.Goal.Cents) * 100
}
