package http

import (
	"fmt"
	"math"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// amountField accepts an amount as integer cents or as a decimal string;
// cents win when both are present. Amounts on the wire are unsigned, the
// operation decides the sign.
type amountField struct {
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

func (a amountField) money() (core.Money, error) {
	if a.AmountCents != 0 {
		if a.AmountCents < 0 {
			return core.Money{}, fmt.Errorf("amount_cents %d: %w", a.AmountCents, core.ErrInvalidAmount)
		}
		return core.Money{Cents: a.AmountCents}, nil
	}
	if a.Amount == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	cents, err := core.ParseDecimalToCents(a.Amount)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func moneyCents(c int64) core.Money {
	return core.Money{Cents: c}
}

type transactionResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	Title             string  `json:"title"`
	Category          string  `json:"category"`
	AmountCents       int64   `json:"amount_cents"`
	Amount            float64 `json:"amount"`
	Type              string  `json:"type"`
	InternalOperation bool    `json:"internal_operation"`
	CreatedAt         int64   `json:"created_at"`
	Note              string  `json:"note,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Title:             tx.Title,
		Category:          tx.Category,
		AmountCents:       tx.Amount.Cents,
		Amount:            tx.Amount.Float(),
		Type:              string(tx.Type),
		InternalOperation: tx.InternalOperation,
		CreatedAt:         tx.CreatedAt,
		Note:              tx.Note,
	}
}

func toTransactionResponseList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type summaryResponse struct {
	BalanceCents      int64   `json:"balance_cents"`
	Balance           float64 `json:"balance"`
	IncomeCents       int64   `json:"income_cents"`
	ExpenseCents      int64   `json:"expense_cents"`
	TotalTransactions int64   `json:"total_transactions"`
}

func toSummaryResponse(s storage.Summary) summaryResponse {
	return summaryResponse{
		BalanceCents:      s.Balance.Cents,
		Balance:           s.Balance.Float(),
		IncomeCents:       s.Income.Cents,
		ExpenseCents:      s.Expense.Cents,
		TotalTransactions: s.TotalTransactions,
	}
}

type userResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Username          string  `json:"username"`
	BalanceCents      int64   `json:"balance_cents"`
	Balance           float64 `json:"balance"`
	MonthlyLimitCents int64   `json:"monthly_limit_cents"`
	Avatar            string  `json:"avatar,omitempty"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		BalanceCents:      u.Balance.Cents,
		Balance:           u.Balance.Float(),
		MonthlyLimitCents: u.MonthlyLimit.Cents,
		Avatar:            u.Avatar,
	}
}

type recurringResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	AmountCents   int64   `json:"amount_cents"`
	Amount        float64 `json:"amount"`
	DayOfMonth    int     `json:"day_of_month"`
	LastMonthPaid string  `json:"last_month_paid,omitempty"`
}

func toRecurringResponse(rec core.Recurring) recurringResponse {
	return recurringResponse{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Title:         rec.Title,
		AmountCents:   rec.Amount.Cents,
		Amount:        rec.Amount.Float(),
		DayOfMonth:    rec.DayOfMonth,
		LastMonthPaid: rec.LastMonthPaid,
	}
}

type obligationResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	Deadline    int64   `json:"deadline,omitempty"`
	AutoSettle  bool    `json:"auto_settle"`
	Direction   string  `json:"direction"`
	CreatedAt   int64   `json:"created_at"`
}

func toObligationResponse(o core.DeadlineObligation) obligationResponse {
	return obligationResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Title:       o.Title,
		Description: o.Description,
		AmountCents: o.Amount.Cents,
		Amount:      o.Amount.Float(),
		Deadline:    o.Deadline,
		AutoSettle:  o.AutoSettle,
		Direction:   string(o.Direction),
		CreatedAt:   o.CreatedAt,
	}
}

type savingResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Title          string  `json:"title"`
	GoalCents      int64   `json:"goal_cents"`
	DepositedCents int64   `json:"deposited_cents"`
	GoalPercentage float64 `json:"goal_percentage"`
	CreatedAt      int64   `json:"created_at"`
}

func toSavingResponse(sv core.Saving) savingResponse {
	return savingResponse{
		ID:             sv.ID,
		UserID:         sv.UserID,
		Title:          sv.Title,
		GoalCents:      sv.Goal.Cents,
		DepositedCents: sv.Deposited.Cents,
		GoalPercentage: sv.GoalPercentage(),
		CreatedAt:      sv.CreatedAt,
	}
}

type categoryStatResponse struct {
	Type                      string   `json:"type"`
	TotalExpenseCents         int64    `json:"total_expense_cents"`
	TotalIncomeCents          int64    `json:"total_income_cents"`
	PercentageOfTotalExpenses *float64 `json:"percentage_of_total_expenses,omitempty"`
	PercentageOfTotalIncomes  *float64 `json:"percentage_of_total_incomes,omitempty"`
	ChangeFromPreviousMonth   *float64 `json:"change_from_previous_month,omitempty"`
}

type categoryStatsResponse struct {
	Current  map[string]categoryStatResponse `json:"current"`
	Previous map[string]categoryStatResponse `json:"previous"`
}

func toCategoryStatsResponse(stats services.CategoryStats) categoryStatsResponse {
	return categoryStatsResponse{
		Current:  toStatMap(stats.Current),
		Previous: toStatMap(stats.Previous),
	}
}

func toStatMap(in map[string]services.CategoryStat) map[string]categoryStatResponse {
	out := make(map[string]categoryStatResponse, len(in))
	for cat, stat := range in {
		out[cat] = categoryStatResponse{
			Type:                      string(stat.Type),
			TotalExpenseCents:         stat.TotalExpense.Cents,
			TotalIncomeCents:          stat.TotalIncome.Cents,
			PercentageOfTotalExpenses: finiteOrNil(stat.PercentageOfTotalExpenses),
			PercentageOfTotalIncomes:  finiteOrNil(stat.PercentageOfTotalIncomes),
			ChangeFromPreviousMonth:   finiteOrNil(stat.ChangeFromPreviousMonth),
		}
	}
	return out
}

// finiteOrNil drops non-finite values; encoding/json cannot represent them
// and a zero-baseline change serializes as null.
func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsInf(*v, 0) || math.IsNaN(*v) {
		return nil
	}
	return v
}

type overviewResponse struct {
	User                  userResponse `json:"user"`
	ThisMonthExpenseCents int64        `json:"this_month_expense_cents"`
	LastMonthExpenseCents int64        `json:"last_month_expense_cents"`
	ThisMonthIncomeCents  int64        `json:"this_month_income_cents"`
	LastMonthIncomeCents  int64        `json:"last_month_income_cents"`
	PercentOfBudget       float64      `json:"percent_of_budget"`
}

func toOverviewResponse(o services.Overview) overviewResponse {
	return overviewResponse{
		User:                  toUserResponse(o.User),
		ThisMonthExpenseCents: o.ThisMonthExpense.Cents,
		LastMonthExpenseCents: o.LastMonthExpense.Cents,
		ThisMonthIncomeCents:  o.ThisMonthIncome.Cents,
		LastMonthIncomeCents:  o.LastMonthIncome.Cents,
		PercentOfBudget:       o.PercentOfBudget,
	}
}
