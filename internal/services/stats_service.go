package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"ledger/internal/core"
)

// StatsStore is the read-only slice of the repository the aggregator uses.
type StatsStore interface {
	ListMonthTransactions(ctx context.Context, userID string, year, month int, excludeInternal bool) ([]core.Transaction, error)
	GetUser(ctx context.Context, id string) (core.User, error)
}

// CategoryStat aggregates one category within one month. A category can
// accumulate both expense and income totals when it is used for both; each
// side is tracked independently.
type CategoryStat struct {
	Type         core.TransactionType
	TotalExpense core.Money
	TotalIncome  core.Money

	// Percentage of the month's total for the matching direction, rounded
	// to two decimals. Not set for the opposite direction.
	PercentageOfTotalExpenses *float64
	PercentageOfTotalIncomes  *float64

	// Change versus the previous month for the same direction. Nil when the
	// category is absent in the previous month; when the previous total is
	// present but exactly zero the ratio is non-finite and propagated as-is.
	// Callers must guard before rendering.
	ChangeFromPreviousMonth *float64
}

// CategoryStats covers the requested month and the one before it.
type CategoryStats struct {
	Current  map[string]CategoryStat
	Previous map[string]CategoryStat
}

// Overview is the budget-facing monthly summary for one user.
type Overview struct {
	User             core.User
	ThisMonthExpense core.Money
	LastMonthExpense core.Money
	ThisMonthIncome  core.Money
	LastMonthIncome  core.Money
	PercentOfBudget  float64
}

// StatsService computes category rollups from the transaction log. Internal
// operations are excluded throughout; they move money between the user's own
// buckets and must not show up as spending.
type StatsService struct {
	store StatsStore
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// GetCategoryStats aggregates per-category totals, percentages of the
// monthly total and month-over-month change for the given month and the
// previous one.
func (s *StatsService) GetCategoryStats(ctx context.Context, userID string, year, month int) (CategoryStats, error) {
	current, err := s.monthStats(ctx, userID, year, month)
	if err != nil {
		return CategoryStats{}, fmt.Errorf("current month: %w", err)
	}

	prevYear, prevMonth := core.PreviousMonth(year, month)
	previous, err := s.monthStats(ctx, userID, prevYear, prevMonth)
	if err != nil {
		return CategoryStats{}, fmt.Errorf("previous month: %w", err)
	}

	for cat, stat := range current {
		prev, ok := previous[cat]
		if !ok {
			continue
		}
		var cur, base int64
		switch stat.Type {
		case core.Expense:
			cur, base = stat.TotalExpense.Cents, prev.TotalExpense.Cents
		case core.Income:
			cur, base = stat.TotalIncome.Cents, prev.TotalIncome.Cents
		}
		// Division by a zero baseline yields a non-finite change on purpose.
		change := round2(float64(cur-base) / float64(base) * 100)
		stat.ChangeFromPreviousMonth = &change
		current[cat] = stat
	}

	return CategoryStats{Current: current, Previous: previous}, nil
}

func (s *StatsService) monthStats(ctx context.Context, userID string, year, month int) (map[string]CategoryStat, error) {
	txs, err := s.store.ListMonthTransactions(ctx, userID, year, month, true)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]CategoryStat)
	var totalExpense, totalIncome int64

	for _, tx := range txs {
		stat := stats[tx.Category]
		stat.Type = tx.Type
		abs := tx.Amount.Abs().Cents
		switch tx.Type {
		case core.Expense:
			stat.TotalExpense.Cents += abs
			totalExpense += abs
		case core.Income:
			stat.TotalIncome.Cents += abs
			totalIncome += abs
		}
		stats[tx.Category] = stat
	}

	for cat, stat := range stats {
		switch stat.Type {
		case core.Expense:
			pct := round2(float64(stat.TotalExpense.Cents) / float64(totalExpense) * 100)
			stat.PercentageOfTotalExpenses = &pct
		case core.Income:
			pct := round2(float64(stat.TotalIncome.Cents) / float64(totalIncome) * 100)
			stat.PercentageOfTotalIncomes = &pct
		}
		stats[cat] = stat
	}

	return stats, nil
}

// GetOverview reports the current and previous month's non-internal totals
// plus how much of the monthly budget is already spent.
func (s *StatsService) GetOverview(ctx context.Context, userID string, now time.Time) (Overview, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	o := Overview{User: user}

	year, month := now.Year(), int(now.Month())
	thisMonth, err := s.store.ListMonthTransactions(ctx, userID, year, month, true)
	if err != nil {
		return Overview{}, fmt.Errorf("this month: %w", err)
	}
	prevYear, prevMonth := core.PreviousMonth(year, month)
	lastMonth, err := s.store.ListMonthTransactions(ctx, userID, prevYear, prevMonth, true)
	if err != nil {
		return Overview{}, fmt.Errorf("last month: %w", err)
	}

	o.ThisMonthExpense, o.ThisMonthIncome = sumByType(thisMonth)
	o.LastMonthExpense, o.LastMonthIncome = sumByType(lastMonth)

	if user.MonthlyLimit.Cents > 0 {
		o.PercentOfBudget = round2(float64(o.ThisMonthExpense.Cents) / float64(user.MonthlyLimit.Cents) * 100)
	}
	return o, nil
}

func sumByType(txs []core.Transaction) (expense, income core.Money) {
	for _, tx := range txs {
		switch tx.Type {
		case core.Expense:
			expense.Cents += tx.Amount.Abs().Cents
		case core.Income:
			income.Cents += tx.Amount.Abs().Cents
		}
	}
	return expense, income
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
