package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Repository) {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := &config.Config{}
	cfg.App.Port = 8081
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second

	ledger := services.NewLedgerService(repo, nil)
	settlement := services.NewSettlementProcessor(repo, ledger)
	stats := services.NewStatsService(repo)
	users := services.NewUserService(repo)
	savings := services.NewSavingsService(repo, ledger)

	return NewServer(cfg, ledger, settlement, stats, users, savings, repo), repo
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createTestUser(t *testing.T, s *Server, id string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id":    id,
		"email": id + "@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrGetUserDefaults(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id":    "u1",
		"email": "mario@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	u := decodeJSON[userResponse](t, rec)
	assert.Equal(t, "mario", u.Username)
	assert.Equal(t, int64(300000), u.MonthlyLimitCents)
	assert.Equal(t, int64(0), u.BalanceCents)

	// Second call returns the same user, not a duplicate.
	rec = doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"id":    "u1",
		"email": "mario@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decodeJSON[userResponse](t, rec).ID)
}

func TestPostTransactionFlow(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	rec := doJSON(t, s, http.MethodPost, "/api/users/u1/transactions/", map[string]any{
		"title":        "Groceries",
		"category":     "food",
		"type":         "expense",
		"amount_cents": 5000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tx := decodeJSON[transactionResponse](t, rec)
	assert.Equal(t, int64(-5000), tx.AmountCents)

	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/transactions/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decodeJSON[summaryResponse](t, rec)
	assert.Equal(t, int64(-5000), sum.BalanceCents)
	assert.Equal(t, int64(-5000), sum.ExpenseCents)
	assert.Equal(t, int64(1), sum.TotalTransactions)

	// Decimal-string amounts are accepted too.
	rec = doJSON(t, s, http.MethodPost, "/api/users/u1/transactions/", map[string]any{
		"title":    "Salary",
		"category": "salary",
		"type":     "income",
		"amount":   "2000.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(200000), decodeJSON[transactionResponse](t, rec).AmountCents)

	rec = doJSON(t, s, http.MethodDelete, "/api/users/u1/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/users/u1/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing amount", map[string]any{"title": "x", "category": "c", "type": "expense"}},
		{"bad type", map[string]any{"title": "x", "category": "c", "type": "transfer", "amount_cents": 100}},
		{"missing title", map[string]any{"category": "c", "type": "expense", "amount_cents": 100}},
		{"negative cents", map[string]any{"title": "x", "category": "c", "type": "expense", "amount_cents": -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/users/u1/transactions/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPostTransactionUnknownUser(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users/ghost/transactions/", map[string]any{
		"title":        "x",
		"category":     "c",
		"type":         "expense",
		"amount_cents": 100,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecurringEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	rec := doJSON(t, s, http.MethodPost, "/api/users/u1/recurrings/", map[string]any{
		"title":        "Rent",
		"amount_cents": 90000,
		"day_of_month": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[recurringResponse](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/users/u1/recurrings/", map[string]any{
		"title":        "Broken",
		"amount_cents": 100,
		"day_of_month": 32,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/recurrings/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]recurringResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = doJSON(t, s, http.MethodDelete, "/api/users/u1/recurrings/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestObligationEndpointsAndManualSettle(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	rec := doJSON(t, s, http.MethodPost, "/api/users/u1/incoming-payments/", map[string]any{
		"title":        "Electricity",
		"amount_cents": 8000,
		"deadline":     time.Now().AddDate(0, 0, 10).UnixMilli(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decodeJSON[obligationResponse](t, rec)
	assert.Equal(t, "expense", o.Direction)

	// Auto-settle without a deadline is rejected.
	rec = doJSON(t, s, http.MethodPost, "/api/users/u1/incoming-payments/", map[string]any{
		"title":        "Broken",
		"amount_cents": 100,
		"auto_settle":  true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/users/u1/incoming-payments/%s/settle", o.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tx := decodeJSON[transactionResponse](t, rec)
	assert.Equal(t, int64(-8000), tx.AmountCents)
	assert.Equal(t, "incoming_payment", tx.Category)

	// The settled obligation is gone.
	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/incoming-payments/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]obligationResponse](t, rec))

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/users/u1/incoming-payments/%s/settle", o.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSavingsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	rec := doJSON(t, s, http.MethodPost, "/api/users/u1/savings/", map[string]any{
		"title":      "Vacation",
		"goal_cents": 100000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sv := decodeJSON[savingResponse](t, rec)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/users/u1/savings/%s/deposit", sv.ID), map[string]any{
		"amount_cents": 25000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	deposited := decodeJSON[savingResponse](t, rec)
	assert.Equal(t, int64(25000), deposited.DepositedCents)
	assert.InDelta(t, 25.0, deposited.GoalPercentage, 0.001)

	// The deposit moved the balance through an internal transaction.
	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/transactions/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-25000), decodeJSON[summaryResponse](t, rec).BalanceCents)
}

func TestCategoryStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	createTestUser(t, s, "u1")

	for _, body := range []map[string]any{
		{"title": "Groceries", "category": "food", "type": "expense", "amount_cents": 3000},
		{"title": "Shoes", "category": "shopping", "type": "expense", "amount_cents": 1000},
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/users/u1/transactions/", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/users/u1/stats/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeJSON[categoryStatsResponse](t, rec)

	food := stats.Current["food"]
	require.NotNil(t, food.PercentageOfTotalExpenses)
	assert.Equal(t, 75.0, *food.PercentageOfTotalExpenses)
	assert.Nil(t, food.ChangeFromPreviousMonth)

	// Posting invalidates the cached rollup.
	rec = doJSON(t, s, http.MethodPost, "/api/users/u1/transactions/", map[string]any{
		"title": "More food", "category": "food", "type": "expense", "amount_cents": 6000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/stats/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = decodeJSON[categoryStatsResponse](t, rec)
	assert.Equal(t, int64(9000), stats.Current["food"].TotalExpenseCents)

	rec = doJSON(t, s, http.MethodGet, "/api/users/u1/stats/categories?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
