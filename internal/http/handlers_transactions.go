package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ledger/internal/core"
	"ledger/internal/services"
)

type postTransactionRequest struct {
	amountField
	Title             string `json:"title"`
	Category          string `json:"category"`
	Type              string `json:"type"`
	Note              string `json:"note"`
	InternalOperation bool   `json:"internal_operation"`
	CreatedAt         int64  `json:"created_at"`
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req postTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := req.money()
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := s.ledger.PostTransaction(r.Context(), services.PostTransactionParams{
		UserID:            userID,
		Title:             req.Title,
		Category:          req.Category,
		Note:              req.Note,
		Amount:            amount,
		Type:              core.TransactionType(req.Type),
		InternalOperation: req.InternalOperation,
		CreatedAt:         req.CreatedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// handleListTransactions returns the full log, or the trailing window when
// ?days=N is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var (
		txs []core.Transaction
		err error
	)
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, convErr := strconv.Atoi(daysParam)
		if convErr != nil {
			badRequest(w, "invalid days parameter")
			return
		}
		txs, err = s.ledger.ListLastDays(r.Context(), userID, days)
	} else {
		txs, err = s.ledger.ListTransactions(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponseList(txs))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	id := chi.URLParam(r, "id")

	if err := s.ledger.DeleteTransaction(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	sum, err := s.ledger.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}
