package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ledger/internal/core"
)

type createRecurringRequest struct {
	amountField
	Title      string `json:"title"`
	DayOfMonth int    `json:"day_of_month"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createRecurringRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := req.money()
	if err != nil {
		writeError(w, err)
		return
	}

	rec := core.Recurring{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      req.Title,
		Amount:     amount,
		DayOfMonth: req.DayOfMonth,
	}
	if err := rec.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.CreateRecurring(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecurringResponse(rec))
}

func (s *Server) handleListRecurrings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListRecurrings(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recurringResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecurringResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteRecurring(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createObligationRequest struct {
	amountField
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    int64  `json:"deadline"`
	AutoSettle  bool   `json:"auto_settle"`
}

func (s *Server) handleCreateObligation(direction core.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req createObligationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		amount, err := req.money()
		if err != nil {
			writeError(w, err)
			return
		}

		o := core.DeadlineObligation{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       req.Title,
			Description: req.Description,
			Amount:      amount,
			Deadline:    req.Deadline,
			AutoSettle:  req.AutoSettle,
			Direction:   direction,
			CreatedAt:   time.Now().UnixMilli(),
		}
		if err := o.Validate(); err != nil {
			writeError(w, err)
			return
		}
		// Auto-settlement needs a deadline to trigger on.
		if o.AutoSettle && o.Deadline == 0 {
			writeError(w, core.ErrMissingDeadline)
			return
		}
		if err := s.store.CreateDeadlineObligation(r.Context(), o); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toObligationResponse(o))
	}
}

func (s *Server) handleListObligations(direction core.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obligations, err := s.store.ListDeadlineObligations(r.Context(), chi.URLParam(r, "userID"), direction)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]obligationResponse, 0, len(obligations))
		for _, o := range obligations {
			out = append(out, toObligationResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleDeleteObligation(direction core.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.store.DeleteDeadlineObligation(r.Context(), direction,
			chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSettleObligation settles one obligation on demand, regardless of its
// deadline or auto-settle flag.
func (s *Server) handleSettleObligation(direction core.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		tx, err := s.settlement.SettleObligation(r.Context(), direction,
			chi.URLParam(r, "id"), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		s.invalidateUser(userID)
		writeJSON(w, http.StatusOK, toTransactionResponse(tx))
	}
}
