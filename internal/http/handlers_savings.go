package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createSavingRequest struct {
	Title     string `json:"title"`
	GoalCents int64  `json:"goal_cents"`
	Goal      string `json:"goal"`
}

func (s *Server) handleCreateSaving(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createSavingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	goal, err := amountField{AmountCents: req.GoalCents, Amount: req.Goal}.money()
	if err != nil {
		writeError(w, err)
		return
	}

	sv, err := s.savings.Create(r.Context(), userID, req.Title, goal)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSavingResponse(sv))
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	savings, err := s.savings.List(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]savingResponse, 0, len(savings))
	for _, sv := range savings {
		out = append(out, toSavingResponse(sv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	err := s.savings.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type depositRequest struct {
	amountField
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := req.money()
	if err != nil {
		writeError(w, err)
		return
	}

	sv, err := s.savings.Deposit(r.Context(), chi.URLParam(r, "id"), userID, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusOK, toSavingResponse(sv))
}
