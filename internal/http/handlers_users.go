package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type createUserRequest struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (s *Server) handleCreateOrGetUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.users.CreateOrGet(r.Context(), req.ID, req.Email, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type setBalanceRequest struct {
	BalanceCents int64 `json:"balance_cents"`
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req setBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.users.SetBalance(r.Context(), userID, moneyCents(req.BalanceCents))
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	key := userID + ":overview"
	if cached, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toOverviewResponse(cached))
		return
	}

	o, err := s.stats.GetOverview(r.Context(), userID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	s.overviewCache.Set(key, o)
	writeJSON(w, http.StatusOK, toOverviewResponse(o))
}

// handleCategoryStats serves the per-category rollup for ?year=&month=,
// defaulting to the current month. Responses are cached per user and month.
func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid year parameter")
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			badRequest(w, "invalid month parameter")
			return
		}
		month = parsed
	}

	key := fmt.Sprintf("%s:stats:%04d-%02d", userID, year, month)
	if cached, ok := s.statsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toCategoryStatsResponse(cached))
		return
	}

	stats, err := s.stats.GetCategoryStats(r.Context(), userID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	s.statsCache.Set(key, stats)
	writeJSON(w, http.StatusOK, toCategoryStatsResponse(stats))
}
