// Package http is the JSON API in front of the ledger services. Routes are
// grouped per resource; every handler resolves the user from the path and
// delegates to the service layer.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ledger/internal/cache"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

const (
	statsCacheSize = 256
	statsCacheTTL  = 5 * time.Minute
)

// Server wires the routes and owns the response caches.
type Server struct {
	srv *http.Server

	ledger     *services.LedgerService
	settlement *services.SettlementProcessor
	stats      *services.StatsService
	users      *services.UserService
	savings    *services.SavingsService
	store      *storage.Repository

	statsCache    *cache.LRUCache[services.CategoryStats]
	overviewCache *cache.LRUCache[services.Overview]
}

func NewServer(
	cfg *config.Config,
	ledger *services.LedgerService,
	settlement *services.SettlementProcessor,
	stats *services.StatsService,
	users *services.UserService,
	savings *services.SavingsService,
	store *storage.Repository,
) *Server {
	s := &Server{
		ledger:        ledger,
		settlement:    settlement,
		stats:         stats,
		users:         users,
		savings:       savings,
		store:         store,
		statsCache:    cache.NewLRUCache[services.CategoryStats](statsCacheSize, statsCacheTTL),
		overviewCache: cache.NewLRUCache[services.Overview](statsCacheSize, statsCacheTTL),
	}

	s.srv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateOrGetUser)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Put("/balance", s.handleSetBalance)
			r.Get("/overview", s.handleOverview)
			r.Get("/stats/categories", s.handleCategoryStats)

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", s.handlePostTransaction)
				r.Get("/", s.handleListTransactions)
				r.Get("/summary", s.handleSummary)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Route("/recurrings", func(r chi.Router) {
				r.Post("/", s.handleCreateRecurring)
				r.Get("/", s.handleListRecurrings)
				r.Delete("/{id}", s.handleDeleteRecurring)
			})

			r.Route("/incoming-payments", func(r chi.Router) {
				r.Post("/", s.handleCreateObligation(core.Expense))
				r.Get("/", s.handleListObligations(core.Expense))
				r.Delete("/{id}", s.handleDeleteObligation(core.Expense))
				r.Post("/{id}/settle", s.handleSettleObligation(core.Expense))
			})

			r.Route("/incoming-incomes", func(r chi.Router) {
				r.Post("/", s.handleCreateObligation(core.Income))
				r.Get("/", s.handleListObligations(core.Income))
				r.Delete("/{id}", s.handleDeleteObligation(core.Income))
				r.Post("/{id}/settle", s.handleSettleObligation(core.Income))
			})

			r.Route("/savings", func(r chi.Router) {
				r.Post("/", s.handleCreateSaving)
				r.Get("/", s.handleListSavings)
				r.Delete("/{id}", s.handleDeleteSaving)
				r.Post("/{id}/deposit", s.handleDeposit)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// invalidateUser drops the user's cached statistics after any write that
// changes what they would report.
func (s *Server) invalidateUser(userID string) {
	s.statsCache.DeletePrefix(userID + ":")
	s.overviewCache.DeletePrefix(userID + ":")
}

// Caches returns the caches for periodic expired-entry cleanup.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.statsCache, s.overviewCache}
}
