package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/config"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if err := log.Setup(cfg.App.LogLevel, cfg.App.LogFormat); err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting ledger API", "component", "app", "port", cfg.App.Port)

	repo, err := storage.NewRepository(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to initialize repository", "component", "app", "error", err, "path", cfg.DB.Path)
		os.Exit(1)
	}
	defer repo.Close()

	// Notifications are optional; without AMQP the ledger runs standalone.
	var notifier services.Notifier
	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP client, continuing without notifications",
				"component", "app", "error", err)
		} else {
			defer client.Close()
			notifier = client
			slog.Info("AMQP notifications enabled", "component", "app", "queue", cfg.AMQP.Queue)
		}
	} else {
		slog.Info("AMQP disabled, notifications off", "component", "app")
	}

	ledger := services.NewLedgerService(repo, notifier)
	settlement := services.NewSettlementProcessor(repo, ledger)
	stats := services.NewStatsService(repo)
	users := services.NewUserService(repo)
	savings := services.NewSavingsService(repo, ledger)

	server := apphttp.NewServer(cfg, ledger, settlement, stats, users, savings, repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		cache.NewManager(server.Caches()...).Run(ctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("Shutting down", "component", "app")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "component", "app", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped gracefully", "component", "app")
}
