package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func main() {
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

	slog.Info("Starting settlement worker",
		"component", "worker",
		"interval", cfg.Settlement.Interval,
		"notify_days", cfg.Settlement.NotifyDays)

	repo, err := storage.NewRepository(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to initialize repository", "component", "worker", "error", err, "path", cfg.DB.Path)
		os.Exit(1)
	}
	defer repo.Close()

	var notifier services.Notifier
	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP client, continuing without notifications",
				"component", "worker", "error", err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	ledger := services.NewLedgerService(repo, notifier)
	processor := services.NewSettlementProcessor(repo, ledger)
	upcoming := services.NewUpcomingChecker(repo, notifier, cfg.Settlement.NotifyDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First pass immediately; the ticker handles the rest. Passes are
	// idempotent per billing period, so overlap with a previous crash or a
	// concurrent worker is safe.
	runPass(ctx, processor, upcoming)

	ticker := time.NewTicker(cfg.Settlement.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Settlement worker stopped", "component", "worker")
			return
		case <-ticker.C:
			runPass(ctx, processor, upcoming)
		}
	}
}

func runPass(ctx context.Context, processor *services.SettlementProcessor, upcoming *services.UpcomingChecker) {
	now := time.Now()

	settled, err := processor.RunPass(ctx, now)
	if err != nil {
		slog.Error("Settlement pass finished with errors",
			"component", "worker", "settled", settled, "error", err)
	} else {
		slog.Info("Settlement pass complete",
			"component", "worker", "settled", settled)
	}

	notified, err := upcoming.RunPass(ctx, now)
	if err != nil {
		slog.Error("Upcoming-payments check failed",
			"component", "worker", "error", err)
	} else if notified > 0 {
		slog.Info("Upcoming-payments notifications sent",
			"component", "worker", "users", notified)
	}
}
