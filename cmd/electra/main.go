package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/electra-vote/electra/internal/access"
	"github.com/electra-vote/electra/internal/app"
	"github.com/electra-vote/electra/internal/clock"
	"github.com/electra-vote/electra/internal/events"
	"github.com/electra-vote/electra/internal/journal"
	"github.com/electra-vote/electra/internal/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	accessReg, err := access.NewRegistry(cfg.GenesisAdminID(), logger)
	if err != nil {
		logger.Error("seed access registry", slog.Any("error", err))
		os.Exit(1)
	}

	clk := clock.System{}
	bus := events.NewBus(logger)

	var recorder journal.Recorder
	if cfg.JournalPGDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.JournalPGDSN)
		if err != nil {
			logger.Error("connect journal store", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		recorder = journal.NewPostgresRecorder(pool, logger)
	}
	transitions := journal.New(clk, recorder, logger)
	bus.Subscribe(transitions)

	core, err := registry.New(accessReg, clk, bus, logger)
	if err != nil {
		logger.Error("build election registry", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("election core ready",
		slog.String("env", cfg.AppEnv),
		slog.String("genesisAdmin", cfg.GenesisAdmin),
		slog.Bool("persistentJournal", recorder != nil))

	<-ctx.Done()

	if err := transitions.Verify(); err != nil {
		logger.Error("journal verification failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown",
		slog.Int("elections", len(core.All())),
		slog.Int("journalEntries", transitions.Len()))
}
