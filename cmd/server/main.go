package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/truedezigner/notch/internal/api"
	"github.com/truedezigner/notch/internal/config"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/ntfy"
	"github.com/truedezigner/notch/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(db, cfg.Scheduler, cfg.BaseURL, ntfy.NewClient(cfg.Ntfy), logger)
	go sched.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.SetupRouter(db, cfg),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()
	logger.Info("notch started", "port", cfg.Port, "db", cfg.DBPath)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("notch stopped")
}
