// Command api serves the transaction linking backend over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledgerlink/internal/api"
	"ledgerlink/internal/application/autolink"
	"ledgerlink/internal/application/importer"
	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/infrastructure/config"
	"ledgerlink/internal/infrastructure/logging"
	"ledgerlink/internal/infrastructure/storage"
)

func main() {
	// Local development keeps secrets and overrides in .env
	_ = godotenv.Load()

	cfg := config.LoadOrEnv()
	logger := logging.NewLogger(cfg.Observability.Logging)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	linkService := linker.NewService(store, cfg.MatcherConfig(), logger)
	orchestrator := autolink.NewOrchestrator(linkService, logger)
	importService := importer.NewService(store, linkService, orchestrator, logger)

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, store, linkService, orchestrator, importService, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
