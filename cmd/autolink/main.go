// Command autolink runs one auto-link pass for a user from the command
// line, the same workflow the API triggers after an import.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ledgerlink/internal/application/autolink"
	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/infrastructure/config"
	"ledgerlink/internal/infrastructure/logging"
	"ledgerlink/internal/infrastructure/storage"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user ID to auto-link (required)")
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: autolink -user <user-id> [-config config.yaml]")
		os.Exit(2)
	}

	cfg := config.LoadOrEnvWithPath(*configPath)
	logger := logging.NewLogger(cfg.Observability.Logging)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	linkService := linker.NewService(store, cfg.MatcherConfig(), logger)
	orchestrator := autolink.NewOrchestrator(linkService, logger)

	result, err := orchestrator.Run(context.Background(), *userID)
	if err != nil {
		logger.Error("auto-link run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("matches: %d  auto-linked: %d  suggested: %d\n",
		result.TotalMatches, result.AutoLinkedCount, result.SuggestedCount)
	for _, pair := range result.AutoLinked {
		fmt.Printf("  linked %s <- %d children (score %d)\n",
			pair.ParentTransactionID, len(pair.ChildTransactionIDs), pair.TotalScore)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(os.Stderr, "  error: %s\n", err)
	}

	if !result.Success {
		os.Exit(1)
	}
}
