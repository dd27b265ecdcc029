// Package importer persists batches of already-parsed transaction records
// and triggers the auto-link orchestrator once per batch. Parsing the
// source CSV formats is the import pipeline's job, not this package's.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ledgerlink/internal/application/autolink"
	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/infrastructure/storage"
	"ledgerlink/internal/models"
)

// Result reports one import batch.
type Result struct {
	ImportedCount int              `json:"imported_count"`
	AutoLink      *autolink.Result `json:"auto_link,omitempty"`
}

// Service persists import batches and runs post-import auto-linking.
type Service struct {
	store        storage.TransactionStore
	linker       *linker.Service
	orchestrator *autolink.Orchestrator
	logger       *slog.Logger
}

// NewService creates an import service. A nil orchestrator disables
// post-import auto-linking; a nil linker skips suggestion cache
// invalidation.
func NewService(store storage.TransactionStore, linkService *linker.Service, orchestrator *autolink.Orchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        store,
		linker:       linkService,
		orchestrator: orchestrator,
		logger:       logger.With("system", "importer"),
	}
}

// ImportBatch persists the records for one user and invokes the
// orchestrator once the raw rows are stored. Records without an identifier
// get one assigned; records arriving pre-linked are rejected, imports feed
// the unlinked pool only.
func (s *Service) ImportBatch(ctx context.Context, userID string, txs []*models.Transaction) (*Result, error) {
	for _, tx := range txs {
		if tx.IsLinked() {
			return nil, fmt.Errorf("imported transaction %s must not carry a parent link", tx.ID)
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		tx.UserID = userID
	}

	if err := s.store.InsertTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("failed to persist import batch: %w", err)
	}

	// The batch changed the unlinked pool; cached suggestion runs for the
	// user are stale from here on, including the one the orchestrator is
	// about to request.
	if s.linker != nil {
		s.linker.InvalidateSuggestions(userID)
	}

	s.logger.Info("import batch persisted", "user_id", userID, "count", len(txs))

	result := &Result{ImportedCount: len(txs)}
	if s.orchestrator == nil {
		return result, nil
	}

	autoLinkResult, err := s.orchestrator.Run(ctx, userID)
	if err != nil {
		// The batch itself is safely persisted; auto-linking can be rerun.
		return nil, fmt.Errorf("auto-link after import failed: %w", err)
	}
	result.AutoLink = autoLinkResult

	return result, nil
}
