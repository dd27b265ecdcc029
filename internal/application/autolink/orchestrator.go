// Package autolink runs the matching engine end-to-end after an import:
// high-confidence matches are committed as links, medium-confidence ones
// are surfaced as suggestions for user review.
package autolink

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/models"
)

// Result reports one auto-link run.
type Result struct {
	// Success is true iff no individual link creation failed.
	Success         bool         `json:"success"`
	TotalMatches    int          `json:"total_matches"`
	AutoLinkedCount int          `json:"auto_linked_count"`
	SuggestedCount  int          `json:"suggested_count"`
	Errors          []string     `json:"errors,omitempty"`
	AutoLinked      []LinkedPair `json:"auto_linked,omitempty"`
	// Suggested holds the medium-confidence candidates left for review,
	// never auto-persisted.
	Suggested []linker.LinkSuggestion `json:"suggested,omitempty"`
}

// LinkedPair records one committed link.
type LinkedPair struct {
	ParentTransactionID string   `json:"parent_transaction_id"`
	ChildTransactionIDs []string `json:"child_transaction_ids"`
	TotalScore          int      `json:"total_score"`
}

// Orchestrator drives the suggest-then-commit workflow.
type Orchestrator struct {
	linker *linker.Service
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given linking service.
func NewOrchestrator(service *linker.Service, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		linker: service,
		logger: logger.With("system", "autolink"),
	}
}

// Run fetches match candidates for the user at the suggest threshold,
// commits every high-confidence candidate as an auto link, and returns the
// medium-confidence remainder as suggestions.
//
// Candidates arrive ranked best first; a candidate whose children were
// already claimed by a higher-scoring candidate in the same run is skipped
// rather than double-linked. A persistence failure on one candidate is
// recorded and processing continues — one bad record should not block
// unrelated links in the same run.
func (o *Orchestrator) Run(ctx context.Context, userID string) (*Result, error) {
	cfg := o.linker.Config()

	suggestions, err := o.linker.GetLinkSuggestions(ctx, userID, cfg.SuggestThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch link suggestions: %w", err)
	}

	result := &Result{TotalMatches: len(suggestions)}
	claimed := make(map[string]bool)

	for _, suggestion := range suggestions {
		if suggestion.TotalScore < cfg.AutoLinkThreshold {
			result.Suggested = append(result.Suggested, suggestion)
			continue
		}

		childIDs := make([]string, 0, len(suggestion.Children))
		alreadyClaimed := false
		for _, child := range suggestion.Children {
			if claimed[child.ID] {
				alreadyClaimed = true
				break
			}
			childIDs = append(childIDs, child.ID)
		}
		if alreadyClaimed || claimed[suggestion.Parent.ID] {
			o.logger.Debug("skipping candidate with already claimed transactions",
				"parent_id", suggestion.Parent.ID, "total_score", suggestion.TotalScore)
			continue
		}

		response := o.linker.CreateLink(ctx, linker.LinkRequest{
			ParentTransactionID: suggestion.Parent.ID,
			ChildTransactionIDs: childIDs,
			LinkType:            models.LinkTypeAuto,
			Confidence:          suggestion.TotalScore,
			Metadata: map[string]any{
				"date_score":   suggestion.DateScore,
				"amount_score": suggestion.AmountScore,
				"total_score":  suggestion.TotalScore,
			},
		})

		if !response.Success {
			result.Errors = append(result.Errors, response.Errors...)
			o.logger.Error("auto-link failed",
				"parent_id", suggestion.Parent.ID,
				"errors", response.Errors,
			)
			continue
		}

		claimed[suggestion.Parent.ID] = true
		for _, childID := range childIDs {
			claimed[childID] = true
		}

		result.AutoLinkedCount++
		result.AutoLinked = append(result.AutoLinked, LinkedPair{
			ParentTransactionID: suggestion.Parent.ID,
			ChildTransactionIDs: childIDs,
			TotalScore:          suggestion.TotalScore,
		})
	}

	result.SuggestedCount = len(result.Suggested)
	result.Success = len(result.Errors) == 0

	o.logger.Info("auto-link run complete",
		"user_id", userID,
		"total_matches", result.TotalMatches,
		"auto_linked", result.AutoLinkedCount,
		"suggested", result.SuggestedCount,
		"errors", len(result.Errors),
	)

	return result, nil
}
