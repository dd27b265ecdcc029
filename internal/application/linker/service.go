// Package linker validates and persists parent/child transaction links and
// surfaces match suggestions for review.
//
// The matching computation itself lives in the matcher package and never
// fails; everything here that touches the store reports failure through
// structured response payloads rather than raised errors, so the API and
// the orchestrator share one failure channel.
package linker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"ledgerlink/internal/domain/matcher"
	"ledgerlink/internal/infrastructure/storage"
	"ledgerlink/internal/models"
)

const (
	suggestionCacheTTL     = 5 * time.Minute
	suggestionCacheCleanup = 10 * time.Minute
)

// Service coordinates the matching engine and the transaction store.
type Service struct {
	store  storage.TransactionStore
	engine *matcher.Engine
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService creates a linking service using the given store and matching
// configuration.
func NewService(store storage.TransactionStore, cfg matcher.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		engine: matcher.NewEngine(cfg),
		cache:  cache.New(suggestionCacheTTL, suggestionCacheCleanup),
		logger: logger.With("system", "linker"),
	}
}

// ValidateLink checks a link request against the already-fetched parent and
// children. It never fails; the caller decides what to do with the result.
//
// A manual link whose amounts differ by more than 10% draws a warning but
// is still valid — users sometimes reconcile partial or adjusted charges on
// purpose.
func (s *Service) ValidateLink(req LinkRequest, parent *models.Transaction, children []*models.Transaction) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(children) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "at least one child transaction is required")
		return result
	}

	if parent.IsLinked() {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("parent %s is itself linked to another transaction", parent.ID))
	}

	childrenTotal := decimal.Zero
	for _, child := range children {
		if child.ID == parent.ID {
			result.Valid = false
			result.Errors = append(result.Errors, "a transaction cannot be linked to itself")
			continue
		}
		if child.IsLinked() {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("child %s already has a parent", child.ID))
		}
		childrenTotal = childrenTotal.Add(child.Amount)
	}

	if req.LinkType == models.LinkTypeManual && !parent.Amount.IsZero() {
		difference := parent.Amount.Sub(childrenTotal).Abs()
		threshold := parent.Amount.Abs().Mul(decimal.NewFromFloat(0.10))
		if difference.GreaterThan(threshold) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("amounts differ by %s, more than 10%% of the parent amount", difference.StringFixed(2)))
		}
	}

	return result
}

// CreateLink validates the request and sets the linking fields on every
// listed child. Children are updated one at a time; a failure on one child
// is recorded and does not roll back the others, so LinkedCount can be
// smaller than the request on partial failure.
func (s *Service) CreateLink(ctx context.Context, req LinkRequest) LinkResponse {
	parent, err := s.store.GetByID(ctx, req.ParentTransactionID)
	if err != nil {
		return LinkResponse{Errors: []string{fmt.Sprintf("parent %s: %v", req.ParentTransactionID, err)}}
	}

	children := make([]*models.Transaction, 0, len(req.ChildTransactionIDs))
	var fetchErrors []string
	for _, childID := range req.ChildTransactionIDs {
		child, err := s.store.GetByID(ctx, childID)
		if err != nil {
			fetchErrors = append(fetchErrors, fmt.Sprintf("child %s: %v", childID, err))
			continue
		}
		children = append(children, child)
	}
	if len(fetchErrors) > 0 {
		return LinkResponse{Errors: fetchErrors}
	}

	validation := s.ValidateLink(req, parent, children)
	if !validation.Valid {
		return LinkResponse{Errors: validation.Errors}
	}
	for _, warning := range validation.Warnings {
		s.logger.Warn("link validation warning", "parent_id", parent.ID, "warning", warning)
	}

	confidence := clampConfidence(req.Confidence)
	metadata := make(map[string]any, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["linked_at"] = time.Now().UTC().Format(time.RFC3339)

	linkType := req.LinkType
	update := storage.LinkUpdate{
		ParentTransactionID: &parent.ID,
		LinkType:            &linkType,
		LinkConfidence:      &confidence,
		LinkMetadata:        metadata,
		RequireUnlinked:     true,
	}

	response := LinkResponse{}
	for _, child := range children {
		affected, err := s.store.UpdateTransactionLinks(ctx, []string{child.ID}, update)
		if err != nil {
			response.Errors = append(response.Errors, fmt.Sprintf("child %s: %v", child.ID, err))
			continue
		}
		if affected == 0 {
			response.AlreadyLinked = append(response.AlreadyLinked, child.ID)
			response.Errors = append(response.Errors,
				fmt.Sprintf("child %s: %v", child.ID, storage.ErrAlreadyLinked))
			continue
		}
		response.LinkedCount += int(affected)
	}

	response.Success = len(response.Errors) == 0
	if response.LinkedCount > 0 {
		s.InvalidateSuggestions(parent.UserID)
		s.logger.Info("link created",
			"parent_id", parent.ID,
			"linked_count", response.LinkedCount,
			"link_type", string(req.LinkType),
			"confidence", confidence,
		)
	}

	return response
}

// RemoveLink clears all four linking fields on exactly one record,
// returning it to the unlinked state.
func (s *Service) RemoveLink(ctx context.Context, transactionID string) OperationResponse {
	tx, err := s.store.GetByID(ctx, transactionID)
	if err != nil {
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s: %v", transactionID, err)}}
	}
	if !tx.IsLinked() {
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s is not linked", transactionID)}}
	}

	if _, err := s.store.UpdateTransactionLinks(ctx, []string{transactionID}, storage.LinkUpdate{Clear: true}); err != nil {
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s: %v", transactionID, err)}}
	}

	s.InvalidateSuggestions(tx.UserID)
	s.logger.Info("link removed", "transaction_id", transactionID)
	return OperationResponse{Success: true}
}

// UpdateLink partially updates confidence, type or metadata on one linked
// record. The parent reference is left untouched.
func (s *Service) UpdateLink(ctx context.Context, req UpdateLinkRequest) OperationResponse {
	tx, err := s.store.GetByID(ctx, req.TransactionID)
	if err != nil {
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s: %v", req.TransactionID, err)}}
	}
	if !tx.IsLinked() {
		// Confidence and type only exist on linked records.
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s is not linked", req.TransactionID)}}
	}

	update := storage.LinkUpdate{
		LinkType:     req.LinkType,
		LinkMetadata: req.Metadata,
	}
	if req.Confidence != nil {
		confidence := clampConfidence(*req.Confidence)
		update.LinkConfidence = &confidence
	}

	if _, err := s.store.UpdateTransactionLinks(ctx, []string{req.TransactionID}, update); err != nil {
		return OperationResponse{Errors: []string{fmt.Sprintf("transaction %s: %v", req.TransactionID, err)}}
	}

	s.InvalidateSuggestions(tx.UserID)
	return OperationResponse{Success: true}
}

// GetLinkedTransactions fetches a parent and its direct children. Returns
// storage.ErrNotFound when the parent does not exist.
func (s *Service) GetLinkedTransactions(ctx context.Context, parentID string) (*TransactionHierarchy, error) {
	parent, err := s.store.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	children, err := s.store.GetChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of %s: %w", parentID, err)
	}

	childrenAmount := decimal.Zero
	for _, child := range children {
		childrenAmount = childrenAmount.Add(child.Amount)
	}

	return &TransactionHierarchy{
		Parent:         parent,
		Children:       children,
		ChildrenAmount: childrenAmount,
	}, nil
}

// GetLinkSuggestions runs the matching engine over the user's unlinked
// transactions and returns candidates scoring at least minConfidence,
// ranked best first. Results are cached briefly; any link mutation for the
// user invalidates the cache.
func (s *Service) GetLinkSuggestions(ctx context.Context, userID string, minConfidence int) ([]LinkSuggestion, error) {
	cacheKey := fmt.Sprintf("%s:%d", userID, minConfidence)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]LinkSuggestion), nil
	}

	pool, err := s.store.QueryUnlinkedByUser(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked transactions: %w", err)
	}

	// The same pool serves as both parent and child candidates; the engine
	// scopes parents by merchant keyword and never groups a record with
	// itself.
	candidates := s.engine.FindMatches(pool, pool)

	suggestions := make([]LinkSuggestion, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.TotalScore < minConfidence {
			continue
		}
		suggestions = append(suggestions, toSuggestion(candidate))
	}

	s.cache.Set(cacheKey, suggestions, cache.DefaultExpiration)
	s.logger.Debug("computed link suggestions",
		"user_id", userID,
		"pool_size", len(pool),
		"suggestions", len(suggestions),
	)

	return suggestions, nil
}

// Config returns the matching configuration the service runs with.
func (s *Service) Config() matcher.Config {
	return s.engine.Config()
}

// InvalidateSuggestions drops cached suggestion runs for one user. Link
// mutations call it internally; callers that change the unlinked pool
// behind the service's back, like the importer persisting a new batch,
// call it themselves so the next run sees the new records.
func (s *Service) InvalidateSuggestions(userID string) {
	prefix := userID + ":"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

func toSuggestion(candidate *matcher.MatchCandidate) LinkSuggestion {
	return LinkSuggestion{
		Parent:      candidate.Parent,
		Children:    candidate.Children,
		DateScore:   candidate.DateScore,
		AmountScore: candidate.AmountScore,
		TotalScore:  candidate.TotalScore,
		Confidence:  string(candidate.Confidence),
		Breakdown: fmt.Sprintf("date %d/40, amount %d/50, total %d (%s)",
			candidate.DateScore, candidate.AmountScore, candidate.TotalScore, candidate.Confidence),
	}
}

// clampConfidence bounds a confidence value to the persisted 0-100 range.
func clampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
