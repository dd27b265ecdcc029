package linker

import (
	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// LinkRequest asks for a set of child transactions to be linked under one
// parent.
type LinkRequest struct {
	ParentTransactionID string          `json:"parent_transaction_id"`
	ChildTransactionIDs []string        `json:"child_transaction_ids"`
	LinkType            models.LinkType `json:"link_type"`
	Confidence          int             `json:"confidence"`
	Metadata            map[string]any  `json:"metadata,omitempty"`
}

// UpdateLinkRequest partially updates the linking fields of one record.
// The parent reference itself is never touched by an update; unlink and
// relink instead.
type UpdateLinkRequest struct {
	TransactionID string           `json:"transaction_id"`
	Confidence    *int             `json:"confidence,omitempty"`
	LinkType      *models.LinkType `json:"link_type,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
}

// ValidationResult reports whether a link request is acceptable. Errors
// block the link; warnings do not.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// LinkResponse reports the outcome of a link creation. LinkedCount
// reflects partial success: some children may have been linked even when
// Success is false.
type LinkResponse struct {
	Success     bool     `json:"success"`
	LinkedCount int      `json:"linked_count"`
	Errors      []string `json:"errors,omitempty"`
	// AlreadyLinked lists children another run claimed between validation
	// and the write. Retrying will not help; the records are taken.
	AlreadyLinked []string `json:"already_linked,omitempty"`
}

// OperationResponse is the uniform outcome shape for unlink and update
// operations.
type OperationResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
}

// TransactionHierarchy is a parent with its direct children and their
// summed amount, for display.
type TransactionHierarchy struct {
	Parent         *models.Transaction   `json:"parent"`
	Children       []*models.Transaction `json:"children"`
	ChildrenAmount decimal.Decimal       `json:"children_amount"`
}

// LinkSuggestion is a user-facing match candidate awaiting review.
type LinkSuggestion struct {
	Parent      *models.Transaction   `json:"parent"`
	Children    []*models.Transaction `json:"children"`
	DateScore   int                   `json:"date_score"`
	AmountScore int                   `json:"amount_score"`
	TotalScore  int                   `json:"total_score"`
	Confidence  string                `json:"confidence"`
	// Breakdown is a human-readable score summary for the review UI.
	Breakdown string `json:"breakdown"`
}
