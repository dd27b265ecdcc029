package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// Sentinel errors returned by store implementations.
var (
	// ErrNotFound indicates the requested transaction does not exist.
	ErrNotFound = errors.New("transaction not found")

	// ErrAlreadyLinked indicates a link update with the unlinked
	// precondition matched zero rows: another run claimed the child first.
	ErrAlreadyLinked = errors.New("transaction already linked")
)

// TransactionStore defines the persistence contract for linkable
// transaction records. This interface allows swapping implementations
// (SQLite, in-memory mock) and keeps the linking service testable.
type TransactionStore interface {
	// InsertTransactions persists a batch of freshly imported records.
	InsertTransactions(ctx context.Context, txs []*models.Transaction) error

	// GetByID retrieves a single transaction, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns transactions matching the given filters
	// with pagination.
	ListTransactions(ctx context.Context, filters TransactionFilters) (*TransactionListResult, error)

	// QueryUnlinkedByUser returns the user's transactions with no parent.
	// A non-empty merchantFilter restricts results to merchants containing
	// the filter text, case-insensitively.
	QueryUnlinkedByUser(ctx context.Context, userID, merchantFilter string) ([]*models.Transaction, error)

	// UpdateTransactionLinks applies one link update to every listed
	// transaction and returns the number of rows affected. With
	// RequireUnlinked set, rows that already carry a parent are left
	// untouched; callers treat a short row count as "already claimed".
	UpdateTransactionLinks(ctx context.Context, ids []string, upd LinkUpdate) (int64, error)

	// GetChildren returns the direct children of a parent transaction.
	GetChildren(ctx context.Context, parentID string) ([]*models.Transaction, error)

	// GetLinkStats returns aggregate linking statistics for a user.
	GetLinkStats(ctx context.Context, userID string) (*LinkStats, error)

	Close() error
}

// LinkUpdate describes a mutation of a transaction's linking fields.
// Nil pointer fields are left unchanged; Clear resets all four fields.
type LinkUpdate struct {
	ParentTransactionID *string
	LinkType            *models.LinkType
	LinkConfidence      *int
	LinkMetadata        map[string]any

	// Clear resets parent, type, confidence and metadata to null,
	// returning the record to the unlinked state.
	Clear bool

	// RequireUnlinked applies the optimistic precondition
	// parent_transaction_id IS NULL, pushing double-link race safety into
	// the store.
	RequireUnlinked bool
}

// TransactionFilters defines filters for listing transactions.
type TransactionFilters struct {
	UserID     string // Filter by owning user (empty = all)
	Merchant   string // Substring merchant filter (empty = all)
	LinkedOnly bool   // Only records with a parent
	ParentID   string // Only children of this parent
	DaysBack   int    // How many days back to look (0 = all time)
	Limit      int    // Max results (0 = default 50)
	Offset     int    // Pagination offset
}

// TransactionListResult contains paginated transaction results.
type TransactionListResult struct {
	Transactions []*models.Transaction `json:"transactions"`
	TotalCount   int                   `json:"total_count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// LinkStats contains aggregate linking statistics for one user.
type LinkStats struct {
	TotalTransactions int             `json:"total_transactions"`
	LinkedCount       int             `json:"linked_count"`
	AutoLinkedCount   int             `json:"auto_linked_count"`
	ManualLinkedCount int             `json:"manual_linked_count"`
	UnlinkedCount     int             `json:"unlinked_count"`
	LinkedAmount      decimal.Decimal `json:"linked_amount"`
}
