package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// Storage provides SQLite database access for transaction records.
// It implements the TransactionStore interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements TransactionStore
var _ TransactionStore = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

const transactionColumns = `id, user_id, date, amount, merchant, description,
	order_id, category_id, account_id, is_income,
	parent_transaction_id, link_type, link_confidence, link_metadata`

// InsertTransactions persists a batch of imported records in one database
// transaction.
func (s *Storage) InsertTransactions(ctx context.Context, txs []*models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT INTO transactions
	(` + transactionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, tx := range txs {
		metadataJSON, err := marshalMetadata(tx.LinkMetadata)
		if err != nil {
			_ = dbTx.Rollback()
			return fmt.Errorf("failed to encode link metadata for %s: %w", tx.ID, err)
		}

		var linkType *string
		if tx.LinkType != nil {
			lt := string(*tx.LinkType)
			linkType = &lt
		}

		_, err = dbTx.ExecContext(ctx, query,
			tx.ID,
			tx.UserID,
			tx.Date,
			tx.Amount,
			tx.Merchant,
			tx.Description,
			tx.OrderID,
			tx.CategoryID,
			tx.AccountID,
			tx.IsIncome,
			tx.ParentTransactionID,
			linkType,
			tx.LinkConfidence,
			metadataJSON,
		)
		if err != nil {
			_ = dbTx.Rollback()
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	return dbTx.Commit()
}

// GetByID retrieves a single transaction by its identifier.
func (s *Storage) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions returns transactions matching the given filters.
func (s *Storage) ListTransactions(ctx context.Context, filters TransactionFilters) (*TransactionListResult, error) {
	where := []string{"1=1"}
	var args []any

	if filters.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filters.UserID)
	}
	if filters.Merchant != "" {
		where = append(where, "LOWER(merchant) LIKE ?")
		args = append(args, "%"+strings.ToLower(filters.Merchant)+"%")
	}
	if filters.LinkedOnly {
		where = append(where, "parent_transaction_id IS NOT NULL")
	}
	if filters.ParentID != "" {
		where = append(where, "parent_transaction_id = ?")
		args = append(args, filters.ParentID)
	}
	if filters.DaysBack > 0 {
		where = append(where, fmt.Sprintf("date > datetime('now', '-%d days')", filters.DaysBack))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + whereClause +
		` ORDER BY date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &TransactionListResult{
		Transactions: txs,
		TotalCount:   total,
		Limit:        limit,
		Offset:       filters.Offset,
	}, nil
}

// QueryUnlinkedByUser returns the user's unlinked transactions, optionally
// restricted to merchants containing the filter text.
func (s *Storage) QueryUnlinkedByUser(ctx context.Context, userID, merchantFilter string) ([]*models.Transaction, error) {
	query := `
	SELECT ` + transactionColumns + `
	FROM transactions
	WHERE user_id = ? AND parent_transaction_id IS NULL
	`
	args := []any{userID}

	if merchantFilter != "" {
		query += ` AND LOWER(merchant) LIKE ?`
		args = append(args, "%"+strings.ToLower(merchantFilter)+"%")
	}

	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// UpdateTransactionLinks applies a link mutation to every listed record.
// With RequireUnlinked set, rows that already carry a parent are skipped;
// the returned count tells the caller how many rows were actually claimed.
func (s *Storage) UpdateTransactionLinks(ctx context.Context, ids []string, upd LinkUpdate) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var sets []string
	var args []any

	if upd.Clear {
		sets = []string{
			"parent_transaction_id = NULL",
			"link_type = NULL",
			"link_confidence = NULL",
			"link_metadata = NULL",
		}
	} else {
		if upd.ParentTransactionID != nil {
			sets = append(sets, "parent_transaction_id = ?")
			args = append(args, *upd.ParentTransactionID)
		}
		if upd.LinkType != nil {
			sets = append(sets, "link_type = ?")
			args = append(args, string(*upd.LinkType))
		}
		if upd.LinkConfidence != nil {
			sets = append(sets, "link_confidence = ?")
			args = append(args, *upd.LinkConfidence)
		}
		if upd.LinkMetadata != nil {
			metadataJSON, err := marshalMetadata(upd.LinkMetadata)
			if err != nil {
				return 0, fmt.Errorf("failed to encode link metadata: %w", err)
			}
			sets = append(sets, "link_metadata = ?")
			args = append(args, metadataJSON)
		}
	}

	if len(sets) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `UPDATE transactions SET ` + strings.Join(sets, ", ") +
		` WHERE id IN (` + placeholders + `)`
	for _, id := range ids {
		args = append(args, id)
	}

	if upd.RequireUnlinked {
		query += ` AND parent_transaction_id IS NULL`
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetChildren returns the direct children of a parent, oldest first.
func (s *Storage) GetChildren(ctx context.Context, parentID string) ([]*models.Transaction, error) {
	query := `
	SELECT ` + transactionColumns + `
	FROM transactions
	WHERE parent_transaction_id = ?
	ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// GetLinkStats returns aggregate linking statistics for a user.
func (s *Storage) GetLinkStats(ctx context.Context, userID string) (*LinkStats, error) {
	query := `
	SELECT
		COUNT(*) as total,
		COUNT(parent_transaction_id) as linked,
		COUNT(CASE WHEN link_type = 'auto' THEN 1 END) as auto_linked,
		COUNT(CASE WHEN link_type = 'manual' THEN 1 END) as manual_linked,
		COALESCE(SUM(CASE WHEN parent_transaction_id IS NOT NULL THEN CAST(amount AS REAL) END), 0) as linked_amount
	FROM transactions
	WHERE user_id = ?
	`

	stats := &LinkStats{}
	var linkedAmount float64
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalTransactions,
		&stats.LinkedCount,
		&stats.AutoLinkedCount,
		&stats.ManualLinkedCount,
		&linkedAmount,
	)
	if err != nil {
		return nil, err
	}

	stats.UnlinkedCount = stats.TotalTransactions - stats.LinkedCount
	stats.LinkedAmount = decimal.NewFromFloat(linkedAmount).Round(2)

	return stats, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTransaction.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var parentID, linkType, metadataJSON sql.NullString
	var linkConfidence sql.NullInt64

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Date,
		&tx.Amount,
		&tx.Merchant,
		&tx.Description,
		&tx.OrderID,
		&tx.CategoryID,
		&tx.AccountID,
		&tx.IsIncome,
		&parentID,
		&linkType,
		&linkConfidence,
		&metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		tx.ParentTransactionID = &parentID.String
	}
	if linkType.Valid {
		lt := models.LinkType(linkType.String)
		tx.LinkType = &lt
	}
	if linkConfidence.Valid {
		confidence := int(linkConfidence.Int64)
		tx.LinkConfidence = &confidence
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		// Metadata is an optional enrichment field; a decode failure is
		// not worth failing the read over.
		_ = json.Unmarshal([]byte(metadataJSON.String), &tx.LinkMetadata)
	}

	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// marshalMetadata encodes a metadata map as JSON, returning nil for an
// empty map so the column stays NULL.
func marshalMetadata(metadata map[string]any) (*string, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	encoded := string(data)
	return &encoded, nil
}
