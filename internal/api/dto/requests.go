package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// CreateLinkRequest is the POST /api/links payload.
type CreateLinkRequest struct {
	ParentTransactionID string         `json:"parent_transaction_id"`
	ChildTransactionIDs []string       `json:"child_transaction_ids"`
	Confidence          int            `json:"confidence,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// UpdateLinkRequest is the PATCH /api/links/{id} payload. Absent fields
// are left unchanged.
type UpdateLinkRequest struct {
	Confidence *int             `json:"confidence,omitempty"`
	LinkType   *models.LinkType `json:"link_type,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
}

// AutoLinkRequest is the POST /api/links/autolink payload.
type AutoLinkRequest struct {
	UserID string `json:"user_id"`
}

// ImportRequest is the POST /api/imports payload: one batch of parsed
// transaction records for a user.
type ImportRequest struct {
	UserID       string              `json:"user_id"`
	Transactions []ImportTransaction `json:"transactions"`
}

// ImportTransaction is one parsed record in an import batch.
type ImportTransaction struct {
	ID          string          `json:"id,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description,omitempty"`
	OrderID     string          `json:"order_id,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
	IsIncome    bool            `json:"is_income,omitempty"`
}

// ToModel converts an import payload record into the domain transaction.
func (t ImportTransaction) ToModel() *models.Transaction {
	return &models.Transaction{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		Merchant:    t.Merchant,
		Description: t.Description,
		OrderID:     t.OrderID,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		IsIncome:    t.IsIncome,
	}
}
