// Package models defines the transaction record shared by the matching,
// linking and storage layers.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinkType describes how a parent/child link was established.
type LinkType string

const (
	// LinkTypeAuto marks links committed by the auto-link orchestrator.
	LinkTypeAuto LinkType = "auto"
	// LinkTypeManual marks links accepted by a user through the API.
	LinkTypeManual LinkType = "manual"
)

// Transaction is a linkable financial record: either an aggregate charge
// (a potential parent) or an individual order line item (a potential child).
//
// Linking fields are all-or-nothing: a linked child carries a parent ID,
// a link type and a confidence score; an unlinked record carries none.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description,omitempty"`

	// OrderID is the external grouping key from the source export,
	// empty when the import format did not carry one.
	OrderID    string `json:"order_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
	IsIncome   bool   `json:"is_income"`

	ParentTransactionID *string        `json:"parent_transaction_id,omitempty"`
	LinkType            *LinkType      `json:"link_type,omitempty"`
	LinkConfidence      *int           `json:"link_confidence,omitempty"`
	LinkMetadata        map[string]any `json:"link_metadata,omitempty"`
}

// IsLinked reports whether the transaction is already a child of another
// transaction. Linked records never appear in candidate pools and cannot
// themselves act as parents.
func (t *Transaction) IsLinked() bool {
	return t.ParentTransactionID != nil
}
