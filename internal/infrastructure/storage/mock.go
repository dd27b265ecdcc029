package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// MockStore is an in-memory TransactionStore for tests. Error fields can
// be set to force the corresponding operation to fail.
type MockStore struct {
	mu           sync.Mutex
	transactions map[string]*models.Transaction

	// Injected failures
	InsertErr error
	GetErr    error
	QueryErr  error
	UpdateErr error

	// BeforeUpdate runs at the start of UpdateTransactionLinks, before
	// the store lock is taken. Tests use it to mutate records between a
	// caller's read and its write, simulating a concurrent run.
	BeforeUpdate func()

	// UpdateCalls counts UpdateTransactionLinks invocations.
	UpdateCalls int
}

// Compile-time check that MockStore implements TransactionStore
var _ TransactionStore = (*MockStore)(nil)

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		transactions: make(map[string]*models.Transaction),
	}
}

// Seed adds transactions directly, bypassing error injection.
func (m *MockStore) Seed(txs ...*models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range txs {
		copied := *tx
		m.transactions[tx.ID] = &copied
	}
}

func (m *MockStore) InsertTransactions(_ context.Context, txs []*models.Transaction) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Seed(txs...)
	return nil
}

func (m *MockStore) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (m *MockStore) ListTransactions(_ context.Context, filters TransactionFilters) (*TransactionListResult, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Transaction
	for _, tx := range m.transactions {
		if filters.UserID != "" && tx.UserID != filters.UserID {
			continue
		}
		if filters.Merchant != "" && !strings.Contains(strings.ToLower(tx.Merchant), strings.ToLower(filters.Merchant)) {
			continue
		}
		if filters.LinkedOnly && !tx.IsLinked() {
			continue
		}
		if filters.ParentID != "" && (tx.ParentTransactionID == nil || *tx.ParentTransactionID != filters.ParentID) {
			continue
		}
		copied := *tx
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	total := len(matched)

	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &TransactionListResult{
		Transactions: matched[start:end],
		TotalCount:   total,
		Limit:        limit,
		Offset:       filters.Offset,
	}, nil
}

func (m *MockStore) QueryUnlinkedByUser(_ context.Context, userID, merchantFilter string) ([]*models.Transaction, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID || tx.IsLinked() {
			continue
		}
		if merchantFilter != "" && !strings.Contains(strings.ToLower(tx.Merchant), strings.ToLower(merchantFilter)) {
			continue
		}
		copied := *tx
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

func (m *MockStore) UpdateTransactionLinks(_ context.Context, ids []string, upd LinkUpdate) (int64, error) {
	if m.BeforeUpdate != nil {
		m.BeforeUpdate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateErr != nil {
		return 0, m.UpdateErr
	}

	var affected int64
	for _, id := range ids {
		tx, ok := m.transactions[id]
		if !ok {
			continue
		}
		if upd.RequireUnlinked && tx.IsLinked() {
			continue
		}

		if upd.Clear {
			tx.ParentTransactionID = nil
			tx.LinkType = nil
			tx.LinkConfidence = nil
			tx.LinkMetadata = nil
		} else {
			if upd.ParentTransactionID != nil {
				parentID := *upd.ParentTransactionID
				tx.ParentTransactionID = &parentID
			}
			if upd.LinkType != nil {
				linkType := *upd.LinkType
				tx.LinkType = &linkType
			}
			if upd.LinkConfidence != nil {
				confidence := *upd.LinkConfidence
				tx.LinkConfidence = &confidence
			}
			if upd.LinkMetadata != nil {
				metadata := make(map[string]any, len(upd.LinkMetadata))
				for k, v := range upd.LinkMetadata {
					metadata[k] = v
				}
				tx.LinkMetadata = metadata
			}
		}
		affected++
	}

	return affected, nil
}

func (m *MockStore) GetChildren(_ context.Context, parentID string) ([]*models.Transaction, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var children []*models.Transaction
	for _, tx := range m.transactions {
		if tx.ParentTransactionID != nil && *tx.ParentTransactionID == parentID {
			copied := *tx
			children = append(children, &copied)
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Date.Before(children[j].Date)
	})

	return children, nil
}

func (m *MockStore) GetLinkStats(_ context.Context, userID string) (*LinkStats, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &LinkStats{LinkedAmount: decimal.Zero}
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		stats.TotalTransactions++
		if !tx.IsLinked() {
			continue
		}
		stats.LinkedCount++
		stats.LinkedAmount = stats.LinkedAmount.Add(tx.Amount)
		if tx.LinkType != nil {
			switch *tx.LinkType {
			case models.LinkTypeAuto:
				stats.AutoLinkedCount++
			case models.LinkTypeManual:
				stats.ManualLinkedCount++
			}
		}
	}
	stats.UnlinkedCount = stats.TotalTransactions - stats.LinkedCount

	return stats, nil
}

func (m *MockStore) Close() error {
	return nil
}
