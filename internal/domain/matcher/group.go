package matcher

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// TransactionGroup is a candidate "order": unlinked child records clustered
// under one external order identifier, or under one calendar date when the
// import carried no order identifier. Groups are rebuilt on every matching
// run and have no persisted identity.
type TransactionGroup struct {
	// Date is the earliest member date, used downstream against the parent
	// date for scoring.
	Date         time.Time
	Transactions []*models.Transaction
	TotalAmount  decimal.Decimal
}

// GroupByOrder clusters transactions into candidate orders, sorted ascending
// by representative date.
//
// The grouping key is the external order identifier when present; otherwise
// the calendar date (time-of-day ignored) stands in as a synthetic key. Rich
// imports carry an order id on every line item, degraded generic CSVs only a
// date. A singleton transaction is a valid group of one.
func GroupByOrder(transactions []*models.Transaction) []*TransactionGroup {
	groups := make(map[string]*TransactionGroup)

	for _, tx := range transactions {
		key := tx.OrderID
		if key == "" {
			key = tx.Date.Format("2006-01-02")
		}

		group, ok := groups[key]
		if !ok {
			group = &TransactionGroup{
				Date:        tx.Date,
				TotalAmount: decimal.Zero,
			}
			groups[key] = group
		}

		group.Transactions = append(group.Transactions, tx)
		group.TotalAmount = group.TotalAmount.Add(tx.Amount)
		if tx.Date.Before(group.Date) {
			group.Date = tx.Date
		}
	}

	result := make([]*TransactionGroup, 0, len(groups))
	for _, group := range groups {
		result = append(result, group)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result
}
