// Package matcher reconciles two independently imported transaction
// streams — credit-card charges and e-commerce order line items — into
// ranked parent/child match candidates.
//
// Matching is heuristic: date proximity contributes up to 40 points,
// amount reconciliation up to 50, for an effective total of 0-90. The
// engine is greedy and per-parent; it does not solve a global assignment
// problem, so callers committing links are responsible for deduplicating
// children claimed by more than one parent's candidates.
//
// Everything in this package is pure and side-effect-free; it never fails,
// it only scores low.
package matcher

import (
	"sort"
	"strings"

	"ledgerlink/internal/models"
)

// Engine evaluates parent candidates against a pool of unlinked children.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the given config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// FindMatches produces match candidates for every plausible parent/group
// pairing, sorted descending by total score.
//
// Children already linked to a parent are excluded from the pool, as are
// parents that are themselves children of another transaction (no
// multi-level chains). When merchant matching is enabled, only parents
// whose merchant text contains a configured keyword are considered, which
// keeps the scan bounded to the charges the deployment actually wants
// reconciled. Candidates scoring below the suggest threshold are dropped
// entirely rather than returned as zero-confidence records.
func (e *Engine) FindMatches(parents, children []*models.Transaction) []*MatchCandidate {
	pool := make([]*models.Transaction, 0, len(children))
	for _, child := range children {
		if !child.IsLinked() {
			pool = append(pool, child)
		}
	}

	var candidates []*MatchCandidate

	for _, parent := range parents {
		if parent.IsLinked() {
			continue
		}
		if e.config.EnableMerchantMatching && !e.merchantMatches(parent.Merchant) {
			continue
		}

		// Pre-filter to the date window before grouping, purely to bound
		// group construction cost.
		var inWindow []*models.Transaction
		for _, child := range pool {
			if child.ID == parent.ID {
				continue
			}
			if WithinDateWindow(parent.Date, child.Date, e.config.DateWindowDays) {
				inWindow = append(inWindow, child)
			}
		}
		if len(inWindow) == 0 {
			continue
		}

		for _, group := range GroupByOrder(inWindow) {
			candidate := ScoreMatch(parent, group.Transactions, e.config)
			if candidate.TotalScore >= e.config.SuggestThreshold {
				candidates = append(candidates, candidate)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].TotalScore > candidates[j].TotalScore
	})

	return candidates
}

// merchantMatches reports whether the merchant text contains any configured
// keyword, case-insensitively.
func (e *Engine) merchantMatches(merchant string) bool {
	lowered := strings.ToLower(merchant)
	for _, keyword := range e.config.MerchantKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
