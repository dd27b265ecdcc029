package matcher

import (
	"math"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/models"
)

// maxDateScore is the ceiling of the date component of a match score.
const maxDateScore = 40

// ConfidenceLevel is the discrete tier derived from a candidate's total
// score: high enough to auto-link, worth suggesting for review, or neither.
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceUnmatched ConfidenceLevel = "unmatched"
)

// MatchCandidate pairs one parent transaction with a candidate child group
// and the score breakdown that ranks the pairing. Candidates live only for
// the duration of a matching run; accepted ones become persisted links,
// the rest become review suggestions or are discarded.
type MatchCandidate struct {
	Parent   *models.Transaction
	Children []*models.Transaction

	DateScore   int
	AmountScore int
	// OrderGroupScore is reserved for a future scoring revision and is
	// always 0 today: real-world child records already carry an order
	// identifier, so a grouping bonus adds nothing.
	OrderGroupScore int
	TotalScore      int

	Confidence ConfidenceLevel
}

// ChildrenTotal returns the summed amount of the candidate's children.
func (c *MatchCandidate) ChildrenTotal() decimal.Decimal {
	total := decimal.Zero
	for _, child := range c.Children {
		total = total.Add(child.Amount)
	}
	return total
}

// ScoreMatch computes the confidence of linking children under parent.
//
// The date component decays dynamically with the configured window,
// round(40 - diffDays*(40/windowDays)), so an edge-of-window match still
// scores above zero instead of bottoming out mid-window under a fixed decay
// rate. A child group outside the window short-circuits to an UNMATCHED
// candidate with a total of 0: no amount reconciliation rescues an
// implausible date.
func ScoreMatch(parent *models.Transaction, children []*models.Transaction, cfg Config) *MatchCandidate {
	candidate := &MatchCandidate{
		Parent:   parent,
		Children: children,
	}

	if len(children) == 0 {
		candidate.Confidence = ConfidenceUnmatched
		return candidate
	}

	childrenTotal := decimal.Zero
	earliest := children[0].Date
	for _, child := range children {
		childrenTotal = childrenTotal.Add(child.Amount)
		if child.Date.Before(earliest) {
			earliest = child.Date
		}
	}

	diffDays := daysBetween(parent.Date, earliest)
	if diffDays > float64(cfg.DateWindowDays) {
		candidate.Confidence = ConfidenceUnmatched
		return candidate
	}

	candidate.DateScore = dateScore(diffDays, cfg.DateWindowDays)
	candidate.AmountScore = AmountScore(parent.Amount, childrenTotal, cfg.AmountTolerance)
	candidate.TotalScore = candidate.DateScore + candidate.AmountScore + candidate.OrderGroupScore
	candidate.Confidence = confidenceLevel(candidate.TotalScore, cfg)

	return candidate
}

// dateScore assumes diffDays is already known to be inside the window.
func dateScore(diffDays float64, windowDays int) int {
	if windowDays == 0 {
		// Same calendar instant is the only in-window case.
		return maxDateScore
	}
	score := int(math.Round(maxDateScore - diffDays*(maxDateScore/float64(windowDays))))
	if score < 0 {
		return 0
	}
	return score
}

// confidenceLevel is a step function of the total score against the
// caller-supplied thresholds.
func confidenceLevel(totalScore int, cfg Config) ConfidenceLevel {
	switch {
	case totalScore >= cfg.AutoLinkThreshold:
		return ConfidenceHigh
	case totalScore >= cfg.SuggestThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceUnmatched
	}
}
