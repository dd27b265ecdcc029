package matcher

import (
	"math"

	"github.com/shopspring/decimal"
)

// maxAmountScore is the ceiling of the amount component of a match score.
const maxAmountScore = 50

// ValidateAmountMatch reports whether a set of child amounts reconciles
// against a parent amount within an absolute dollar tolerance.
//
// Two zero amounts reconcile trivially. A zero on exactly one side never
// reconciles, regardless of tolerance.
func ValidateAmountMatch(parentAmount, childrenTotal, tolerance decimal.Decimal) bool {
	if parentAmount.IsZero() && childrenTotal.IsZero() {
		return true
	}
	if parentAmount.IsZero() || childrenTotal.IsZero() {
		return false
	}
	return parentAmount.Sub(childrenTotal).Abs().LessThanOrEqual(tolerance)
}

// AmountScore scores how well childrenTotal reconciles against parentAmount,
// from 50 for a perfect match decaying linearly to 0 at the tolerance
// boundary. Differences beyond tolerance score 0.
//
// A zero-amount parent scores 0; the tolerance is absolute, so no division
// by the parent amount ever happens.
func AmountScore(parentAmount, childrenTotal, tolerance decimal.Decimal) int {
	if parentAmount.IsZero() || childrenTotal.IsZero() {
		return 0
	}

	difference := parentAmount.Sub(childrenTotal).Abs()
	if difference.GreaterThan(tolerance) {
		return 0
	}
	if difference.IsZero() {
		return maxAmountScore
	}
	if tolerance.IsZero() {
		// Unreachable given the checks above, but guards the division.
		return 0
	}

	ratio := difference.Div(tolerance).InexactFloat64()
	score := int(math.Round(maxAmountScore * (1 - ratio)))
	if score < 0 {
		return 0
	}
	return score
}
