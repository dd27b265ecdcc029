package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateAmountMatch_BothZero(t *testing.T) {
	assert.True(t, ValidateAmountMatch(decimal.Zero, decimal.Zero, decimal.Zero))
	assert.True(t, ValidateAmountMatch(decimal.Zero, decimal.Zero, money("3.00")))
}

func TestValidateAmountMatch_OneZero(t *testing.T) {
	// A zero on exactly one side never reconciles, even inside tolerance
	assert.False(t, ValidateAmountMatch(decimal.Zero, money("1.00"), money("5.00")))
	assert.False(t, ValidateAmountMatch(money("1.00"), decimal.Zero, money("5.00")))
}

func TestValidateAmountMatch_WithinTolerance(t *testing.T) {
	assert.True(t, ValidateAmountMatch(money("62.97"), money("62.21"), money("3.00")))
	// Exactly at tolerance is inclusive
	assert.True(t, ValidateAmountMatch(money("10.00"), money("7.00"), money("3.00")))
}

func TestValidateAmountMatch_BeyondTolerance(t *testing.T) {
	// Difference 7.97 exceeds the 3.00 tolerance
	assert.False(t, ValidateAmountMatch(money("82.97"), money("75.00"), money("3.00")))
}

func TestAmountScore_PerfectMatch(t *testing.T) {
	assert.Equal(t, 50, AmountScore(money("62.97"), money("62.97"), money("3.00")))
}

func TestAmountScore_LinearDecay(t *testing.T) {
	tolerance := money("3.00")

	tests := []struct {
		name          string
		childrenTotal string
		want          int
	}{
		{"exact", "100.00", 50},
		{"quarter of tolerance", "100.75", 38}, // 50 * (1 - 0.75/3) = 37.5 -> 38
		{"half of tolerance", "101.50", 25},
		{"at tolerance boundary", "103.00", 0},
		{"beyond tolerance", "103.01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountScore(money("100.00"), money(tt.childrenTotal), tolerance)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountScore_MonotonicallyNonIncreasing(t *testing.T) {
	parent := money("50.00")
	tolerance := money("3.00")

	previous := 51
	for cents := 0; cents <= 350; cents += 10 {
		total := parent.Add(decimal.New(int64(cents), -2))
		score := AmountScore(parent, total, tolerance)
		assert.LessOrEqual(t, score, previous, "difference %d cents", cents)
		previous = score
	}

	// Reaches exactly 0 at and past the boundary
	assert.Equal(t, 0, AmountScore(parent, parent.Add(tolerance), tolerance))
	assert.Equal(t, 0, AmountScore(parent, parent.Add(money("5.00")), tolerance))
}

func TestAmountScore_ZeroParent(t *testing.T) {
	assert.Equal(t, 0, AmountScore(decimal.Zero, money("1.00"), money("3.00")))
	assert.Equal(t, 0, AmountScore(decimal.Zero, decimal.Zero, money("3.00")))
}
