package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ledgerlink/internal/models"
)

func makeParent(id, amount string, d time.Time) *models.Transaction {
	return &models.Transaction{
		ID:       id,
		UserID:   "user1",
		Date:     d,
		Amount:   money(amount),
		Merchant: "AMAZON.COM*M12AB34CD",
	}
}

func TestScoreMatch_SameDayExactAmount(t *testing.T) {
	parent := makeParent("p1", "62.21", date(2025, 10, 18))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "62.21", date(2025, 10, 18)),
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 40, candidate.DateScore)
	assert.Equal(t, 50, candidate.AmountScore)
	assert.Equal(t, 0, candidate.OrderGroupScore)
	assert.Equal(t, 90, candidate.TotalScore)
	assert.Equal(t, ConfidenceHigh, candidate.Confidence)
}

func TestScoreMatch_DynamicDateDecay(t *testing.T) {
	// 2 days into a 5 day window: 40 - 2*(40/5) = 24
	parent := makeParent("p1", "62.21", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "62.21", date(2025, 10, 18)),
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 24, candidate.DateScore)
	assert.Equal(t, 50, candidate.AmountScore)
	assert.Equal(t, 74, candidate.TotalScore)
	assert.Equal(t, ConfidenceMedium, candidate.Confidence)
}

func TestScoreMatch_EdgeOfWindowStillScores(t *testing.T) {
	// Exactly at the window boundary the dynamic decay leaves 0, but one
	// day inside it must still be above zero
	parent := makeParent("p1", "10.00", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "10.00", date(2025, 10, 16)),
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 8, candidate.DateScore) // 40 - 4*8
	assert.Greater(t, candidate.DateScore, 0)
}

func TestScoreMatch_OutOfWindowShortCircuits(t *testing.T) {
	// A perfect amount match is never rescued by an implausible date
	parent := makeParent("p1", "62.21", date(2025, 11, 6))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "62.21", date(2025, 10, 18)),
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 0, candidate.DateScore)
	assert.Equal(t, 0, candidate.AmountScore)
	assert.Equal(t, 0, candidate.TotalScore)
	assert.Equal(t, ConfidenceUnmatched, candidate.Confidence)
}

func TestScoreMatch_EarliestChildDateUsed(t *testing.T) {
	// The group's earliest date drives the date score
	parent := makeParent("p1", "30.00", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "10.00", date(2025, 10, 19)),
		makeChild("c2", "114-0001", "20.00", date(2025, 10, 17)), // earliest: 3 days
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 16, candidate.DateScore) // 40 - 3*8
}

func TestScoreMatch_ZeroAmountParent(t *testing.T) {
	parent := makeParent("p1", "0.00", date(2025, 10, 18))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "10.00", date(2025, 10, 18)),
	}

	candidate := ScoreMatch(parent, children, DefaultConfig())

	assert.Equal(t, 0, candidate.AmountScore)
	assert.Equal(t, 40, candidate.DateScore)
}

func TestScoreMatch_NoChildren(t *testing.T) {
	parent := makeParent("p1", "10.00", date(2025, 10, 18))

	candidate := ScoreMatch(parent, nil, DefaultConfig())

	assert.Equal(t, 0, candidate.TotalScore)
	assert.Equal(t, ConfidenceUnmatched, candidate.Confidence)
}

func TestScoreMatch_ConfidenceTiersFollowConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoLinkThreshold = 80
	cfg.SuggestThreshold = 50

	parent := makeParent("p1", "62.21", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("c1", "114-0001", "62.21", date(2025, 10, 18)),
	}

	// 74 total: high against the lowered auto-link threshold
	candidate := ScoreMatch(parent, children, cfg)
	assert.Equal(t, ConfidenceHigh, candidate.Confidence)
}

func TestMatchCandidate_ChildrenTotal(t *testing.T) {
	candidate := &MatchCandidate{
		Children: []*models.Transaction{
			makeChild("c1", "114-0001", "24.99", date(2025, 10, 18)),
			makeChild("c2", "114-0001", "8.99", date(2025, 10, 18)),
		},
	}

	assert.True(t, candidate.ChildrenTotal().Equal(money("33.98")))
}
