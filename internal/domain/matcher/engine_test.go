package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlink/internal/models"
)

func TestEngine_AmazonOrderScenario(t *testing.T) {
	// Arrange: one charge, five line items from one order two days earlier,
	// summing to 62.21 against a 62.97 charge
	parent := makeParent("charge1", "62.97", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("item1", "114-0001", "24.99", date(2025, 10, 18)),
		makeChild("item2", "114-0001", "8.99", date(2025, 10, 18)),
		makeChild("item3", "114-0001", "18.99", date(2025, 10, 18)),
		makeChild("item4", "114-0001", "4.24", date(2025, 10, 18)), // tax
		makeChild("item5", "114-0001", "5.00", date(2025, 10, 18)), // shipping
	}

	cfg := DefaultConfig()
	cfg.SuggestThreshold = 60
	engine := NewEngine(cfg)

	// Act
	candidates := engine.FindMatches([]*models.Transaction{parent}, children)

	// Assert: one candidate grouping all five children under the charge
	require.Len(t, candidates, 1)
	candidate := candidates[0]
	assert.Equal(t, "charge1", candidate.Parent.ID)
	assert.Len(t, candidate.Children, 5)
	assert.Equal(t, 24, candidate.DateScore)   // 40 - 2*(40/5)
	assert.Equal(t, 37, candidate.AmountScore) // 50*(1 - 0.76/3.00) rounded
	assert.Equal(t, 61, candidate.TotalScore)
	assert.True(t, candidate.ChildrenTotal().Equal(money("62.21")))
}

func TestEngine_FarApartDatesReturnNothing(t *testing.T) {
	// 19 days apart with a 5 day window
	parent := makeParent("charge1", "100.00", date(2025, 11, 6))
	children := []*models.Transaction{
		makeChild("item1", "114-0001", "100.00", date(2025, 10, 18)),
	}

	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{parent}, children)

	assert.Empty(t, candidates)
}

func TestEngine_NeverReturnsBelowSuggestThreshold(t *testing.T) {
	parent := makeParent("charge1", "62.97", date(2025, 10, 20))
	children := []*models.Transaction{
		makeChild("item1", "114-0001", "62.21", date(2025, 10, 18)),
	}

	// Total is 61 with the default formulas; default threshold is 70
	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{parent}, children)

	assert.Empty(t, candidates)
}

func TestEngine_ExcludesLinkedChildren(t *testing.T) {
	parent := makeParent("charge1", "10.00", date(2025, 10, 18))

	linkedParentID := "other"
	linked := makeChild("item1", "114-0001", "10.00", date(2025, 10, 18))
	linked.ParentTransactionID = &linkedParentID

	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{parent}, []*models.Transaction{linked})

	assert.Empty(t, candidates)
}

func TestEngine_ExcludesLinkedParents(t *testing.T) {
	// A parent that is itself a child cannot start a chain
	otherID := "grandparent"
	parent := makeParent("charge1", "10.00", date(2025, 10, 18))
	parent.ParentTransactionID = &otherID

	child := makeChild("item1", "114-0001", "10.00", date(2025, 10, 18))

	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{parent}, []*models.Transaction{child})

	assert.Empty(t, candidates)
}

func TestEngine_MerchantKeywordScoping(t *testing.T) {
	amazonCharge := makeParent("charge1", "10.00", date(2025, 10, 18))
	groceryCharge := makeParent("charge2", "10.00", date(2025, 10, 18))
	groceryCharge.Merchant = "WHOLE FOODS MARKET"

	child := makeChild("item1", "114-0001", "10.00", date(2025, 10, 18))

	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{amazonCharge, groceryCharge},
		[]*models.Transaction{child})

	require.Len(t, candidates, 1)
	assert.Equal(t, "charge1", candidates[0].Parent.ID)
}

func TestEngine_MerchantScopingDisabled(t *testing.T) {
	groceryCharge := makeParent("charge1", "10.00", date(2025, 10, 18))
	groceryCharge.Merchant = "WHOLE FOODS MARKET"

	child := makeChild("item1", "114-0001", "10.00", date(2025, 10, 18))

	cfg := DefaultConfig()
	cfg.EnableMerchantMatching = false

	candidates := NewEngine(cfg).FindMatches(
		[]*models.Transaction{groceryCharge}, []*models.Transaction{child})

	require.Len(t, candidates, 1)
}

func TestEngine_NeverGroupsParentWithItself(t *testing.T) {
	// The same pool can serve as parents and children; a record must not
	// reconcile against itself
	charge := makeParent("charge1", "10.00", date(2025, 10, 18))
	pool := []*models.Transaction{charge}

	candidates := NewEngine(DefaultConfig()).FindMatches(pool, pool)

	assert.Empty(t, candidates)
}

func TestEngine_SortedDescendingByScore(t *testing.T) {
	// Two charges matching different groups with different quality
	exactCharge := makeParent("charge1", "20.00", date(2025, 10, 18))
	looseCharge := makeParent("charge2", "31.50", date(2025, 10, 20))

	children := []*models.Transaction{
		makeChild("item1", "order-a", "20.00", date(2025, 10, 18)),
		makeChild("item2", "order-b", "30.00", date(2025, 10, 18)),
	}

	cfg := DefaultConfig()
	cfg.SuggestThreshold = 10

	candidates := NewEngine(cfg).FindMatches(
		[]*models.Transaction{looseCharge, exactCharge}, children)

	require.GreaterOrEqual(t, len(candidates), 2)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].TotalScore, candidates[i].TotalScore)
	}
	assert.Equal(t, "charge1", candidates[0].Parent.ID)
}

func TestEngine_MultipleParentsCanClaimSameGroup(t *testing.T) {
	// The engine is greedy per parent; cross-parent deduplication belongs
	// to the caller committing links
	chargeA := makeParent("charge1", "10.00", date(2025, 10, 18))
	chargeB := makeParent("charge2", "10.00", date(2025, 10, 18))
	child := makeChild("item1", "114-0001", "10.00", date(2025, 10, 18))

	candidates := NewEngine(DefaultConfig()).FindMatches(
		[]*models.Transaction{chargeA, chargeB}, []*models.Transaction{child})

	assert.Len(t, candidates, 2)
}
