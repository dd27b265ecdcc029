package matcher

import "github.com/shopspring/decimal"

// Config holds matching configuration. It is immutable for the duration of
// a matching run; callers construct one per run.
type Config struct {
	// DateWindowDays is the symmetric window around the parent date inside
	// which a child is temporally plausible. Inclusive at the boundary.
	DateWindowDays int

	// AmountTolerance is an absolute dollar amount, not a percentage.
	// It covers estimated tax and shipping on the child side.
	AmountTolerance decimal.Decimal

	// SuggestThreshold is the minimum total score for a candidate to be
	// returned at all.
	SuggestThreshold int

	// AutoLinkThreshold is the minimum total score for the orchestrator to
	// persist a link without review.
	AutoLinkThreshold int

	// EnableMerchantMatching scopes parent candidates to merchants whose
	// text contains one of MerchantKeywords (case-insensitive).
	EnableMerchantMatching bool
	MerchantKeywords       []string
}

// DefaultConfig returns the deployment defaults: a 5 day window, $3.00
// tolerance, suggest at 70 and auto-link at 90, scoped to Amazon charges.
func DefaultConfig() Config {
	return Config{
		DateWindowDays:         5,
		AmountTolerance:        decimal.NewFromFloat(3.00),
		SuggestThreshold:       70,
		AutoLinkThreshold:      90,
		EnableMerchantMatching: true,
		MerchantKeywords:       []string{"amazon", "amzn"},
	}
}
