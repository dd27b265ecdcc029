package matcher

import (
	"math"
	"time"
)

// daysBetween returns the absolute difference between two timestamps in
// fractional days.
func daysBetween(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Hours() / 24)
}

// WithinDateWindow reports whether child is temporally plausible for parent:
// the dates are at most windowDays apart in either direction. The boundary
// is inclusive, so dates exactly windowDays apart still match.
func WithinDateWindow(parentDate, childDate time.Time, windowDays int) bool {
	return daysBetween(parentDate, childDate) <= float64(windowDays)
}
