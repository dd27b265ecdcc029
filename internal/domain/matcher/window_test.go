package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWithinDateWindow_SameDay(t *testing.T) {
	d := date(2025, 10, 20)

	for _, windowDays := range []int{0, 1, 5, 30} {
		assert.True(t, WithinDateWindow(d, d, windowDays), "window %d days", windowDays)
	}
}

func TestWithinDateWindow_InclusiveBoundary(t *testing.T) {
	parent := date(2025, 10, 20)

	// Exactly windowDays apart still matches
	assert.True(t, WithinDateWindow(parent, date(2025, 10, 25), 5))
	assert.True(t, WithinDateWindow(parent, date(2025, 10, 15), 5))

	// One day past the boundary does not
	assert.False(t, WithinDateWindow(parent, date(2025, 10, 26), 5))
	assert.False(t, WithinDateWindow(parent, date(2025, 10, 14), 5))
}

func TestWithinDateWindow_Symmetric(t *testing.T) {
	parent := date(2025, 10, 20)
	child := date(2025, 10, 18)

	// Works whether the child precedes or follows the parent
	assert.True(t, WithinDateWindow(parent, child, 5))
	assert.True(t, WithinDateWindow(child, parent, 5))
}

func TestWithinDateWindow_ZeroWindow(t *testing.T) {
	parent := date(2025, 10, 20)

	assert.True(t, WithinDateWindow(parent, parent, 0))
	assert.False(t, WithinDateWindow(parent, date(2025, 10, 21), 0))
}
