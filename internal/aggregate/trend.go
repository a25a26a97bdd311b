package aggregate

import (
	"math"
	"time"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// Trend compares a current-period count against the previous period of equal
// length. The value is the absolute rounded percentage change; a zero
// previous count yields 0/neutral rather than a division error.
func Trend(current, previous int) models.Trend {
	dir := models.TrendNeutral
	switch {
	case current > previous:
		dir = models.TrendUp
	case current < previous:
		dir = models.TrendDown
	}

	value := 0
	if previous > 0 {
		pct := float64(current-previous) / float64(previous) * 100
		value = int(math.Abs(math.Round(pct)))
	}
	return models.Trend{Value: value, Direction: dir}
}

// PreviousWindow returns the half-open comparison window [start-d, start)
// immediately preceding the current range, where d is the current range's
// length rounded up to whole days.
func PreviousWindow(start, end time.Time) (time.Time, time.Time) {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return start.AddDate(0, 0, -days), start
}

// InWindow reports whether t falls in the half-open range [start, end).
func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
