package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightwater-dev/leadboard/internal/models"
)

func TestTrend(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		previous int
		want     models.Trend
	}{
		{"both zero", 0, 0, models.Trend{Value: 0, Direction: models.TrendNeutral}},
		{"growth", 120, 100, models.Trend{Value: 20, Direction: models.TrendUp}},
		{"decline", 80, 100, models.Trend{Value: 20, Direction: models.TrendDown}},
		{"from zero", 50, 0, models.Trend{Value: 0, Direction: models.TrendUp}},
		{"to zero", 0, 40, models.Trend{Value: 100, Direction: models.TrendDown}},
		{"flat", 75, 75, models.Trend{Value: 0, Direction: models.TrendNeutral}},
		{"rounds", 115, 100, models.Trend{Value: 15, Direction: models.TrendUp}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Trend(tc.current, tc.previous))
		})
	}
}

func TestPreviousWindowMatchesRangeLength(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	prevStart, prevEnd := PreviousWindow(start, end)
	assert.Equal(t, start, prevEnd)
	assert.Equal(t, start.AddDate(0, 0, -30), prevStart)
}

func TestPreviousWindowRoundsPartialDaysUp(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(36 * time.Hour)

	prevStart, _ := PreviousWindow(start, end)
	assert.Equal(t, start.AddDate(0, 0, -2), prevStart)
}

func TestPreviousWindowMinimumOneDay(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	prevStart, prevEnd := PreviousWindow(start, start)
	assert.Equal(t, start.AddDate(0, 0, -1), prevStart)
	assert.Equal(t, start, prevEnd)
}

func TestInWindowHalfOpen(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, InWindow(start, start, end))
	assert.True(t, InWindow(start.Add(time.Hour), start, end))
	assert.False(t, InWindow(end, start, end))
	assert.False(t, InWindow(start.Add(-time.Nanosecond), start, end))
}
