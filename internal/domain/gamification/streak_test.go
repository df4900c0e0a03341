package gamification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reviewarena/internal/domain/gamification"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 15, 30, 0, 0, time.UTC)
}

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name    string
		days    []time.Time
		today   time.Time
		current int
		longest int
	}{
		{name: "no reviews", today: day(10)},
		{name: "single day today", days: []time.Time{day(10)}, today: day(10), current: 1, longest: 1},
		{name: "run ending yesterday is kept", days: []time.Time{day(7), day(8), day(9)}, today: day(10), current: 3, longest: 3},
		{name: "run broken two days ago", days: []time.Time{day(5), day(6), day(7)}, today: day(10), current: 0, longest: 3},
		{name: "duplicates and gaps", days: []time.Time{day(1), day(2), day(2), day(3), day(4), day(8), day(9), day(10)}, today: day(10), current: 3, longest: 4},
		{name: "unordered input", days: []time.Time{day(10), day(8), day(9)}, today: day(10), current: 3, longest: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			current, longest := gamification.ComputeStreak(tc.days, tc.today)
			assert.Equal(t, tc.current, current)
			assert.Equal(t, tc.longest, longest)
		})
	}
}

func TestComputeStreak_MonthBoundary(t *testing.T) {
	days := []time.Time{
		time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	current, longest := gamification.ComputeStreak(days, time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}
