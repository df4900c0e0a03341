package gamification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewarena/internal/domain/gamification"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := gamification.DefaultCatalog()
	require.NoError(t, err)

	assert.Len(t, c.Achievements, 23)
	assert.Len(t, c.Levels, 10)

	secret := 0
	for _, a := range c.Achievements {
		if a.Secret {
			secret++
		}
	}
	assert.Equal(t, 2, secret)
	assert.Len(t, c.Public(), 21)

	a, ok := c.Achievement("speed_demon")
	require.True(t, ok)
	assert.Equal(t, gamification.MetricFastReviews, a.Metric)
}

func TestLevelFor(t *testing.T) {
	c, err := gamification.DefaultCatalog()
	require.NoError(t, err)

	tests := []struct {
		xp   int
		want int
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 599, want: 3},
		{xp: 1500, want: 6},
		{xp: 9999, want: 9},
		{xp: 250000, want: 10},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.LevelFor(tc.xp).Level, "xp=%d", tc.xp)
	}

	next, ok := c.NextLevel(c.LevelFor(150))
	require.True(t, ok)
	assert.Equal(t, 3, next.Level)

	_, ok = c.NextLevel(c.LevelFor(10000))
	assert.False(t, ok)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"broken yaml": "achievements: [",
		"no levels":   "achievements: []\nlevels: []",
		"unknown metric": `
achievements:
  - {id: a, metric: lines_of_code, required_value: 1}
levels:
  - {level: 1, required_xp: 0}`,
		"duplicate id": `
achievements:
  - {id: a, metric: approved, required_value: 1}
  - {id: a, metric: approved, required_value: 2}
levels:
  - {level: 1, required_xp: 0}`,
		"zero requirement": `
achievements:
  - {id: a, metric: approved, required_value: 0}
levels:
  - {level: 1, required_xp: 0}`,
		"no base level": `
achievements: []
levels:
  - {level: 2, required_xp: 100}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := gamification.ParseCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseCatalog_SortsLevels(t *testing.T) {
	c, err := gamification.ParseCatalog([]byte(`
achievements: []
levels:
  - {level: 2, name: Two, required_xp: 100}
  - {level: 1, name: One, required_xp: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, "One", c.Levels[0].Name)
	assert.Equal(t, 2, c.LevelFor(100).Level)
}
