package gamification

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	MetricTotalReviewed        = "total_reviewed"
	MetricApproved             = "approved"
	MetricChangesRequested     = "changes_requested"
	MetricCommented            = "commented"
	MetricLongestStreak        = "longest_streak"
	MetricRepositoriesReviewed = "repositories_reviewed"
	MetricFastReviews          = "fast_reviews"
	MetricNightReviews         = "night_reviews"
	MetricWeekendPairs         = "weekend_pairs"
)

var knownMetrics = map[string]bool{
	MetricTotalReviewed:        true,
	MetricApproved:             true,
	MetricChangesRequested:     true,
	MetricCommented:            true,
	MetricLongestStreak:        true,
	MetricRepositoriesReviewed: true,
	MetricFastReviews:          true,
	MetricNightReviews:         true,
	MetricWeekendPairs:         true,
}

//go:embed catalog.yaml
var defaultCatalog []byte

type Achievement struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Icon          string `yaml:"icon"`
	Category      string `yaml:"category"`
	Tier          string `yaml:"tier"`
	RequiredValue int    `yaml:"required_value"`
	Metric        string `yaml:"metric"`
	Secret        bool   `yaml:"secret"`
}

type Level struct {
	Level      int    `yaml:"level"`
	Name       string `yaml:"name"`
	RequiredXP int    `yaml:"required_xp"`
	Icon       string `yaml:"icon"`
}

type Catalog struct {
	Achievements []Achievement `yaml:"achievements"`
	Levels       []Level       `yaml:"levels"`
}

// DefaultCatalog parses the catalog shipped with the binary.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, err
	}
	sort.SliceStable(c.Levels, func(i, j int) bool {
		return c.Levels[i].RequiredXP < c.Levels[j].RequiredXP
	})
	return c, nil
}

func (c Catalog) validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("catalog: no levels defined")
	}

	ids := make(map[string]bool, len(c.Achievements))
	for _, a := range c.Achievements {
		if a.ID == "" {
			return fmt.Errorf("catalog: achievement without id")
		}
		if ids[a.ID] {
			return fmt.Errorf("catalog: duplicate achievement %q", a.ID)
		}
		ids[a.ID] = true
		if !knownMetrics[a.Metric] {
			return fmt.Errorf("catalog: achievement %q uses unknown metric %q", a.ID, a.Metric)
		}
		if a.RequiredValue <= 0 {
			return fmt.Errorf("catalog: achievement %q needs a positive required_value", a.ID)
		}
	}

	hasBase := false
	for _, l := range c.Levels {
		if l.RequiredXP == 0 {
			hasBase = true
		}
	}
	if !hasBase {
		return fmt.Errorf("catalog: a level with required_xp 0 is required")
	}
	return nil
}

func (c Catalog) Achievement(id string) (Achievement, bool) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Public hides secret achievements.
func (c Catalog) Public() []Achievement {
	out := make([]Achievement, 0, len(c.Achievements))
	for _, a := range c.Achievements {
		if !a.Secret {
			out = append(out, a)
		}
	}
	return out
}

// LevelFor returns the highest level reachable with xp.
func (c Catalog) LevelFor(xp int) Level {
	cur := c.Levels[0]
	for _, l := range c.Levels {
		if xp >= l.RequiredXP {
			cur = l
		}
	}
	return cur
}

// NextLevel returns the level after current, if any.
func (c Catalog) NextLevel(current Level) (Level, bool) {
	for _, l := range c.Levels {
		if l.RequiredXP > current.RequiredXP {
			return l, true
		}
	}
	return Level{}, false
}
