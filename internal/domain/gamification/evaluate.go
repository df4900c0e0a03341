package gamification

import "time"

const (
	XPPerReview           = 10
	XPPerApproval         = 15
	XPPerChangesRequested = 20
	XPPerComment          = 5
	XPPerAchievement      = 50
	XPPerStreakDay        = 5
	XPPerStreakWeek       = 25
)

// Evaluate computes progress for every achievement in the catalog.
//
// The result never goes backwards relative to previous: progress keeps its
// highest value, completed achievements stay completed and keep their
// original EarnedAt. now is only used as EarnedAt for first completions, so
// evaluating the same snapshot twice gives the same result.
func Evaluate(s Snapshot, c Catalog, previous []UserAchievement, now time.Time) []UserAchievement {
	prev := make(map[string]UserAchievement, len(previous))
	for _, p := range previous {
		prev[p.AchievementID] = p
	}

	out := make([]UserAchievement, 0, len(c.Achievements))
	for _, a := range c.Achievements {
		p := prev[a.ID]

		progress := min(s.Value(a.Metric), a.RequiredValue)
		progress = max(progress, p.Progress)

		ua := UserAchievement{
			AchievementID: a.ID,
			Progress:      progress,
			Completed:     p.Completed || progress >= a.RequiredValue,
		}

		switch {
		case p.Completed && p.EarnedAt != nil:
			ua.EarnedAt = p.EarnedAt
		case ua.Completed:
			at := now
			ua.EarnedAt = &at
		}

		out = append(out, ua)
	}
	return out
}

// Changed returns the entries of next that differ from previous.
func Changed(previous, next []UserAchievement) []UserAchievement {
	prev := make(map[string]UserAchievement, len(previous))
	for _, p := range previous {
		prev[p.AchievementID] = p
	}

	var out []UserAchievement
	for _, n := range next {
		p, ok := prev[n.AchievementID]
		if !ok || p.Progress != n.Progress || p.Completed != n.Completed {
			out = append(out, n)
		}
	}
	return out
}

// NewlyEarned returns the achievements completed in next but not in previous.
func NewlyEarned(previous, next []UserAchievement) []UserAchievement {
	done := make(map[string]bool, len(previous))
	for _, p := range previous {
		if p.Completed {
			done[p.AchievementID] = true
		}
	}

	var out []UserAchievement
	for _, n := range next {
		if n.Completed && !done[n.AchievementID] {
			out = append(out, n)
		}
	}
	return out
}

func CountCompleted(items []UserAchievement) int {
	n := 0
	for _, i := range items {
		if i.Completed {
			n++
		}
	}
	return n
}

func ActivityXP(s Snapshot) int {
	return s.TotalReviewed*XPPerReview +
		s.Approved*XPPerApproval +
		s.ChangesRequested*XPPerChangesRequested +
		s.Commented*XPPerComment
}

func StreakXP(s Snapshot) int {
	return s.LongestStreak*XPPerStreakDay + (s.LongestStreak/7)*XPPerStreakWeek
}

// TotalXP is derived from the snapshot and the completed achievement count
// only, so recomputing it from the same data always yields the same value.
func TotalXP(s Snapshot, completedAchievements int) int {
	return ActivityXP(s) + StreakXP(s) + completedAchievements*XPPerAchievement
}
