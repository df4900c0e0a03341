package dto

import "time"

type Achievement struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Category      string `json:"category"`
	Tier          string `json:"tier"`
	RequiredValue int    `json:"required_value"`
}

type Level struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	RequiredXP int    `json:"required_xp"`
	Icon       string `json:"icon"`
}

type UserAchievement struct {
	Achievement
	Progress        int        `json:"progress"`
	ProgressPercent float64    `json:"progress_percent"`
	Completed       bool       `json:"completed"`
	EarnedAt        *time.Time `json:"earned_at,omitempty"`
}

type Profile struct {
	UserID             int64      `json:"user_id"`
	Login              string     `json:"login"`
	XP                 int        `json:"xp"`
	Level              Level      `json:"level"`
	NextLevel          *Level     `json:"next_level,omitempty"`
	XPToNextLevel      int        `json:"xp_to_next_level"`
	LevelProgress      float64    `json:"level_progress"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastActive         *time.Time `json:"last_active,omitempty"`
	AchievementsEarned int        `json:"achievements_earned"`
	AchievementsTotal  int        `json:"achievements_total"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}
