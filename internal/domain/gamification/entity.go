package gamification

import "time"

type Profile struct {
	UserID        int64
	Login         string
	XP            int
	Level         int
	CurrentStreak int
	LongestStreak int
	LastActive    *time.Time
	UpdatedAt     time.Time
}

// UserAchievement is the progress of one user towards one achievement.
type UserAchievement struct {
	AchievementID string
	Progress      int
	Completed     bool
	EarnedAt      *time.Time
}

type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
	NotificationLevelUp     NotificationType = "level_up"
	NotificationStreak      NotificationType = "streak"
)

type Notification struct {
	ID        string
	UserID    int64
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

type ProfileView struct {
	Profile            Profile
	Level              Level
	NextLevel          *Level
	XPToNextLevel      int
	LevelProgress      float64
	AchievementsEarned int
	AchievementsTotal  int
}

type AchievementView struct {
	Achievement     Achievement
	Progress        int
	Completed       bool
	EarnedAt        *time.Time
	ProgressPercent float64
}
