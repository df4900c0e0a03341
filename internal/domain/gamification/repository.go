package gamification

import "context"

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	ListAchievements(ctx context.Context, userID int64) ([]UserAchievement, error)
	SaveAchievements(ctx context.Context, userID int64, items []UserAchievement) error

	AddNotifications(ctx context.Context, items []Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error)
	MarkNotificationsRead(ctx context.Context, userID int64, ids []string) (int64, error)
}
