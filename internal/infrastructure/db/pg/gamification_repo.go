package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/gamification"
)

type GamificationRepository struct {
	db *sql.DB
}

func NewGamificationRepository(db *sql.DB) *GamificationRepository {
	return &GamificationRepository{db: db}
}

func (r *GamificationRepository) GetProfile(ctx context.Context, userID int64) (gamification.Profile, error) {
	var (
		p          gamification.Profile
		lastActive sql.NullTime
	)
	err := queryRow(ctx, r.db,
		`SELECT user_id, login, xp, level, current_streak, longest_streak, last_active_at, updated_at
		   FROM user_profiles
		  WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Login, &p.XP, &p.Level, &p.CurrentStreak, &p.LongestStreak, &lastActive, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return gamification.Profile{}, domain.NotFound("profile not found")
	}
	if err != nil {
		return gamification.Profile{}, wrapDBError(err, "GetProfile")
	}
	p.LastActive = timePtr(lastActive)
	return p, nil
}

func (r *GamificationRepository) SaveProfile(ctx context.Context, p gamification.Profile) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO user_profiles (user_id, login, xp, level, current_streak, longest_streak, last_active_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE
		    SET login = EXCLUDED.login,
		        xp = GREATEST(user_profiles.xp, EXCLUDED.xp),
		        level = GREATEST(user_profiles.level, EXCLUDED.level),
		        current_streak = EXCLUDED.current_streak,
		        longest_streak = GREATEST(user_profiles.longest_streak, EXCLUDED.longest_streak),
		        last_active_at = COALESCE(EXCLUDED.last_active_at, user_profiles.last_active_at),
		        updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Login, p.XP, p.Level, p.CurrentStreak, p.LongestStreak, nullTime(p.LastActive), p.UpdatedAt,
	)
	return wrapDBError(err, "SaveProfile")
}

func (r *GamificationRepository) ListAchievements(ctx context.Context, userID int64) ([]gamification.UserAchievement, error) {
	rows, err := query(ctx, r.db,
		`SELECT achievement_id, progress, completed, earned_at
		   FROM user_achievements
		  WHERE user_id = $1
		  ORDER BY achievement_id`,
		userID,
	)
	if err != nil {
		return nil, wrapDBError(err, "ListAchievements")
	}
	defer rows.Close()

	var out []gamification.UserAchievement
	for rows.Next() {
		var (
			a        gamification.UserAchievement
			earnedAt sql.NullTime
		)
		if err := rows.Scan(&a.AchievementID, &a.Progress, &a.Completed, &earnedAt); err != nil {
			return nil, wrapDBError(err, "ListAchievements: scan")
		}
		a.EarnedAt = timePtr(earnedAt)
		out = append(out, a)
	}
	return out, wrapDBError(rows.Err(), "ListAchievements")
}

// SaveAchievements upserts progress. A completed row never goes back to
// incomplete and keeps its first earned_at.
func (r *GamificationRepository) SaveAchievements(ctx context.Context, userID int64, items []gamification.UserAchievement) error {
	for _, a := range items {
		_, err := exec(ctx, r.db,
			`INSERT INTO user_achievements (user_id, achievement_id, progress, completed, earned_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, achievement_id) DO UPDATE
			    SET progress = GREATEST(user_achievements.progress, EXCLUDED.progress),
			        completed = user_achievements.completed OR EXCLUDED.completed,
			        earned_at = COALESCE(user_achievements.earned_at, EXCLUDED.earned_at),
			        updated_at = NOW()`,
			userID, a.AchievementID, a.Progress, a.Completed, nullTime(a.EarnedAt),
		)
		if err != nil {
			return wrapDBError(err, "SaveAchievements")
		}
	}
	return nil
}

func (r *GamificationRepository) AddNotifications(ctx context.Context, items []gamification.Notification) error {
	if len(items) == 0 {
		return nil
	}

	b := psql.Insert("notifications").
		Columns("id", "user_id", "type", "title", "message", "is_read", "created_at")
	for _, n := range items {
		b = b.Values(n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt)
	}

	_, err := execBuilder(ctx, r.db, b)
	return wrapDBError(err, "AddNotifications")
}

func (r *GamificationRepository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]gamification.Notification, error) {
	b := psql.Select("id", "user_id", "type", "title", "message", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id")
	if unreadOnly {
		b = b.Where(squirrel.Eq{"is_read": false})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, wrapDBError(err, "ListNotifications")
	}
	defer rows.Close()

	var out []gamification.Notification
	for rows.Next() {
		var (
			n   gamification.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, wrapDBError(err, "ListNotifications: scan")
		}
		n.Type = gamification.NotificationType(typ)
		out = append(out, n)
	}
	return out, wrapDBError(rows.Err(), "ListNotifications")
}

// MarkNotificationsRead marks the given notifications, or all of them when
// ids is empty.
func (r *GamificationRepository) MarkNotificationsRead(ctx context.Context, userID int64, ids []string) (int64, error) {
	b := psql.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID, "is_read": false})
	if len(ids) > 0 {
		b = b.Where(squirrel.Eq{"id": ids})
	}

	res, err := execBuilder(ctx, r.db, b)
	if err != nil {
		return 0, wrapDBError(err, "MarkNotificationsRead")
	}
	return res.RowsAffected()
}
