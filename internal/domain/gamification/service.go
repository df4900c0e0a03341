package gamification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/metrics"
	"reviewarena/internal/domain/pr"
)

const (
	streakMilestoneDays = 7
	notificationsLimit  = 50
)

type Service interface {
	// Refresh recomputes XP, level, streaks and achievements of the given
	// users from their stored reviews and emits notifications for anything
	// new.
	Refresh(ctx context.Context, userIDs []int64) error
	Profile(ctx context.Context, userID int64) (ProfileView, error)
	// Achievements lists progress over the whole catalog for the "all" range.
	// Other ranges list only achievements earned inside the range.
	Achievements(ctx context.Context, userID int64, rangeValue string) ([]AchievementView, error)
	Notifications(ctx context.Context, userID int64, unreadOnly bool) ([]Notification, error)
	MarkNotificationsRead(ctx context.Context, userID int64, ids []string) (int64, error)
	Catalog() Catalog
}

type service struct {
	org     string
	uow     domain.UnitOfWork
	repo    Repository
	users   member.Repository
	prs     pr.Repository
	events  domain.EventBus
	clock   domain.Clock
	catalog Catalog
	loc     *time.Location
}

func NewService(
	org string,
	uow domain.UnitOfWork,
	repo Repository,
	users member.Repository,
	prs pr.Repository,
	events domain.EventBus,
	clock domain.Clock,
	catalog Catalog,
	loc *time.Location,
) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		org:     org,
		uow:     uow,
		repo:    repo,
		users:   users,
		prs:     prs,
		events:  events,
		clock:   clock,
		catalog: catalog,
		loc:     loc,
	}
}

func (s *service) Catalog() Catalog { return s.catalog }

func (s *service) Refresh(ctx context.Context, userIDs []int64) error {
	seen := make(map[int64]bool, len(userIDs))
	var errs []error
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.refreshUser(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("refresh user %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) refreshUser(ctx context.Context, userID int64) error {
	now := s.clock.Now()

	var (
		earned  []UserAchievement
		levelUp *Level
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		reviews, err := s.prs.ListReviews(ctx, pr.Filter{Org: s.org, UserIDs: []int64{userID}})
		if err != nil {
			return err
		}
		prByID, err := s.pullRequestsFor(ctx, reviews)
		if err != nil {
			return err
		}

		snap := BuildSnapshot(userID, reviews, prByID, s.loc, now)

		previous, err := s.repo.ListAchievements(ctx, userID)
		if err != nil {
			return err
		}
		next := Evaluate(snap, s.catalog, previous, now)

		if changed := Changed(previous, next); len(changed) > 0 {
			if err := s.repo.SaveAchievements(ctx, userID, changed); err != nil {
				return err
			}
		}
		earned = NewlyEarned(previous, next)

		profile, isNew, err := s.loadProfile(ctx, u)
		if err != nil {
			return err
		}

		xp := max(profile.XP, TotalXP(snap, CountCompleted(next)))
		level := s.catalog.LevelFor(xp)
		if !isNew && level.Level > profile.Level {
			levelUp = &level
		}

		var notes []Notification
		for _, e := range earned {
			a, _ := s.catalog.Achievement(e.AchievementID)
			notes = append(notes, s.notification(userID, NotificationAchievement,
				"Achievement unlocked: "+a.Name, a.Description, now))
		}
		if levelUp != nil {
			notes = append(notes, s.notification(userID, NotificationLevelUp,
				"Level up!", fmt.Sprintf("You reached level %d: %s", levelUp.Level, levelUp.Name), now))
		}
		if snap.CurrentStreak >= streakMilestoneDays &&
			snap.CurrentStreak%streakMilestoneDays == 0 &&
			snap.CurrentStreak != profile.CurrentStreak {
			notes = append(notes, s.notification(userID, NotificationStreak,
				fmt.Sprintf("%d day review streak", snap.CurrentStreak),
				"Keep the streak going to earn more XP", now))
		}

		profile.Login = u.Login
		profile.XP = xp
		profile.Level = max(profile.Level, level.Level)
		profile.CurrentStreak = snap.CurrentStreak
		profile.LongestStreak = max(profile.LongestStreak, snap.LongestStreak)
		if snap.LastReviewAt != nil {
			profile.LastActive = snap.LastReviewAt
		}
		profile.UpdatedAt = now

		if err := s.repo.SaveProfile(ctx, profile); err != nil {
			return err
		}
		if len(notes) > 0 {
			return s.repo.AddNotifications(ctx, notes)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		for _, e := range earned {
			s.events.Publish(ctx, domain.Event{
				Type: domain.EventAchievementEarned,
				Payload: map[string]any{
					"user_id":        userID,
					"achievement_id": e.AchievementID,
				},
			})
		}
		if levelUp != nil {
			s.events.Publish(ctx, domain.Event{
				Type: domain.EventLevelUp,
				Payload: map[string]any{
					"user_id": userID,
					"level":   levelUp.Level,
				},
			})
		}
	}
	return nil
}

func (s *service) pullRequestsFor(ctx context.Context, reviews []pr.Review) (map[int64]pr.PullRequest, error) {
	ids := make([]int64, 0, len(reviews))
	seen := make(map[int64]bool, len(reviews))
	for _, r := range reviews {
		if !seen[r.PullRequestID] {
			seen[r.PullRequestID] = true
			ids = append(ids, r.PullRequestID)
		}
	}
	if len(ids) == 0 {
		return map[int64]pr.PullRequest{}, nil
	}

	prs, err := s.prs.ListPullRequests(ctx, pr.Filter{Org: s.org, PullRequestIDs: ids})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]pr.PullRequest, len(prs))
	for _, p := range prs {
		out[p.ID] = p
	}
	return out, nil
}

func (s *service) loadProfile(ctx context.Context, u member.User) (Profile, bool, error) {
	p, err := s.repo.GetProfile(ctx, u.ID)
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code == domain.ErrorCodeNotFound {
		return Profile{UserID: u.ID, Login: u.Login, Level: s.catalog.LevelFor(0).Level}, true, nil
	}
	return p, false, err
}

func (s *service) notification(userID int64, typ NotificationType, title, msg string, now time.Time) Notification {
	return Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   msg,
		CreatedAt: now,
	}
}

func (s *service) Profile(ctx context.Context, userID int64) (ProfileView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	p, _, err := s.loadProfile(ctx, u)
	if err != nil {
		return ProfileView{}, err
	}

	items, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	level := s.catalog.LevelFor(p.XP)
	view := ProfileView{
		Profile:            p,
		Level:              level,
		AchievementsEarned: CountCompleted(items),
		AchievementsTotal:  len(s.catalog.Achievements),
		LevelProgress:      100,
	}
	if next, ok := s.catalog.NextLevel(level); ok {
		view.NextLevel = &next
		view.XPToNextLevel = next.RequiredXP - p.XP
		span := next.RequiredXP - level.RequiredXP
		view.LevelProgress = float64(p.XP-level.RequiredXP) / float64(span) * 100
	}
	return view, nil
}

func (s *service) Achievements(ctx context.Context, userID int64, rangeValue string) ([]AchievementView, error) {
	if rangeValue == "" {
		rangeValue = metrics.RangeAll
	}
	window, err := metrics.ResolveRange(rangeValue, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]UserAchievement, len(items))
	for _, i := range items {
		byID[i.AchievementID] = i
	}

	all := window.Value == metrics.RangeAll
	out := make([]AchievementView, 0, len(s.catalog.Achievements))
	for _, a := range s.catalog.Achievements {
		ua := byID[a.ID]
		if !all && (!ua.Completed || ua.EarnedAt == nil || !window.Contains(*ua.EarnedAt)) {
			continue
		}
		out = append(out, achievementView(a, ua))
	}

	if !all {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EarnedAt.After(*out[j].EarnedAt)
		})
	}
	return out, nil
}

// achievementView masks secret achievements until they are completed.
func achievementView(a Achievement, ua UserAchievement) AchievementView {
	v := AchievementView{
		Achievement:     a,
		Progress:        ua.Progress,
		Completed:       ua.Completed,
		EarnedAt:        ua.EarnedAt,
		ProgressPercent: min(100, float64(ua.Progress)/float64(a.RequiredValue)*100),
	}
	if a.Secret && !ua.Completed {
		v.Achievement.Name = "???"
		v.Achievement.Description = "Secret achievement"
		v.Achievement.Icon = "❓"
		v.Progress = 0
		v.ProgressPercent = 0
	}
	return v
}

func (s *service) Notifications(ctx context.Context, userID int64, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListNotifications(ctx, userID, unreadOnly, notificationsLimit)
}

func (s *service) MarkNotificationsRead(ctx context.Context, userID int64, ids []string) (int64, error) {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return 0, domain.BadRequest("invalid notification id: " + id)
		}
	}
	return s.repo.MarkNotificationsRead(ctx, userID, ids)
}
