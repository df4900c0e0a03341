package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
	"reviewarena/internal/domain/gamification"
)

func toAchievement(a gamification.Achievement) dto.Achievement {
	return dto.Achievement{
		ID:            a.ID,
		Name:          a.Name,
		Description:   a.Description,
		Icon:          a.Icon,
		Category:      a.Category,
		Tier:          a.Tier,
		RequiredValue: a.RequiredValue,
	}
}

func toLevel(l gamification.Level) dto.Level {
	return dto.Level{Level: l.Level, Name: l.Name, RequiredXP: l.RequiredXP, Icon: l.Icon}
}

func (h *Handler) Achievements(c *gin.Context) {
	public := h.GameSvc.Catalog().Public()
	resp := make([]dto.Achievement, 0, len(public))
	for _, a := range public {
		resp = append(resp, toAchievement(a))
	}
	c.JSON(http.StatusOK, gin.H{"achievements": resp})
}

func (h *Handler) Levels(c *gin.Context) {
	levels := h.GameSvc.Catalog().Levels
	resp := make([]dto.Level, 0, len(levels))
	for _, l := range levels {
		resp = append(resp, toLevel(l))
	}
	c.JSON(http.StatusOK, gin.H{"levels": resp})
}

func (h *Handler) UserProfile(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	v, err := h.GameSvc.Profile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := dto.Profile{
		UserID:             v.Profile.UserID,
		Login:              v.Profile.Login,
		XP:                 v.Profile.XP,
		Level:              toLevel(v.Level),
		XPToNextLevel:      v.XPToNextLevel,
		LevelProgress:      v.LevelProgress,
		CurrentStreak:      v.Profile.CurrentStreak,
		LongestStreak:      v.Profile.LongestStreak,
		LastActive:         v.Profile.LastActive,
		AchievementsEarned: v.AchievementsEarned,
		AchievementsTotal:  v.AchievementsTotal,
	}
	if v.NextLevel != nil {
		next := toLevel(*v.NextLevel)
		resp.NextLevel = &next
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UserAchievements(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	list, err := h.GameSvc.Achievements(c.Request.Context(), id, c.Query("range"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.UserAchievement, 0, len(list))
	for _, a := range list {
		resp = append(resp, dto.UserAchievement{
			Achievement:     toAchievement(a.Achievement),
			Progress:        a.Progress,
			ProgressPercent: a.ProgressPercent,
			Completed:       a.Completed,
			EarnedAt:        a.EarnedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "achievements": resp})
}

func (h *Handler) UserNotifications(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true" || c.Query("unread") == "1"
	list, err := h.GameSvc.Notifications(c.Request.Context(), id, unreadOnly)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.Notification, 0, len(list))
	for _, n := range list {
		resp = append(resp, dto.Notification{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "notifications": resp})
}

// MarkNotificationsRead marks the listed notifications read, or all of them
// when no ids are given.
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	var body dto.MarkReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, "invalid JSON")
			return
		}
	}

	n, err := h.GameSvc.MarkNotificationsRead(c.Request.Context(), id, body.IDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
