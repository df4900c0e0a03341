package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewarena/internal/app/http/handler"
	"reviewarena/internal/app/http/middleware"
)

func NewRouter(h *handler.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)

	r.GET("/health", h.Health)

	api := r.Group("/api")

	api.GET("/metrics", h.Metrics)
	api.GET("/metrics/:login/prs", h.UserPullRequests)
	api.GET("/activity", h.Activity)
	api.GET("/stats/reviewers", h.StatsReviewers)
	api.GET("/stats/repositories", h.StatsRepositories)
	api.GET("/repositories", h.Repositories)

	api.GET("/sync/status", h.SyncStatus)
	api.POST("/sync", h.SyncTrigger)
	api.GET("/cron/sync", h.CronSync)

	api.POST("/webhooks/github", h.GitHubWebhook)

	api.GET("/achievements", h.Achievements)
	api.GET("/levels", h.Levels)

	users := api.Group("/users/:id")
	users.GET("/profile", h.UserProfile)
	users.GET("/queue", h.UserReviewQueue)
	users.GET("/achievements", h.UserAchievements)
	users.GET("/notifications", h.UserNotifications)
	users.POST("/notifications/read", h.MarkNotificationsRead)
	users.POST("/active", h.UserSetActive)

	api.POST("/teams", h.TeamAdd)
	api.GET("/teams/:name", h.TeamGet)

	api.GET("/challenges", h.ChallengeList)
	api.POST("/challenges", h.ChallengeCreate)

	return r
}
