package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
)

func (h *Handler) StatsReviewers(c *gin.Context) {
	teamName := c.Query("team")
	list, err := h.StatsSvc.ReviewerLoad(c.Request.Context(), teamName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.ReviewerLoad, 0, len(list))
	for _, s := range list {
		resp = append(resp, dto.ReviewerLoad{
			UserID:         s.UserID,
			Login:          s.Login,
			AssignedTotal:  s.AssignedTotal,
			AssignedOpen:   s.AssignedOpen,
			AssignedMerged: s.AssignedMerged,
		})
	}
	c.JSON(http.StatusOK, gin.H{"team": teamName, "reviewers": resp})
}

func (h *Handler) StatsRepositories(c *gin.Context) {
	list, err := h.StatsSvc.RepositoryBacklog(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.RepositoryBacklog, 0, len(list))
	for _, s := range list {
		resp = append(resp, dto.RepositoryBacklog{
			Repository:      s.Repository,
			PullRequests:    s.PullRequests,
			Open:            s.Open,
			Unreviewed:      s.Unreviewed,
			PendingRequests: s.PendingRequests,
		})
	}
	c.JSON(http.StatusOK, gin.H{"repositories": resp})
}
