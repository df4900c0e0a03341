package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
)

func (h *Handler) Repositories(c *gin.Context) {
	repos, err := h.PRSvc.Repos(c.Request.Context(), h.Opts.Org)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.Repository, 0, len(repos))
	for _, r := range repos {
		resp = append(resp, dto.Repository{
			ID:            r.ID,
			Name:          r.Name,
			FullName:      r.FullName,
			URL:           r.HTMLURL,
			Description:   r.Description,
			DefaultBranch: r.DefaultBranch,
		})
	}
	c.JSON(http.StatusOK, gin.H{"repositories": resp})
}

// UserReviewQueue lists the open pull requests still waiting for the user's
// review, oldest first.
func (h *Handler) UserReviewQueue(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	u, err := h.MemberSvc.Get(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	queue, err := h.PRSvc.ReviewQueue(ctx, h.Opts.Org, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := h.Clock.Now()
	resp := dto.ReviewQueueResponse{
		UserID:       u.ID,
		Login:        u.Login,
		PullRequests: make([]dto.QueuedPullRequest, 0, len(queue)),
	}
	for _, p := range queue {
		waiting := now.Sub(p.CreatedAt).Hours()
		resp.PullRequests = append(resp.PullRequests, dto.QueuedPullRequest{
			ID:           p.ID,
			Number:       p.Number,
			Title:        p.Title,
			URL:          p.HTMLURL,
			Repository:   p.RepositoryName,
			Author:       p.AuthorLogin,
			CreatedAt:    p.CreatedAt,
			WaitingHours: math.Round(waiting*10) / 10,
		})
	}
	c.JSON(http.StatusOK, resp)
}
