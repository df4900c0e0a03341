package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
	"reviewarena/internal/domain/metrics"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func toRange(tr metrics.TimeRange) dto.Range {
	r := dto.Range{Value: tr.Value, End: tr.End}
	if !tr.Start.IsZero() {
		start := tr.Start
		r.Start = &start
	}
	return r
}

func (h *Handler) Metrics(c *gin.Context) {
	ctx := c.Request.Context()
	started := h.ensureFresh(ctx)

	teamName := c.Query("team")
	report, err := h.MetricsSvc.Leaderboard(ctx, c.Query("range"), teamName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := dto.MetricsResponse{
		Range:       toRange(report.Range),
		Team:        teamName,
		Metrics:     make([]dto.ReviewMetrics, 0, len(report.Metrics)),
		GeneratedAt: report.GeneratedAt,
		SyncStarted: started,
	}
	for _, m := range report.Metrics {
		resp.Metrics = append(resp.Metrics, dto.ReviewMetrics{
			UserID:               m.UserID,
			Login:                m.Login,
			Name:                 m.Name,
			AvatarURL:            m.AvatarURL,
			Assigned:             m.Assigned,
			Approved:             m.Approved,
			ChangesRequested:     m.ChangesRequested,
			Commented:            m.Commented,
			TotalReviewed:        m.TotalReviewed,
			Opened:               m.Opened,
			OpenAgainst:          m.OpenAgainst,
			Pending:              m.Pending,
			RepositoriesReviewed: m.RepositoriesReviewed,
			MedianResponseHours:  m.MedianResponseHours,
			P90ResponseHours:     m.P90ResponseHours,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UserPullRequests(c *gin.Context) {
	ctx := c.Request.Context()
	h.ensureFresh(ctx)

	login := c.Param("login")
	list, tr, err := h.MetricsSvc.UserPullRequests(ctx, login, c.Query("range"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := dto.UserPullRequestsResponse{
		Login:        login,
		Range:        toRange(tr),
		PullRequests: make([]dto.UserPullRequest, 0, len(list)),
	}
	for _, u := range list {
		p := u.PullRequest
		resp.PullRequests = append(resp.PullRequests, dto.UserPullRequest{
			ID:             p.ID,
			Number:         p.Number,
			Title:          p.Title,
			URL:            p.HTMLURL,
			Repository:     p.RepositoryName,
			State:          string(p.State),
			Author:         p.AuthorLogin,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
			MergedAt:       p.MergedAt,
			Requested:      u.Requested,
			ReviewCount:    u.ReviewCount,
			LastState:      string(u.LastState),
			LastReviewedAt: u.LastReviewedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Activity(c *gin.Context) {
	ctx := c.Request.Context()
	h.ensureFresh(ctx)

	days, tr, err := h.MetricsSvc.Activity(ctx, c.Query("range"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := dto.ActivityResponse{
		Range: toRange(tr),
		Days:  make([]dto.DailyCount, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, dto.DailyCount{
			Date:  d.Day.Format("2006-01-02"),
			Count: d.Count,
		})
		resp.Total += d.Count
	}

	c.JSON(http.StatusOK, resp)
}
