package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewarena/internal/app/dto"
	"reviewarena/internal/domain"
	"reviewarena/internal/domain/ghsync"
)

func toSyncStatus(s ghsync.Status) dto.SyncStatus {
	out := dto.SyncStatus{
		Type:         string(s.Type),
		State:        string(s.State),
		StartedAt:    s.StartedAt,
		LastSyncTime: s.LastSyncTime,
		EventType:    s.EventType,
		ErrorMessage: s.ErrorMessage,
		DurationMs:   s.DurationMs,
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func toSyncResult(r ghsync.Result) dto.SyncResult {
	return dto.SyncResult{
		Type:         string(r.Type),
		Since:        r.Since,
		Members:      r.Members,
		Deactivated:  r.Deactivated,
		Repositories: r.Repositories,
		PullRequests: r.PullRequests,
		Reviews:      r.Reviews,
		FailedRepos:  r.FailedRepos,
	}
}

func (h *Handler) SyncStatus(c *gin.Context) {
	list, err := h.SyncSvc.Statuses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := dto.SyncStatusResponse{
		Organization: h.Opts.Org,
		Current:      toSyncStatus(ghsync.Freshest(h.Opts.Org, list, h.Opts.SyncLockTimeout, h.Clock.Now())),
		Statuses:     make([]dto.SyncStatus, 0, len(list)),
	}
	for _, s := range list {
		resp.Statuses = append(resp.Statuses, toSyncStatus(s))
	}

	c.JSON(http.StatusOK, resp)
}

// SyncTrigger starts a sync in the background and returns immediately.
func (h *Handler) SyncTrigger(c *gin.Context) {
	var body dto.SyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, "invalid JSON")
			return
		}
	}
	if body.Type == "" {
		body.Type = string(ghsync.TypeIncremental)
	}

	typ, ok := ghsync.ParseType(body.Type)
	if !ok || (typ != ghsync.TypeIncremental && typ != ghsync.TypeHistorical && typ != ghsync.TypeFull) {
		h.badRequest(c, "type must be one of: incremental, historical, full")
		return
	}

	if err := h.SyncSvc.Trigger(typ); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"type": string(typ), "status": "started"})
}

// CronSync runs the scheduled sync inline. When a cron secret is configured
// the caller must present it as a bearer token.
func (h *Handler) CronSync(c *gin.Context) {
	if h.Opts.CronSecret != "" {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(h.Opts.CronSecret)) != 1 {
			h.writeError(c, &domain.DomainError{
				Code:       domain.ErrorCodeUnauthorized,
				Message:    "invalid cron token",
				HTTPStatus: http.StatusUnauthorized,
			})
			return
		}
	}

	res, err := h.SyncSvc.RunScheduled(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.Log.Info("cron sync finished",
		zap.String("type", string(res.Type)),
		zap.Int("pull_requests", res.PullRequests),
		zap.Int("reviews", res.Reviews),
	)
	c.JSON(http.StatusOK, toSyncResult(res))
}

func (h *Handler) GitHubWebhook(c *gin.Context) {
	e, err := h.Webhooks.Parse(c.Request)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := h.WebhookSvc.Handle(c.Request.Context(), e)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Event:         out.Event,
		Action:        out.Action,
		Processed:     out.Processed,
		SyncTriggered: out.SyncTriggered,
	})
}
