package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/challenge"
	"reviewarena/internal/domain/gamification"
	"reviewarena/internal/domain/ghsync"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/metrics"
	"reviewarena/internal/domain/pr"
	"reviewarena/internal/domain/stats"
	"reviewarena/internal/domain/team"
	"reviewarena/internal/domain/webhook"
)

// WebhookParser turns a GitHub delivery into a webhook.Event, verifying its
// signature on the way.
type WebhookParser interface {
	Parse(r *http.Request) (webhook.Event, error)
}

type Options struct {
	Org             string
	CronSecret      string
	SyncLockTimeout time.Duration
}

type Handler struct {
	MemberSvc    member.Service
	TeamSvc      team.Service
	MetricsSvc   metrics.Service
	PRSvc        pr.Service
	StatsSvc     stats.Service
	SyncSvc      ghsync.Service
	WebhookSvc   webhook.Service
	Webhooks     WebhookParser
	GameSvc      gamification.Service
	ChallengeSvc challenge.Service
	Clock        domain.Clock
	Log          *zap.Logger
	Opts         Options
}

func New(
	memberSvc member.Service,
	teamSvc team.Service,
	metricsSvc metrics.Service,
	prSvc pr.Service,
	statsSvc stats.Service,
	syncSvc ghsync.Service,
	webhookSvc webhook.Service,
	webhooks WebhookParser,
	gameSvc gamification.Service,
	challengeSvc challenge.Service,
	clock domain.Clock,
	log *zap.Logger,
	opts Options,
) *Handler {
	return &Handler{
		MemberSvc:    memberSvc,
		TeamSvc:      teamSvc,
		MetricsSvc:   metricsSvc,
		PRSvc:        prSvc,
		StatsSvc:     statsSvc,
		SyncSvc:      syncSvc,
		WebhookSvc:   webhookSvc,
		Webhooks:     webhooks,
		GameSvc:      gameSvc,
		ChallengeSvc: challengeSvc,
		Clock:        clock,
		Log:          log,
		Opts:         opts,
	}
}
