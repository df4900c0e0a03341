package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"reviewarena/internal/app/config"
	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/challenge"
	"reviewarena/internal/domain/gamification"
	"reviewarena/internal/domain/ghsync"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/metrics"
	"reviewarena/internal/domain/pr"
	"reviewarena/internal/domain/stats"
	"reviewarena/internal/domain/team"
	"reviewarena/internal/domain/webhook"
	"reviewarena/internal/infrastructure/async"
	"reviewarena/internal/infrastructure/db/pg"
	"reviewarena/internal/infrastructure/gateway"
	"reviewarena/internal/infrastructure/logging"
)

const eventTimeout = 30 * time.Second

// app holds the wired services shared by the serve and sync commands.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB

	clock    domain.Clock
	members  member.Service
	teams    team.Service
	metrics  metrics.Service
	prs      pr.Service
	stats    stats.Service
	sync     ghsync.Service
	webhooks webhook.Service
	game     gamification.Service
	contests challenge.Service
	parser   *gateway.WebhookParser

	eventPool *async.WorkerPool
	syncPool  *async.WorkerPool
	bus       *async.AsyncEventBus
}

// bootstrap loads config, opens the database and builds the logger. Callers
// close the returned database.
func bootstrap(ctx context.Context) (config.Config, *zap.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return config.Config{}, nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return config.Config{}, nil, nil, fmt.Errorf("goose dialect: %w", err)
	}
	return cfg, log, db, nil
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger, db *sql.DB) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	catalog, err := gamification.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load achievement catalog: %w", err)
	}

	source, err := gateway.NewGitHubGateway(cfg.GitHub.Token, cfg.GitHub.APIURL, log)
	if err != nil {
		return nil, err
	}

	org := cfg.GitHub.Org
	clock := domain.SystemClock{}
	uow := pg.NewTxManager(db)

	eventPool := async.NewWorkerPool(ctx, "events", cfg.Workers, eventTimeout, log)
	syncPool := async.NewWorkerPool(ctx, "sync", 1, cfg.Sync.LockTimeout, log)
	bus := async.NewAsyncEventBus(eventPool, log)

	userRepo := pg.NewMemberRepository(db)
	prRepo := pg.NewPRRepository(db)
	teamRepo := pg.NewTeamRepository(db)

	memberSvc := member.NewService(uow, userRepo, bus)
	prSvc := pr.NewService(uow, prRepo)
	teamSvc := team.NewService(uow, teamRepo, userRepo, bus, org)
	activitySvc := activity.NewService(pg.NewActivityRepository(db), clock, cfg.Sync.HighActivityThreshold, loc)
	metricsSvc := metrics.NewService(org, userRepo, prRepo, teamSvc, activitySvc, clock)
	statsSvc := stats.NewService(org, pg.NewStatsRepository(db))
	gameSvc := gamification.NewService(org, uow, pg.NewGamificationRepository(db), userRepo, prRepo, bus, clock, catalog, loc)
	syncSvc := ghsync.NewService(org, pg.NewSyncStatusRepository(db), source, memberSvc, prSvc, activitySvc,
		gameSvc, syncPool, bus, clock, log, cfg.Sync.Options())
	webhookSvc := webhook.NewService(org, prSvc, activitySvc, syncSvc, bus, clock, log, cfg.Sync.PushSyncAfter)
	challengeSvc := challenge.NewService(pg.NewChallengeRepository(db), teamSvc, metricsSvc, bus, clock)

	bus.Subscribe(domain.EventReviewSubmitted, func(ctx context.Context, e domain.Event) error {
		id, ok := e.Payload["user_id"].(int64)
		if !ok || id == 0 {
			return nil
		}
		return gameSvc.Refresh(ctx, []int64{id})
	})

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		clock:     clock,
		members:   memberSvc,
		teams:     teamSvc,
		metrics:   metricsSvc,
		prs:       prSvc,
		stats:     statsSvc,
		sync:      syncSvc,
		webhooks:  webhookSvc,
		game:      gameSvc,
		contests:  challengeSvc,
		parser:    gateway.NewWebhookParser(cfg.GitHub.WebhookSecret),
		eventPool: eventPool,
		syncPool:  syncPool,
		bus:       bus,
	}, nil
}

// Close drains background work. The sync pool goes first since a finishing
// sync still publishes events.
func (a *app) Close() {
	a.syncPool.Shutdown()
	a.bus.Close()
}
