package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "reviewarena/internal/app/http"
	"reviewarena/internal/app/http/handler"
	"reviewarena/internal/infrastructure/async"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations, start the HTTP API and the periodic sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, log, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer db.Close()

		if err := goose.Up(db, cfg.MigrationsDir); err != nil {
			log.Error("goose up error", zap.Error(err))
			return err
		}

		a, err := newApp(ctx, cfg, log, db)
		if err != nil {
			return err
		}
		defer a.Close()

		h := handler.New(a.members, a.teams, a.metrics, a.prs, a.stats, a.sync, a.webhooks, a.parser, a.game, a.contests,
			a.clock, log, handler.Options{
				Org:             cfg.GitHub.Org,
				CronSecret:      cfg.CronSecret,
				SyncLockTimeout: cfg.Sync.LockTimeout,
			})
		router := httpapi.NewRouter(h, log)

		// WriteTimeout covers /api/cron/sync, which runs a whole sync inside
		// the request.
		srv := &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.Sync.LockTimeout,
			IdleTimeout:  60 * time.Second,
		}

		scheduler := async.NewScheduler(cfg.Sync.Interval, func(ctx context.Context) error {
			_, err := a.sync.RunScheduled(ctx)
			return err
		}, log)
		go scheduler.Run(ctx)

		errCh := make(chan error, 1)
		go func() {
			log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("org", cfg.GitHub.Org))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			log.Error("server error", zap.Error(err))
			return err
		}

		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
		return nil
	},
}
