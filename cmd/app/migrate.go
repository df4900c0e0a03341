package main

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Manage the database schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "up"
		if len(args) == 1 {
			action = args[0]
		}

		cfg, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer log.Sync()
		defer db.Close()

		switch action {
		case "up":
			err = goose.Up(db, cfg.MigrationsDir)
		case "down":
			err = goose.Down(db, cfg.MigrationsDir)
		case "status":
			err = goose.Status(db, cfg.MigrationsDir)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", action, err)
		}
		return nil
	},
}
