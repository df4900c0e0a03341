package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewarena/internal/domain/ghsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync against GitHub and print the result as JSON",
	Long: `sync pulls organization members, repositories, pull requests and reviews
from GitHub into the database and refreshes gamification state.

--type scheduled picks historical or incremental the way the background
scheduler does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFlag, _ := cmd.Flags().GetString("type")

		ctx := cmd.Context()
		cfg, log, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer db.Close()

		a, err := newApp(ctx, cfg, log, db)
		if err != nil {
			return err
		}
		defer a.Close()

		var res ghsync.Result
		if typeFlag == string(ghsync.TypeScheduled) {
			res, err = a.sync.RunScheduled(ctx)
		} else {
			typ, ok := ghsync.ParseType(typeFlag)
			if !ok {
				return fmt.Errorf("unknown sync type %q", typeFlag)
			}
			res, err = a.sync.Run(ctx, typ)
		}
		if err != nil {
			log.Error("sync failed", zap.Error(err))
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	syncCmd.Flags().StringP("type", "t", string(ghsync.TypeIncremental), "sync type: incremental, historical, full or scheduled")
}
