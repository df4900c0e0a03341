package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reviewarena",
	Short: "Gamified pull request review dashboard for a GitHub organization",
	Long: `reviewarena mirrors the members, repositories, pull requests and reviews of
a GitHub organization into Postgres and serves review metrics, achievements,
levels, streaks and team challenges over a JSON API.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, syncCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
