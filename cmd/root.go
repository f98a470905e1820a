package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgdelta/pgdelta/cmd/plan"
	"github.com/pgdelta/pgdelta/internal/logger"
	"github.com/pgdelta/pgdelta/internal/version"
)

var debug bool

var RootCmd = &cobra.Command{
	Use:   "pgdelta",
	Short: "PostgreSQL schema diff tool",
	Long: fmt.Sprintf(`pgdelta computes the DDL that transforms one database's schema into another's.

Version: %s@%s %s %s

Commands:
  plan    Diff two databases and print the migration script

Use "pgdelta [command] --help" for more information about a command.`,
		version.Version(), version.GitCommit, version.Platform(), version.BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(plan.PlanCmd)
	RootCmd.AddCommand(versionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pgdelta %s@%s %s %s\n",
			version.Version(), version.GitCommit, version.Platform(), version.BuildDate)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
