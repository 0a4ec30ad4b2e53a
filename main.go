package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mytodolist",
		Short: "A minimal web-based to-do list",
		Long: `mytodolist serves a server-rendered to-do list backed by SQLite or PostgreSQL.

CONFIGURATION:
  Settings are read from defaults, then ./mytodolist.yaml (or --config),
  then TODO_-prefixed environment variables:
    TODO_SERVER_PORT              Port to listen on (default: 8000)
    TODO_SERVER_LOG_LEVEL         debug, info, warn or error (default: info)
    TODO_SERVER_LOG_FORMAT        json or text (default: json)
    TODO_SERVER_MODE              gin mode: debug, release or test (default: release)
    TODO_SERVER_SHUTDOWN_TIMEOUT  Graceful shutdown timeout (default: 10s)
    TODO_DATABASE_DRIVER          sqlite or pgx (default: sqlite)
    TODO_DATABASE_DSN             Data source name (default: ./tasks.db)
    TODO_DATABASE_MAX_OPEN_CONNS  Connection pool size for pgx (default: 10)`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
