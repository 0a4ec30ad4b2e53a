package main

import (
	"github.com/spf13/cobra"

	"mytodolist/config"
	"mytodolist/logging"
	"mytodolist/utils"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|status",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile, nil)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)

			db, err := utils.OpenDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			return utils.Migrate(cmd.Context(), db, cfg.Database.Driver, args[0])
		},
	}
}
