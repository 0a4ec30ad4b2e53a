package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mytodolist/config"
	"mytodolist/logging"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		count int
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated tasks for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			cfg, err := config.Load(opts.configFile, nil)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)

			db, store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if reset {
				if err := store.DeleteAllTasks(cmd.Context()); err != nil {
					return err
				}
				logger.Info("deleted all tasks")
			}

			if err := store.GenerateDummyTasks(cmd.Context(), count); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated %d dummy tasks\n", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of tasks to generate")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all tasks first")
	return cmd
}
