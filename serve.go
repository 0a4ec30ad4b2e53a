package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"mytodolist/config"
	"mytodolist/handlers"
	"mytodolist/logging"
	"mytodolist/utils"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the to-do list over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	return cmd
}

// openStore connects to the configured database and applies pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, *utils.TaskStore, error) {
	db, err := utils.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := utils.Migrate(ctx, db, cfg.Database.Driver, "up"); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, utils.NewTaskStore(db, cfg.Database.Driver), nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)
	gin.SetMode(cfg.Server.Mode)

	logger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"driver", cfg.Database.Driver)

	db, store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	router, err := handlers.NewRouter(store, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server is listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("server is shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
