package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/mcp"
	"github.com/dshills/docaudit/internal/storage"
)

func newServeCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout is the protocol channel; setup logs to stderr
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}

			logger.Info("docaudit MCP server starting",
				"version", version,
				"build_mode", storage.BuildMode,
				"driver", storage.DriverName)

			server, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				logger.Info("MCP server ready, listening on stdio")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return nil
			case err := <-errChan:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for run history (default from config)")
	return cmd
}
