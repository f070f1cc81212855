package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server over stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env, err := startEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	server, err := mcp.NewServer(env.engine, logger)
	if err != nil {
		return err
	}

	logger.Info("starting MCP server", "db", settings.DBPath, "data", settings.DataDir)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Fprintln(os.Stderr, "server stopped")
	return nil
}
