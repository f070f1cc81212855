package main

import (
	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/sync"
)

var importItemsCmd = &cobra.Command{
	Use:   "import-items FILE...",
	Short: "Import item catalog JSON files into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImportItems,
}

func init() {
	rootCmd.AddCommand(importItemsCmd)
}

func runImportItems(_ *cobra.Command, args []string) error {
	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env := &runtimeEnv{logger: logger}
	if err := openDatabase(ctx, env); err != nil {
		return err
	}
	defer env.Close()

	syncer := sync.NewSyncer(env.database)
	for _, path := range args {
		logger.Info("importing items", "file", path)
		result, err := syncer.ImportItemsFromFile(ctx, path)
		if err != nil {
			return err
		}
		logger.Info("items imported successfully",
			"file", path,
			"imported", result.Imported,
			"skipped", result.Skipped,
			"import_id", result.ImportID,
		)
	}
	return nil
}
