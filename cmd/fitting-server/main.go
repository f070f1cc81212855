// Waitlist fitting analysis server and tools.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
)

var settings config.Settings

var (
	verbose   bool
	cacheSize int
)

var rootCmd = &cobra.Command{
	Use:   "fitting-server",
	Short: "Waitlist fitting analysis server",
	Long:  "Parses, compares and matches ship fits against doctrine, builds skill plans, and serves these operations as MCP tools over stdio.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			settings.LogLevel = slog.LevelDebug
		}
		settings.CacheSize = cacheSize
	},
	SilenceUsage: true,
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()
	settings = config.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settings.DBPath, "db", settings.DBPath, "Path to SQLite item catalog")
	flags.StringVar(&settings.DataDir, "data", settings.DataDir, "Directory holding the game rule documents")
	flags.StringVar(&settings.LogFile, "log-file", settings.LogFile, "JSON log file (empty for stderr only)")
	flags.IntVar(&cacheSize, "cache-size", settings.CacheSize, "Item catalog cache entries")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
